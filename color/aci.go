// Package color 实现 AutoCAD 颜色索引（ACI）调色板与颜色解析优先级
package color

import (
	"math"
)

// RGB 24 位真彩色，0xRRGGBB
type RGB = uint32

// ByBlock / ByLayer 颜色索引哨兵值
const (
	ByBlock = 0
	ByLayer = 256
)

// Palette 固定的 256 项 ACI 调色板，启动时构建一次
var Palette [256]RGB

func init() {
	// 0 是 ByBlock 哨兵，占位黑色；1-9 是标准色
	standard := map[int]RGB{
		0: 0x000000,
		1: 0xFF0000, // 红
		2: 0xFFFF00, // 黄
		3: 0x00FF00, // 绿
		4: 0x00FFFF, // 青
		5: 0x0000FF, // 蓝
		6: 0xFF00FF, // 品红
		7: 0xFFFFFF, // 白/黑（随背景取反）
		8: 0x414141,
		9: 0x808080,
	}
	for i, c := range standard {
		Palette[i] = c
	}

	// 10-249：24 个色相 × 5 档明度 × 2 档饱和度
	for i := 10; i <= 249; i++ {
		var (
			group = (i - 10) / 10       // 色相组
			row   = ((i - 10) % 10) / 2 // 明度档
			pale  = i%2 == 1            // 奇数为低饱和
		)

		hue := float64(group) * 15
		value := [5]float64{1.0, 0.8, 0.6, 0.48, 0.36}[row]
		saturation := 1.0
		if pale {
			saturation = 0.45
		}

		Palette[i] = hsv(hue, saturation, value)
	}

	// 250-255：灰度梯
	grays := [6]RGB{0x333333, 0x505050, 0x696969, 0x828282, 0xBEBEBE, 0xFFFFFF}
	for i, c := range grays {
		Palette[250+i] = c
	}
}

// hsv HSV 转 RGB，h 取度
func hsv(h, s, v float64) RGB {
	h = math.Mod(h, 360) / 60

	var (
		c = v * s
		x = c * (1 - math.Abs(math.Mod(h, 2)-1))
		m = v - c

		r, g, b float64
	)

	switch int(h) {
	case 0:
		r, g, b = c, x, 0
	case 1:
		r, g, b = x, c, 0
	case 2:
		r, g, b = 0, c, x
	case 3:
		r, g, b = 0, x, c
	case 4:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	to := func(f float64) RGB {
		return RGB(math.Round((f + m) * 255))
	}

	return to(r)<<16 | to(g)<<8 | to(b)
}

// FromIndex 按索引取调色板颜色，越界按白色处理
func FromIndex(index int) RGB {
	if index < 0 || index > 255 {
		return 0xFFFFFF
	}

	return Palette[index]
}
