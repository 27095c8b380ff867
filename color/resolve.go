package color

// LayerColor 图层侧的颜色信息（由解析层的图层表适配）
type LayerColor struct {
	ColorIndex int
	TrueColor  int // -1 未指定
}

// Resolve 按固定优先级解析实体最终颜色：
// 真彩色(420) > 非哨兵颜色索引 > ByBlock(0) 继承外层块引用色 > ByLayer(256) 查图层
//
// blockColor 是装配层沿 INSERT 展开逐层下传的上下文值，
// 任意深度嵌套的 ByBlock 继承都靠它
func Resolve(colorIndex, trueColor int, layer *LayerColor, blockColor RGB) RGB {
	if trueColor >= 0 {
		return RGB(trueColor) & 0xFFFFFF
	}

	switch colorIndex {
	case ByBlock:
		return blockColor
	case ByLayer:
		return resolveLayer(layer)
	default:
		return FromIndex(colorIndex)
	}
}

// resolveLayer 图层自身的颜色：真彩色优先，否则查调色板
func resolveLayer(layer *LayerColor) RGB {
	if layer == nil {
		return 0xFFFFFF
	}

	if layer.TrueColor >= 0 {
		return RGB(layer.TrueColor) & 0xFFFFFF
	}

	return FromIndex(layer.ColorIndex)
}
