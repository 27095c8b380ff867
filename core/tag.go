package core

import (
	"strconv"
	"strings"
)

// Tag 代表 DXF 中的一组标签对（组码 + 值）
type Tag struct {
	Code  int
	Value string
}

// Type 表示组码对应的值类型
type Type int

const (
	TypeString Type = iota
	TypeFloat
	TypeInt
	TypeBool
)

// TypeOf 根据组码的数值区间判定值类型
// 区间表来自 DXF 规范，是解析正确性的契约，修改前先查规范
func TypeOf(code int) Type {
	switch {
	case code <= 9:
		return TypeString
	case code >= 10 && code <= 59:
		return TypeFloat
	case code >= 60 && code <= 99:
		return TypeInt
	case code >= 100 && code <= 109:
		return TypeString
	case code >= 110 && code <= 149:
		return TypeFloat
	case code >= 160 && code <= 179:
		return TypeInt
	case code >= 210 && code <= 239:
		return TypeFloat
	case code >= 270 && code <= 289:
		return TypeInt
	case code >= 290 && code <= 299:
		return TypeBool
	case code >= 300 && code <= 369:
		return TypeString
	case code >= 370 && code <= 389:
		return TypeInt
	case code >= 420 && code <= 429:
		return TypeInt
	case code >= 1000 && code <= 1009:
		return TypeString
	case code >= 1010 && code <= 1059:
		return TypeFloat
	case code >= 1060 && code <= 1071:
		return TypeInt
	default:
		return TypeString
	}
}

// Kind 返回该标签值的类型
func (t Tag) Kind() Type {
	return TypeOf(t.Code)
}

// AsFloat 将值转换为 float64
func (t Tag) AsFloat() float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(t.Value), 64)
	return f
}

// AsInt 将值转换为 int
func (t Tag) AsInt() int {
	i, _ := strconv.Atoi(strings.TrimSpace(t.Value))
	return i
}

// AsBool 按 DXF 规范解析布尔值（"1" 为真）
func (t Tag) AsBool() bool {
	return strings.TrimSpace(t.Value) == "1"
}

// AsString 清洗字符串（去除多余空格）
func (t Tag) AsString() string {
	return strings.TrimSpace(t.Value)
}

// Is 判断是否为指定的组码 0 标记（实体名、段名等）
func (t Tag) Is(name string) bool {
	return t.Code == 0 && strings.EqualFold(strings.TrimSpace(t.Value), name)
}

// Point 代表三维空间中的一个点
type Point struct {
	X, Y, Z float64
}

// BBox 代表包围盒
type BBox struct {
	Min, Max Point
}

// NewBBox 以单个点初始化包围盒
func NewBBox(p Point) BBox {
	return BBox{Min: p, Max: p}
}

// Extend 将点并入包围盒
func (b *BBox) Extend(p Point) {
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.Z < b.Min.Z {
		b.Min.Z = p.Z
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	if p.Z > b.Max.Z {
		b.Max.Z = p.Z
	}
}

// Union 合并两个包围盒
func (b BBox) Union(o BBox) BBox {
	b.Extend(o.Min)
	b.Extend(o.Max)
	return b
}
