// Package render 把解析出的绘图模型重建为渲染无关的几何图元
//
// 图元是派生数据，不缓存在 Document 里：ByBlock 颜色继承依赖调用方
// INSERT 的上下文，同一个块在不同引用下可以合法地产出不同颜色
package render

import (
	"github.com/zooyer/dxfview/color"
	"github.com/zooyer/dxfview/core"
)

// Style 图元的图层与最终颜色标签，渲染端据此做图层开关
type Style struct {
	Layer string
	Color color.RGB
}

// Primitive 可绘制图元的封闭集合
// 消费端（渲染器、导出器）对具体类型做穷举分支
type Primitive interface {
	primitive()
	GetStyle() *Style
}

// Polyline 折线（开或闭）
type Polyline struct {
	Points  []core.Point
	Closed  bool
	Dashed  bool      // 虚线样式提示（延伸线等）
	Pattern []float64 // 线型划线段，正画负空
	Style   *Style
}

// Triangles 填充三角形集合，每 3 个点一个三角形
type Triangles struct {
	Points []core.Point
	Style  *Style
}

// Marker 点标记
type Marker struct {
	At    core.Point
	Style *Style
}

// TextQuad 文字四边形与基线/对齐度量
type TextQuad struct {
	At       core.Point
	Text     string
	Height   float64
	Rotation float64 // 弧度
	Bold     bool
	Italic   bool
	Font     string
	HAlign   int
	VAlign   int

	// 堆叠分数：上下两段单独给出，不内联渲染
	StackedTop    string
	StackedBottom string

	Style *Style
}

// Arrow 箭头三角形（尖点 + 两个尾点）
type Arrow struct {
	Tip, Left, Right core.Point
	Style            *Style
}

func (Polyline) primitive()  {}
func (Triangles) primitive() {}
func (Marker) primitive()    {}
func (TextQuad) primitive()  {}
func (Arrow) primitive()     {}

func (p Polyline) GetStyle() *Style  { return p.Style }
func (p Triangles) GetStyle() *Style { return p.Style }
func (p Marker) GetStyle() *Style    { return p.Style }
func (p TextQuad) GetStyle() *Style  { return p.Style }
func (p Arrow) GetStyle() *Style     { return p.Style }
