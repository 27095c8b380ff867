package render

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/zooyer/dxfview"
	"github.com/zooyer/dxfview/color"
	"github.com/zooyer/dxfview/core"
	"github.com/zooyer/dxfview/entities"
	"github.com/zooyer/dxfview/utils"
)

// Assembler 把解析出的文档装配成图元场景
// 块引用展开时沿调用树携带累计变换与块颜色上下文，不改写文档本身
type Assembler struct {
	doc *dxfview.Document
	ctx *Context
}

// NewAssembler 构造装配器
func NewAssembler(doc *dxfview.Document, ctx *Context) *Assembler {
	if ctx == nil {
		ctx = NewContext(DefaultOptions(), nil)
	}

	return &Assembler{doc: doc, ctx: ctx}
}

// Context 返回装配上下文（读取告警与统计）
func (a *Assembler) Context() *Context {
	return a.ctx
}

// identityInsert 恒等变换：缩放 1、旋转 0、平移 0
func identityInsert() *entities.Insert {
	return &entities.Insert{Scale: core.Point{X: 1, Y: 1, Z: 1}}
}

// Assemble 展开模型空间的全部实体
func (a *Assembler) Assemble() []Primitive {
	var prims []Primitive

	for _, e := range a.doc.Entities {
		prims = append(prims, a.assembleEntity(e, identityInsert(), 0, color.FromIndex(7))...)
	}

	return prims
}

// layerOf 查实体所在图层，查不到返回 nil
func (a *Assembler) layerOf(e entities.Entity) *dxfview.Layer {
	return a.doc.Layers[strings.ToUpper(e.Common().LayerName)]
}

// fontOf 从文字样式表查字体名，查不到返回空串由渲染端取默认字体
func (a *Assembler) fontOf(styleName string) string {
	if st := a.doc.Styles[strings.ToUpper(styleName)]; st != nil {
		return st.Font
	}
	return ""
}

// styleOf 解析实体最终颜色并取共享样式对象
// blockRGB 是当前块引用上下文，ByBlock 实体继承它
func (a *Assembler) styleOf(e entities.Entity, blockRGB color.RGB) *Style {
	var (
		common = e.Common()
		lc     *color.LayerColor
	)

	if layer := a.layerOf(e); layer != nil {
		lc = &color.LayerColor{ColorIndex: layer.ColorIndex, TrueColor: layer.TrueColor}
	}

	rgb := color.Resolve(common.ColorIndex, common.TrueColor, lc, blockRGB)

	return a.ctx.style(common.LayerName, rgb)
}

// hidden 实体是否不可见：自身不可见位，或图层关闭/冻结
func (a *Assembler) hidden(e entities.Entity) bool {
	if e.Common().Invisible {
		return true
	}

	if layer := a.layerOf(e); layer != nil && (!layer.Visible || layer.Frozen) {
		return true
	}

	return false
}

// linePattern 实体的线型划线定义：实体线型优先，BYLAYER 时查图层线型
func (a *Assembler) linePattern(e entities.Entity) []float64 {
	name := strings.ToUpper(e.Common().LineType)

	if name == "" || name == "BYLAYER" {
		if layer := a.layerOf(e); layer != nil {
			name = strings.ToUpper(layer.LineType)
		}
	}

	if name == "" || name == "BYBLOCK" || name == "CONTINUOUS" {
		return nil
	}

	if lt, ok := a.doc.LineTypes[name]; ok {
		return lt.Pattern
	}

	return nil
}

// assembleEntity 单实体装配：局部坐标构建图元，再经累计变换转到世界坐标
func (a *Assembler) assembleEntity(e entities.Entity, ins *entities.Insert, depth int, blockRGB color.RGB) []Primitive {
	if a.hidden(e) {
		return nil
	}

	s := a.styleOf(e, blockRGB)

	var prims []Primitive

	switch v := e.(type) {
	case *entities.Line:
		prims = append(prims, Polyline{Points: []core.Point{v.Start, v.End}, Pattern: a.linePattern(e), Style: s})

	case *entities.PointEntity:
		prims = append(prims, Marker{At: v.Position, Style: s})

	case *entities.Circle:
		prims = append(prims, Polyline{
			Points:  TessellateCircle(v.Center, v.Radius, a.ctx.Options),
			Closed:  true,
			Pattern: a.linePattern(e),
			Style:   s,
		})

	case *entities.Arc:
		prims = append(prims, Polyline{
			Points:  TessellateArc(v.Center, v.Radius, v.StartAngle, v.EndAngle, true, a.ctx.Options),
			Pattern: a.linePattern(e),
			Style:   s,
		})

	case *entities.Ellipse:
		prims = append(prims, Polyline{
			Points:  TessellateEllipse(v.Center, v.MajorAxis, v.Ratio, v.StartParam, v.EndParam, a.ctx.Options),
			Pattern: a.linePattern(e),
			Style:   s,
		})

	case *entities.LWPolyline:
		prims = append(prims, Polyline{
			Points:  ExpandPolyline(v.Vertices, v.Closed, a.ctx.Options),
			Closed:  v.Closed,
			Pattern: a.linePattern(e),
			Style:   s,
		})

	case *entities.Polyline:
		if v.Mesh {
			prims = append(prims, a.buildMesh(v, s)...)
		} else {
			prims = append(prims, Polyline{
				Points:  ExpandPolyline(v.Vertices, v.Closed, a.ctx.Options),
				Closed:  v.Closed,
				Pattern: a.linePattern(e),
				Style:   s,
			})
		}

	case *entities.Spline:
		prims = append(prims, Polyline{
			Points: SampleSpline(v, a.ctx.Options),
			Closed: v.Closed(),
			Style:  s,
		})

	case *entities.Text:
		prims = append(prims, TextQuad{
			At:       v.Position,
			Text:     expandPercents(v.Value),
			Height:   v.Height,
			Rotation: v.Rotation,
			Font:     a.fontOf(v.StyleName),
			HAlign:   v.HAlign,
			VAlign:   v.VAlign,
			Style:    s,
		})

	case *entities.MText:
		prims = append(prims, a.buildMText(v, s)...)

	case *entities.AttDef:
		// 属性定义是模板，不产出几何

	case *entities.Attrib:
		prims = append(prims, TextQuad{
			At:     v.Position,
			Text:   v.Text,
			Height: v.Height,
			Style:  s,
		})

	case *entities.Solid:
		prims = append(prims, a.buildSolid(v, s)...)

	case *entities.Face3D:
		prims = append(prims, a.buildFace(v, s)...)

	case *entities.Hatch:
		prims = append(prims, BuildHatch(v, a.ctx, s)...)

	case *entities.Dimension:
		dimStyle := a.doc.DimStyles[strings.ToUpper(v.StyleName)]
		prims = append(prims, BuildDimension(v, dimStyle, a.ctx, s)...)

	case *entities.Leader:
		prims = append(prims, a.buildLeader(v, s)...)

	case *entities.MultiLeader:
		prims = append(prims, a.buildMultiLeader(v, s)...)

	case *entities.Insert:
		return a.assembleInsert(v, ins, depth, blockRGB)

	case *entities.Viewport:
		a.ctx.Unsupported[v.Type()]++
		return nil

	case *entities.Unknown:
		a.ctx.Unsupported[v.Type()]++
		return nil

	default:
		a.ctx.Unsupported[e.Type()]++
		return nil
	}

	return transformPrimitives(prims, ins)
}

// assembleInsert 块引用展开
// 深度越界：告警、计数、整条分支放弃，其余兄弟分支不受影响
func (a *Assembler) assembleInsert(v *entities.Insert, ins *entities.Insert, depth int, blockRGB color.RGB) []Primitive {
	if depth >= a.ctx.Options.MaxInsertDepth {
		a.ctx.RecursionAborts++
		a.ctx.warn("insert recursion too deep, branch aborted",
			zap.String("block", v.BlockName), zap.Int("depth", depth))
		return nil
	}

	block, ok := a.doc.Blocks[strings.ToUpper(v.BlockName)]
	if !ok {
		a.ctx.warn("insert references missing block", zap.String("block", v.BlockName))
		return nil
	}

	// 本层引用自身解析出的颜色成为子实体的 ByBlock 上下文
	childRGB := a.styleOf(v, blockRGB).Color

	var (
		prims []Primitive

		rows = v.Rows
		cols = v.Columns
	)
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			// 阵列偏移在块局部坐标系中叠加到插入点上
			cell := *v
			cell.InsertionPoint = utils.TransformPoint(core.Point{
				X: float64(c) * v.ColumnSpacing,
				Y: float64(r) * v.RowSpacing,
			}, v)

			// 块基点平移折算进插入点
			combined := utils.CombineInserts(ins, &cell)
			combined.InsertionPoint = utils.TransformPoint(core.Point{
				X: -block.BasePoint.X,
				Y: -block.BasePoint.Y,
				Z: -block.BasePoint.Z,
			}, combined)

			for _, sub := range block.Entities {
				prims = append(prims, a.assembleEntity(sub, combined, depth+1, childRGB)...)
			}
		}
	}

	// 块引用自带的属性文字在世界坐标，直接随外层变换
	for _, attr := range v.Attributes {
		prims = append(prims, transformPrimitives([]Primitive{TextQuad{
			At:     attr.Position,
			Text:   attr.Text,
			Height: attr.Height,
			Style:  a.styleOf(attr, blockRGB),
		}}, ins)...)
	}

	return prims
}

// buildMesh 多边形网格：按 M×N 顶点网格画网格线，带面片列表时按面片画
func (a *Assembler) buildMesh(v *entities.Polyline, s *Style) []Primitive {
	var prims []Primitive

	if len(v.Faces) > 0 {
		for _, face := range v.Faces {
			var poly []core.Point
			for _, idx := range face {
				// 面片索引从 1 起，负值表示边不可见（这里只取点）
				if idx < 0 {
					idx = -idx
				}
				if idx >= 1 && idx <= len(v.Vertices) {
					poly = append(poly, v.Vertices[idx-1].Position())
				}
			}
			if len(poly) >= 2 {
				prims = append(prims, Polyline{Points: poly, Closed: len(poly) >= 3, Style: s})
			}
		}
		return prims
	}

	prims = append(prims, Polyline{
		Points: ExpandPolyline(v.Vertices, v.Closed, a.ctx.Options),
		Closed: v.Closed,
		Style:  s,
	})

	return prims
}

// buildSolid 实心四边形：顶点按 Z 字序存储，三角形退化时只出一个三角形
func (a *Assembler) buildSolid(v *entities.Solid, s *Style) []Primitive {
	c := v.Corners

	if v.Triangle() {
		return []Primitive{Triangles{Points: []core.Point{c[0], c[1], c[2]}, Style: s}}
	}

	// Z 字序：0-1-2 与 2-1-3 两个三角形
	return []Primitive{Triangles{
		Points: []core.Point{c[0], c[1], c[2], c[2], c[1], c[3]},
		Style:  s,
	}}
}

// buildFace 3D 面：只描边不填充，按 Z 字序转角点序
func (a *Assembler) buildFace(v *entities.Face3D, s *Style) []Primitive {
	points := []core.Point{v.Corners[0], v.Corners[1], v.Corners[2]}
	if v.Corners[2] != v.Corners[3] {
		points = append(points, v.Corners[3])
	}

	return []Primitive{Polyline{Points: points, Closed: true, Style: s}}
}

// buildLeader 引线：样条路径采样，直线路径直连，首端箭头
func (a *Assembler) buildLeader(v *entities.Leader, s *Style) []Primitive {
	if len(v.Vertices) < 2 {
		return nil
	}

	points := v.Vertices
	if v.PathType == 1 {
		points = SampleCatmullRom(v.Vertices, a.ctx.Options.SplineSegments)
	}

	prims := []Primitive{Polyline{Points: points, Style: s}}

	if v.ArrowHead {
		angle := math.Atan2(v.Vertices[0].Y-v.Vertices[1].Y, v.Vertices[0].X-v.Vertices[1].X)
		prims = append(prims, buildArrow(v.Vertices[0], angle, 2.5, s))
	}

	return prims
}

// buildMultiLeader 多重引线：每个引线节点的各折线 + 基线肘段 + 文字
func (a *Assembler) buildMultiLeader(v *entities.MultiLeader, s *Style) []Primitive {
	var prims []Primitive

	arrow := v.ArrowSize
	if arrow <= 0 {
		arrow = 2.5
	}

	for _, node := range v.Leaders {
		for _, line := range node.Lines {
			if len(line.Vertices) == 0 {
				continue
			}

			points := append([]core.Point(nil), line.Vertices...)
			points = append(points, node.BasePoint)

			prims = append(prims, Polyline{Points: points, Style: s})

			if len(points) >= 2 {
				angle := math.Atan2(points[0].Y-points[1].Y, points[0].X-points[1].X)
				prims = append(prims, buildArrow(points[0], angle, arrow, s))
			}
		}

		if node.HasDogleg && node.DoglegLen > 0 {
			prims = append(prims, Polyline{
				Points: []core.Point{
					node.BasePoint,
					{X: node.BasePoint.X + node.DoglegLen, Y: node.BasePoint.Y},
				},
				Style: s,
			})
		}
	}

	if v.Text != "" {
		height := v.Height
		if height <= 0 {
			height = DimTextHeight
		}

		for i, line := range FormatMText(v.Text) {
			prims = append(prims, TextQuad{
				At:     core.Point{X: v.TextPos.X, Y: v.TextPos.Y - float64(i)*height*1.6, Z: v.TextPos.Z},
				Text:   line.Plain(),
				Height: height,
				Style:  s,
			})
		}
	}

	return prims
}

// buildMText 多行富文本：控制码解析成行，逐行逐段排布
// 段的横向推进按字宽经验值估算（没有字体度量）
func (a *Assembler) buildMText(v *entities.MText, s *Style) []Primitive {
	height := v.Height
	if height <= 0 {
		height = 1
	}

	rotation := v.Rotation
	if rotation == 0 && (v.Direction.X != 0 || v.Direction.Y != 0) {
		rotation = math.Atan2(v.Direction.Y, v.Direction.X)
	}

	var (
		lineGap = height * 1.6

		cos = math.Cos(rotation)
		sin = math.Sin(rotation)

		prims []Primitive
	)

	if v.LineSpacing > 0 {
		lineGap = height * v.LineSpacing * 5.0 / 3.0
	}

	for row, line := range FormatMText(v.Value) {
		var advance float64

		for _, span := range line.Spans {
			var (
				// 行内下移 + 段横向推进，再按整体旋转摆放
				dx = advance
				dy = -float64(row) * lineGap

				at = core.Point{
					X: v.Position.X + dx*cos - dy*sin,
					Y: v.Position.Y + dx*sin + dy*cos,
					Z: v.Position.Z,
				}

				spanStyle = s
				spanH     = height * span.Height
			)

			// 行内颜色覆盖：只影响该段，不跨指令延续
			if span.Color > 0 && span.Color != 256 {
				spanStyle = a.ctx.style(s.Layer, color.FromIndex(span.Color))
			}

			// 没有 \f 指令的段回落到文字样式表的字体
			font := span.Font
			if font == "" {
				font = a.fontOf(v.StyleName)
			}

			quad := TextQuad{
				At:            at,
				Text:          span.Text,
				Height:        spanH,
				Rotation:      rotation,
				Bold:          span.Bold,
				Italic:        span.Italic,
				Font:          font,
				StackedTop:    span.StackedTop,
				StackedBottom: span.StackedBottom,
				Style:         spanStyle,
			}
			prims = append(prims, quad)

			advance += measureText(span, spanH)
		}
	}

	return prims
}

// measureText 文本推进宽度估算：无字体度量时按 0.6 倍字高一个半角字符
func measureText(span TextSpan, height float64) float64 {
	text := span.Text
	if span.StackedTop != "" || span.StackedBottom != "" {
		n := len([]rune(span.StackedTop))
		if m := len([]rune(span.StackedBottom)); m > n {
			n = m
		}
		// 堆叠分数字号减半
		return float64(n) * height * 0.3
	}

	var w float64
	for _, r := range text {
		if r > 0x2E80 {
			// 全角字符占一个字高
			w += height
		} else {
			w += height * 0.6
		}
	}

	return w
}

// transformPrimitives 把局部坐标图元经累计 Insert 变换到世界坐标
func transformPrimitives(prims []Primitive, ins *entities.Insert) []Primitive {
	if isIdentity(ins) {
		return prims
	}

	// 各向缩放的近似标量：文字高度等标量量纲用它
	scale := math.Sqrt(math.Abs(ins.Scale.X * ins.Scale.Y))
	if scale <= 0 {
		scale = 1
	}

	out := make([]Primitive, 0, len(prims))
	for _, p := range prims {
		switch v := p.(type) {
		case Polyline:
			v.Points = transformPoints(v.Points, ins)
			if scale != 1 && len(v.Pattern) > 0 {
				pattern := make([]float64, len(v.Pattern))
				for i, d := range v.Pattern {
					pattern[i] = d * scale
				}
				v.Pattern = pattern
			}
			out = append(out, v)

		case Triangles:
			v.Points = transformPoints(v.Points, ins)
			out = append(out, v)

		case Marker:
			v.At = utils.TransformPoint(v.At, ins)
			out = append(out, v)

		case TextQuad:
			v.At = utils.TransformPoint(v.At, ins)
			v.Height *= scale
			v.Rotation += ins.RotationRad()
			out = append(out, v)

		case Arrow:
			v.Tip = utils.TransformPoint(v.Tip, ins)
			v.Left = utils.TransformPoint(v.Left, ins)
			v.Right = utils.TransformPoint(v.Right, ins)
			out = append(out, v)

		default:
			out = append(out, p)
		}
	}

	return out
}

func transformPoints(points []core.Point, ins *entities.Insert) []core.Point {
	out := make([]core.Point, len(points))
	for i, p := range points {
		out[i] = utils.TransformPoint(p, ins)
	}

	return out
}

func isIdentity(ins *entities.Insert) bool {
	return ins.Rotation == 0 &&
		ins.Scale.X == 1 && ins.Scale.Y == 1 && ins.Scale.Z == 1 &&
		ins.InsertionPoint == (core.Point{})
}
