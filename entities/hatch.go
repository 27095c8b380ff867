package entities

import (
	"math"

	"github.com/zooyer/dxfview/core"
)

// 边界路径类型标志（组码 92）
const (
	PathExternal  = 1
	PathPolyline  = 2
	PathDerived   = 4
	PathTextbox   = 8
	PathOutermost = 16
)

// 边界边类型（组码 72，非多段线路径）
const (
	EdgeLine    = 1
	EdgeArc     = 2
	EdgeEllipse = 3
	EdgeSpline  = 4
)

// HatchEdge 一条类型化的边界边，字段按 Type 取用
type HatchEdge struct {
	Type int

	// 直线
	Start, End core.Point

	// 圆弧 / 椭圆弧
	Center     core.Point
	Radius     float64
	MajorAxis  core.Point // 椭圆长轴端点（相对圆心）
	Ratio      float64
	StartAngle float64 // 弧度
	EndAngle   float64 // 弧度
	CCW        bool

	// 样条
	Degree   int
	Rational bool
	Periodic bool
	Knots    []float64
	Controls []core.Point
	Weights  []float64
}

// BoundaryPath 一条闭合边界：按类型标志位二选一存边列表或多段线顶点
type BoundaryPath struct {
	Flags    int
	Edges    []HatchEdge
	Vertices []Vertex // 多段线边界；闭合时首顶点会复制到末尾
	Closed   bool
	HasBulge bool
}

// Polyline 是否为多段线边界
func (p BoundaryPath) Polyline() bool {
	return p.Flags&PathPolyline != 0
}

// PatternLine 填充图案中的一族平行线定义
type PatternLine struct {
	Angle  float64 // 组码 53，解析时转弧度
	Base   core.Point
	Offset core.Point
	Dashes []float64 // 正值画线，负值留空
}

type Hatch struct {
	BaseEntity
	PatternName  string
	Solid        bool
	Associative  bool
	Elevation    core.Point
	Paths        []BoundaryPath
	Style        int
	PatternType  int
	PatternAngle float64 // 弧度
	PatternScale float64
	PatternLines []PatternLine
}

func NewHatch() *Hatch {
	return &Hatch{BaseEntity: newBase("HATCH"), PatternScale: 1}
}

func (h *Hatch) Parse(s *core.Scanner) (err error) {
	return parseProps(s, &h.BaseEntity, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 2:
			h.PatternName = t.AsString()
		case 70:
			h.Solid = t.AsInt() == 1
		case 71:
			h.Associative = t.AsInt() == 1
		case 75:
			h.Style = t.AsInt()
		case 76:
			h.PatternType = t.AsInt()
		case 52:
			h.PatternAngle = t.AsFloat() * math.Pi / 180
		case 41:
			h.PatternScale = t.AsFloat()
		case 10:
			if h.Elevation, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 91:
			if err = h.parsePaths(s, t.AsInt()); err != nil {
				return false, err
			}
		case 78:
			if err = h.parsePatternLines(s, t.AsInt()); err != nil {
				return false, err
			}
		default:
			return false, nil
		}

		return true, nil
	})
}

// nextIf 预读下一个标签，组码匹配则消费
func nextIf(s *core.Scanner, code int) (core.Tag, bool) {
	t, err := s.Peek()
	if err != nil || t.Code != code {
		return core.Tag{}, false
	}

	if _, err = s.Next(); err != nil {
		return core.Tag{}, false
	}

	return t, true
}

func (h *Hatch) parsePaths(s *core.Scanner, count int) error {
	if count < 0 || count > 1<<16 {
		return nil
	}

	for i := 0; i < count; i++ {
		flagTag, ok := nextIf(s, 92)
		if !ok {
			return nil
		}

		var path = BoundaryPath{Flags: flagTag.AsInt()}

		if path.Polyline() {
			if err := h.parsePolylinePath(s, &path); err != nil {
				return err
			}
		} else {
			if err := h.parseEdgePath(s, &path); err != nil {
				return err
			}
		}

		// 路径尾部的关联源对象引用（97 计数 + 330 句柄），消费掉
		if n, ok := nextIf(s, 97); ok {
			for j := 0; j < n.AsInt(); j++ {
				if _, ok = nextIf(s, 330); !ok {
					break
				}
			}
		}

		h.Paths = append(h.Paths, path)
	}

	return nil
}

// parsePolylinePath 多段线边界：72 有无凸度、73 闭合、93 顶点数、顶点序列
// 闭合边界必须把首顶点复制到末尾，填充与描边的闭合都依赖这一点
func (h *Hatch) parsePolylinePath(s *core.Scanner, path *BoundaryPath) error {
	if t, ok := nextIf(s, 72); ok {
		path.HasBulge = t.AsInt() != 0
	}
	if t, ok := nextIf(s, 73); ok {
		path.Closed = t.AsInt() != 0
	}

	n := 0
	if t, ok := nextIf(s, 93); ok {
		n = t.AsInt()
	}
	if n < 0 || n > 1<<20 {
		return nil
	}

	for i := 0; i < n; i++ {
		xTag, ok := nextIf(s, 10)
		if !ok {
			break
		}

		p, err := core.ReadPoint(s, xTag)
		if err != nil {
			return err
		}

		var vertex = Vertex{X: p.X, Y: p.Y, Z: p.Z}
		if t, ok := nextIf(s, 42); ok {
			if b := t.AsFloat(); b != 0 {
				vertex.Bulge = b
			}
		}

		path.Vertices = append(path.Vertices, vertex)
	}

	if path.Closed && len(path.Vertices) > 0 {
		first := path.Vertices[0]
		first.Bulge = 0
		path.Vertices = append(path.Vertices, first)
	}

	return nil
}

// parseEdgePath 类型化边界：93 边数，每条边以 72 声明类型，字段集各不相同
func (h *Hatch) parseEdgePath(s *core.Scanner, path *BoundaryPath) error {
	n := 0
	if t, ok := nextIf(s, 93); ok {
		n = t.AsInt()
	}
	if n < 0 || n > 1<<20 {
		return nil
	}

	for i := 0; i < n; i++ {
		typeTag, ok := nextIf(s, 72)
		if !ok {
			break
		}

		var edge = HatchEdge{Type: typeTag.AsInt()}

		switch edge.Type {
		case EdgeLine:
			if err := h.parseLineEdge(s, &edge); err != nil {
				return err
			}
		case EdgeArc:
			if err := h.parseArcEdge(s, &edge); err != nil {
				return err
			}
		case EdgeEllipse:
			if err := h.parseEllipseEdge(s, &edge); err != nil {
				return err
			}
		case EdgeSpline:
			if err := h.parseSplineEdge(s, &edge); err != nil {
				return err
			}
		default:
			// 认不出的边类型，整条路径放弃
			return nil
		}

		path.Edges = append(path.Edges, edge)
	}

	return nil
}

func (h *Hatch) parseLineEdge(s *core.Scanner, edge *HatchEdge) (err error) {
	if t, ok := nextIf(s, 10); ok {
		if edge.Start, err = core.ReadPoint(s, t); err != nil {
			return err
		}
	}
	if t, ok := nextIf(s, 11); ok {
		if edge.End, err = core.ReadPoint(s, t); err != nil {
			return err
		}
	}

	return nil
}

func (h *Hatch) parseArcEdge(s *core.Scanner, edge *HatchEdge) (err error) {
	if t, ok := nextIf(s, 10); ok {
		if edge.Center, err = core.ReadPoint(s, t); err != nil {
			return err
		}
	}
	if t, ok := nextIf(s, 40); ok {
		edge.Radius = t.AsFloat()
	}
	if t, ok := nextIf(s, 50); ok {
		edge.StartAngle = t.AsFloat() * math.Pi / 180
	}
	if t, ok := nextIf(s, 51); ok {
		edge.EndAngle = t.AsFloat() * math.Pi / 180
	}
	if t, ok := nextIf(s, 73); ok {
		edge.CCW = t.AsInt() != 0
	}

	return nil
}

func (h *Hatch) parseEllipseEdge(s *core.Scanner, edge *HatchEdge) (err error) {
	if t, ok := nextIf(s, 10); ok {
		if edge.Center, err = core.ReadPoint(s, t); err != nil {
			return err
		}
	}
	if t, ok := nextIf(s, 11); ok {
		if edge.MajorAxis, err = core.ReadPoint(s, t); err != nil {
			return err
		}
	}
	if t, ok := nextIf(s, 40); ok {
		edge.Ratio = t.AsFloat()
	}
	if t, ok := nextIf(s, 50); ok {
		edge.StartAngle = t.AsFloat() * math.Pi / 180
	}
	if t, ok := nextIf(s, 51); ok {
		edge.EndAngle = t.AsFloat() * math.Pi / 180
	}
	if t, ok := nextIf(s, 73); ok {
		edge.CCW = t.AsInt() != 0
	}

	return nil
}

func (h *Hatch) parseSplineEdge(s *core.Scanner, edge *HatchEdge) (err error) {
	if t, ok := nextIf(s, 94); ok {
		edge.Degree = t.AsInt()
	}
	if t, ok := nextIf(s, 73); ok {
		edge.Rational = t.AsInt() != 0
	}
	if t, ok := nextIf(s, 74); ok {
		edge.Periodic = t.AsInt() != 0
	}

	var knots, controls int
	if t, ok := nextIf(s, 95); ok {
		knots = t.AsInt()
	}
	if t, ok := nextIf(s, 96); ok {
		controls = t.AsInt()
	}
	if knots < 0 || knots > 1<<20 || controls < 0 || controls > 1<<20 {
		return nil
	}

	for i := 0; i < knots; i++ {
		t, ok := nextIf(s, 40)
		if !ok {
			break
		}
		edge.Knots = append(edge.Knots, t.AsFloat())
	}

	for i := 0; i < controls; i++ {
		t, ok := nextIf(s, 10)
		if !ok {
			break
		}

		p, err := core.ReadPoint(s, t)
		if err != nil {
			return err
		}
		edge.Controls = append(edge.Controls, p)

		// 有理样条的控制点各带一个权重
		if w, ok := nextIf(s, 42); ok {
			edge.Weights = append(edge.Weights, w.AsFloat())
		}
	}

	// 拟合数据（97 计数 + 11/21 点），几何上用不到，消费掉
	if t, ok := nextIf(s, 97); ok {
		for i := 0; i < t.AsInt(); i++ {
			ft, ok := nextIf(s, 11)
			if !ok {
				break
			}
			if _, err = core.ReadPoint(s, ft); err != nil {
				return err
			}
		}
	}

	return nil
}

// parsePatternLines 填充图案线族：53 角度、43/44 基点、45/46 偏移、79 划线数、49 划线段
func (h *Hatch) parsePatternLines(s *core.Scanner, count int) error {
	if count < 0 || count > 1<<16 {
		return nil
	}

	for i := 0; i < count; i++ {
		angleTag, ok := nextIf(s, 53)
		if !ok {
			return nil
		}

		var line = PatternLine{Angle: angleTag.AsFloat() * math.Pi / 180}

		if t, ok := nextIf(s, 43); ok {
			line.Base.X = t.AsFloat()
		}
		if t, ok := nextIf(s, 44); ok {
			line.Base.Y = t.AsFloat()
		}
		if t, ok := nextIf(s, 45); ok {
			line.Offset.X = t.AsFloat()
		}
		if t, ok := nextIf(s, 46); ok {
			line.Offset.Y = t.AsFloat()
		}

		dashes := 0
		if t, ok := nextIf(s, 79); ok {
			dashes = t.AsInt()
		}
		if dashes < 0 || dashes > 1<<12 {
			dashes = 0
		}

		for j := 0; j < dashes; j++ {
			t, ok := nextIf(s, 49)
			if !ok {
				break
			}
			line.Dashes = append(line.Dashes, t.AsFloat())
		}

		h.PatternLines = append(h.PatternLines, line)
	}

	return nil
}

func (h *Hatch) BBox() core.BBox {
	var (
		box   core.BBox
		first = true
	)

	for _, path := range h.Paths {
		for _, v := range path.Vertices {
			if first {
				box = core.NewBBox(v.Position())
				first = false
			} else {
				box.Extend(v.Position())
			}
		}
		for _, e := range path.Edges {
			for _, p := range []core.Point{e.Start, e.End, e.Center} {
				if first {
					box = core.NewBBox(p)
					first = false
				} else {
					box.Extend(p)
				}
			}
		}
	}

	return box
}
