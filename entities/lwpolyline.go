package entities

import (
	"github.com/zooyer/dxfview/core"
)

// LWPolyline 轻量多段线，顶点内联在实体自身的标签流里
type LWPolyline struct {
	BaseEntity
	Vertices      []Vertex
	Closed        bool
	ConstantWidth float64
	Elevation     float64
}

func NewLWPolyline() *LWPolyline {
	return &LWPolyline{BaseEntity: newBase("LWPOLYLINE")}
}

func (l *LWPolyline) Parse(s *core.Scanner) error {
	return parseProps(s, &l.BaseEntity, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 90:
			if n := t.AsInt(); n > 0 && n < 1<<20 {
				l.Vertices = make([]Vertex, 0, n)
			}
		case 70:
			l.Closed = t.AsInt()&1 != 0
		case 43:
			l.ConstantWidth = t.AsFloat()
		case 38:
			l.Elevation = t.AsFloat()
		case 10:
			l.parseVertices(s, t)
		default:
			return false, nil
		}

		return true, nil
	})
}

// parseVertices 逐组累积 (10,20,[40,41,42]) 顶点簇
// 约定：顶点未完成（有 10 没 20）时遇到认不出的组码，丢弃未完成的 X、
// 只保留已完成的顶点，把该组码交还上层重新读取。这是有意的契约，不是缺陷
func (l *LWPolyline) parseVertices(s *core.Scanner, first core.Tag) {
	var (
		x       = first.AsFloat()
		pending = true // 有 X 等待 Y
	)

	for {
		t, err := s.Peek()
		if err != nil {
			return
		}

		switch {
		case t.Code == 20 && pending:
			l.Vertices = append(l.Vertices, Vertex{X: x, Y: t.AsFloat()})
			pending = false
		case t.Code == 10 && !pending:
			x = t.AsFloat()
			pending = true
		case t.Code == 42 && !pending && len(l.Vertices) > 0:
			// 凸度为 0 不存储（稀疏语义）
			if b := t.AsFloat(); b != 0 {
				l.Vertices[len(l.Vertices)-1].Bulge = b
			}
		case t.Code == 40 && !pending && len(l.Vertices) > 0:
			l.Vertices[len(l.Vertices)-1].StartWidth = t.AsFloat()
		case t.Code == 41 && !pending && len(l.Vertices) > 0:
			l.Vertices[len(l.Vertices)-1].EndWidth = t.AsFloat()
		default:
			return
		}

		if _, err = s.Next(); err != nil {
			return
		}
	}
}

func (l *LWPolyline) BBox() core.BBox {
	if len(l.Vertices) == 0 {
		return core.BBox{}
	}

	box := core.NewBBox(l.Vertices[0].Position())
	for _, v := range l.Vertices[1:] {
		box.Extend(v.Position())
	}

	return box
}
