package entities

import (
	"github.com/zooyer/dxfview/core"
)

// Polyline 重量级多段线：头实体后面跟一串 VERTEX 子实体，以 SEQEND 结束
type Polyline struct {
	BaseEntity
	Vertices []Vertex
	Faces    [][4]int // 多面网格的面索引（VERTEX 组码 71-74）
	Closed   bool
	Is3D     bool
	Mesh     bool
}

func NewPolyline() *Polyline {
	return &Polyline{BaseEntity: newBase("POLYLINE")}
}

func (p *Polyline) Parse(s *core.Scanner) error {
	// 1. 头实体自身的属性
	err := parseProps(s, &p.BaseEntity, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 70:
			flags := t.AsInt()
			p.Closed = flags&1 != 0
			p.Is3D = flags&8 != 0
			p.Mesh = flags&64 != 0
		default:
			return false, nil
		}

		return true, nil
	})
	if err != nil {
		return err
	}

	// 2. 抓取 VERTEX 子实体直到 SEQEND，每个 VERTEX 在自己的组码 0 上闭合
	for !s.Exhausted() {
		t, err := s.Peek()
		if err != nil || t.Code != 0 {
			return nil
		}

		switch {
		case t.Is("VERTEX"):
			if _, err = s.Next(); err != nil {
				return nil
			}
			if err = p.parseVertex(s); err != nil {
				return err
			}
		case t.Is("SEQEND"):
			if _, err = s.Next(); err != nil {
				return nil
			}
			// SEQEND 自己也可能带少量属性标签，消费掉
			var seqend = newBase("SEQEND")
			return parseProps(s, &seqend, func(t core.Tag) (bool, error) {
				return false, nil
			})
		default:
			// 不是子实体，多段线到此为止
			return nil
		}
	}

	return nil
}

// parseVertex 单个 VERTEX 子记录：独立累积坐标、凸度和面索引
func (p *Polyline) parseVertex(s *core.Scanner) (err error) {
	var (
		vertex Vertex
		face   [4]int
		isFace bool
		base   = newBase("VERTEX")
	)

	err = parseProps(s, &base, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 10:
			pt, err := core.ReadPoint(s, t)
			if err != nil {
				return false, err
			}
			vertex.X, vertex.Y, vertex.Z = pt.X, pt.Y, pt.Z
		case 42:
			if b := t.AsFloat(); b != 0 {
				vertex.Bulge = b
			}
		case 40:
			vertex.StartWidth = t.AsFloat()
		case 41:
			vertex.EndWidth = t.AsFloat()
		case 71, 72, 73, 74:
			face[t.Code-71] = t.AsInt()
			isFace = true
		default:
			return false, nil
		}

		return true, nil
	})
	if err != nil {
		return err
	}

	if isFace {
		p.Faces = append(p.Faces, face)
	} else {
		p.Vertices = append(p.Vertices, vertex)
	}

	return nil
}

func (p *Polyline) BBox() core.BBox {
	if len(p.Vertices) == 0 {
		return core.BBox{}
	}

	box := core.NewBBox(p.Vertices[0].Position())
	for _, v := range p.Vertices[1:] {
		box.Extend(v.Position())
	}

	return box
}
