package entities

import (
	"math"

	"github.com/zooyer/dxfview/core"
)

type Line struct {
	BaseEntity
	Start, End core.Point
	Thickness  float64
}

func NewLine() *Line {
	return &Line{BaseEntity: newBase("LINE")}
}

func (l *Line) Parse(s *core.Scanner) (err error) {
	return parseProps(s, &l.BaseEntity, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 10:
			if l.Start, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 11:
			if l.End, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 39:
			l.Thickness = t.AsFloat()
		default:
			return false, nil
		}

		return true, nil
	})
}

func (l *Line) BBox() core.BBox {
	return core.BBox{
		Min: core.Point{X: math.Min(l.Start.X, l.End.X), Y: math.Min(l.Start.Y, l.End.Y), Z: math.Min(l.Start.Z, l.End.Z)},
		Max: core.Point{X: math.Max(l.Start.X, l.End.X), Y: math.Max(l.Start.Y, l.End.Y), Z: math.Max(l.Start.Z, l.End.Z)},
	}
}

// PointEntity 单点实体（POINT）
type PointEntity struct {
	BaseEntity
	Position core.Point
}

func NewPointEntity() *PointEntity {
	return &PointEntity{BaseEntity: newBase("POINT")}
}

func (p *PointEntity) Parse(s *core.Scanner) (err error) {
	return parseProps(s, &p.BaseEntity, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 10:
			if p.Position, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		default:
			return false, nil
		}

		return true, nil
	})
}

func (p *PointEntity) BBox() core.BBox {
	return core.NewBBox(p.Position)
}
