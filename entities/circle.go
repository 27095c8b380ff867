package entities

import (
	"math"

	"github.com/zooyer/dxfview/core"
)

type Circle struct {
	BaseEntity
	Center core.Point
	Radius float64
}

func NewCircle() *Circle {
	return &Circle{BaseEntity: newBase("CIRCLE")}
}

func (c *Circle) Parse(s *core.Scanner) (err error) {
	return parseProps(s, &c.BaseEntity, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 10:
			if c.Center, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 40:
			c.Radius = t.AsFloat()
		default:
			return false, nil
		}

		return true, nil
	})
}

func (c *Circle) BBox() core.BBox {
	return core.BBox{
		Min: core.Point{X: c.Center.X - c.Radius, Y: c.Center.Y - c.Radius, Z: c.Center.Z},
		Max: core.Point{X: c.Center.X + c.Radius, Y: c.Center.Y + c.Radius, Z: c.Center.Z},
	}
}

// Arc 圆弧，角度在解析时从角度制转为弧度制
type Arc struct {
	BaseEntity
	Center     core.Point
	Radius     float64
	StartAngle float64 // 弧度
	EndAngle   float64 // 弧度
}

func NewArc() *Arc {
	return &Arc{BaseEntity: newBase("ARC")}
}

func (a *Arc) Parse(s *core.Scanner) (err error) {
	return parseProps(s, &a.BaseEntity, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 10:
			if a.Center, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 40:
			a.Radius = t.AsFloat()
		case 50:
			a.StartAngle = t.AsFloat() * math.Pi / 180
		case 51:
			a.EndAngle = t.AsFloat() * math.Pi / 180
		default:
			return false, nil
		}

		return true, nil
	})
}

func (a *Arc) BBox() core.BBox {
	// 粗略按整圆处理，精细包围盒交给几何重建层
	return core.BBox{
		Min: core.Point{X: a.Center.X - a.Radius, Y: a.Center.Y - a.Radius, Z: a.Center.Z},
		Max: core.Point{X: a.Center.X + a.Radius, Y: a.Center.Y + a.Radius, Z: a.Center.Z},
	}
}

// Ellipse 椭圆/椭圆弧
// MajorAxis 是长轴端点相对圆心的向量，Ratio 是短长轴比
type Ellipse struct {
	BaseEntity
	Center     core.Point
	MajorAxis  core.Point
	Ratio      float64
	StartParam float64 // 参数角，弧度
	EndParam   float64 // 参数角，弧度
}

func NewEllipse() *Ellipse {
	return &Ellipse{
		BaseEntity: newBase("ELLIPSE"),
		Ratio:      1,
		EndParam:   2 * math.Pi,
	}
}

func (e *Ellipse) Parse(s *core.Scanner) (err error) {
	return parseProps(s, &e.BaseEntity, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 10:
			if e.Center, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 11:
			if e.MajorAxis, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 40:
			e.Ratio = t.AsFloat()
		case 41:
			e.StartParam = t.AsFloat()
		case 42:
			e.EndParam = t.AsFloat()
		default:
			return false, nil
		}

		return true, nil
	})
}

func (e *Ellipse) BBox() core.BBox {
	major := math.Hypot(e.MajorAxis.X, e.MajorAxis.Y)
	return core.BBox{
		Min: core.Point{X: e.Center.X - major, Y: e.Center.Y - major, Z: e.Center.Z},
		Max: core.Point{X: e.Center.X + major, Y: e.Center.Y + major, Z: e.Center.Z},
	}
}
