package entities

import (
	"github.com/zooyer/dxfview/core"
)

// 样条标志位（组码 70）
const (
	SplineClosed   = 1
	SplinePeriodic = 2
	SplineRational = 4
	SplinePlanar   = 8
	SplineLinear   = 16
)

// Spline NURBS 样条
// 节点、控制点、权重、拟合点都是变长且顺序无关的重复组码
type Spline struct {
	BaseEntity
	Degree    int
	Flags     int
	Knots     []float64
	Controls  []core.Point
	Weights   []float64
	FitPoints []core.Point
}

func NewSpline() *Spline {
	return &Spline{BaseEntity: newBase("SPLINE"), Degree: 3}
}

func (sp *Spline) Parse(s *core.Scanner) (err error) {
	return parseProps(s, &sp.BaseEntity, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 70:
			sp.Flags = t.AsInt()
		case 71:
			sp.Degree = t.AsInt()
		case 72:
			if n := t.AsInt(); n > 0 && n < 1<<20 && sp.Knots == nil {
				sp.Knots = make([]float64, 0, n)
			}
		case 73:
			if n := t.AsInt(); n > 0 && n < 1<<20 && sp.Controls == nil {
				sp.Controls = make([]core.Point, 0, n)
			}
		case 40:
			sp.Knots = append(sp.Knots, t.AsFloat())
		case 41:
			sp.Weights = append(sp.Weights, t.AsFloat())
		case 10:
			p, err := core.ReadPoint(s, t)
			if err != nil {
				return false, err
			}
			sp.Controls = append(sp.Controls, p)
		case 11:
			p, err := core.ReadPoint(s, t)
			if err != nil {
				return false, err
			}
			sp.FitPoints = append(sp.FitPoints, p)
		default:
			return false, nil
		}

		return true, nil
	})
}

// Closed 是否闭合
func (sp *Spline) Closed() bool {
	return sp.Flags&SplineClosed != 0
}

// Periodic 是否周期
func (sp *Spline) Periodic() bool {
	return sp.Flags&SplinePeriodic != 0
}

// Rational 是否有理（带权重）
func (sp *Spline) Rational() bool {
	return sp.Flags&SplineRational != 0
}

// Planar 是否平面
func (sp *Spline) Planar() bool {
	return sp.Flags&SplinePlanar != 0
}

func (sp *Spline) BBox() core.BBox {
	points := sp.Controls
	if len(points) == 0 {
		points = sp.FitPoints
	}
	if len(points) == 0 {
		return core.BBox{}
	}

	box := core.NewBBox(points[0])
	for _, p := range points[1:] {
		box.Extend(p)
	}

	return box
}
