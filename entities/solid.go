package entities

import (
	"github.com/zooyer/dxfview/core"
)

// Solid 填充四边形（2D）
// 注意 DXF 的顶点顺序是 Z 字形：10-11-13-12 才是轮廓顺序
type Solid struct {
	BaseEntity
	Corners [4]core.Point
	hasP4   bool
}

func NewSolid() *Solid {
	return &Solid{BaseEntity: newBase("SOLID")}
}

func (so *Solid) Parse(s *core.Scanner) (err error) {
	return parseProps(s, &so.BaseEntity, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 10, 11, 12, 13:
			idx := t.Code - 10
			if so.Corners[idx], err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
			if idx == 3 {
				so.hasP4 = true
			}
		default:
			return false, nil
		}

		return true, nil
	})
}

// Triangle 是否退化为三角形（第 4 点缺失或与第 3 点重合）
func (so *Solid) Triangle() bool {
	return !so.hasP4 || so.Corners[2] == so.Corners[3]
}

func (so *Solid) BBox() core.BBox {
	box := core.NewBBox(so.Corners[0])
	for _, p := range so.Corners[1:] {
		box.Extend(p)
	}

	return box
}

// Face3D 平面 3DFACE 四边形
type Face3D struct {
	BaseEntity
	Corners  [4]core.Point
	EdgeFlag int // 组码 70，边不可见位
}

func NewFace3D() *Face3D {
	return &Face3D{BaseEntity: newBase("3DFACE")}
}

func (f *Face3D) Parse(s *core.Scanner) (err error) {
	return parseProps(s, &f.BaseEntity, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 10, 11, 12, 13:
			if f.Corners[t.Code-10], err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 70:
			f.EdgeFlag = t.AsInt()
		default:
			return false, nil
		}

		return true, nil
	})
}

func (f *Face3D) BBox() core.BBox {
	box := core.NewBBox(f.Corners[0])
	for _, p := range f.Corners[1:] {
		box.Extend(p)
	}

	return box
}
