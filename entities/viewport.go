package entities

import (
	"github.com/zooyer/dxfview/core"
)

// Viewport 视口类实体（VIEWPORT/IMAGE/WIPEOUT）
// 能识别、保留通用属性，但不做几何重建，装配时进"不支持"清单
type Viewport struct {
	BaseEntity
	Center core.Point
	Width  float64
	Height float64
}

func NewViewport(typeName string) *Viewport {
	return &Viewport{BaseEntity: newBase(typeName)}
}

func (v *Viewport) Parse(s *core.Scanner) (err error) {
	return parseProps(s, &v.BaseEntity, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 10:
			if v.Center, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 40:
			v.Width = t.AsFloat()
		case 41:
			v.Height = t.AsFloat()
		default:
			return false, nil
		}

		return true, nil
	})
}

func (v *Viewport) BBox() core.BBox {
	return core.NewBBox(v.Center)
}

// Unknown 认不出的实体：消费标签、保留通用属性，不产生几何
type Unknown struct {
	BaseEntity
}

func NewUnknown(typeName string) *Unknown {
	return &Unknown{BaseEntity: newBase(typeName)}
}

func (u *Unknown) Parse(s *core.Scanner) error {
	return parseProps(s, &u.BaseEntity, func(t core.Tag) (bool, error) {
		return false, nil
	})
}

func (u *Unknown) BBox() core.BBox {
	return core.BBox{}
}
