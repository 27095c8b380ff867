package entities

import (
	"math"

	"github.com/zooyer/dxfview/core"
)

// Text 单行文字
type Text struct {
	BaseEntity
	Position    core.Point
	AlignPoint  core.Point
	Value       string
	Height      float64
	Rotation    float64 // 弧度
	WidthFactor float64
	StyleName   string
	HAlign      int // 组码 72
	VAlign      int // 组码 73
}

func NewText() *Text {
	return &Text{BaseEntity: newBase("TEXT"), WidthFactor: 1}
}

func (tx *Text) Parse(s *core.Scanner) (err error) {
	return parseProps(s, &tx.BaseEntity, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 10:
			if tx.Position, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 11:
			if tx.AlignPoint, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 1:
			tx.Value = t.Value
		case 7:
			tx.StyleName = t.AsString()
		case 40:
			tx.Height = t.AsFloat()
		case 41:
			tx.WidthFactor = t.AsFloat()
		case 50:
			tx.Rotation = t.AsFloat() * math.Pi / 180
		case 72:
			tx.HAlign = t.AsInt()
		case 73:
			tx.VAlign = t.AsInt()
		default:
			return false, nil
		}

		return true, nil
	})
}

func (tx *Text) BBox() core.BBox {
	return core.NewBBox(tx.Position)
}

// MText 多行富文本，正文可能拆在多个组码 3 + 一个组码 1 里
type MText struct {
	BaseEntity
	Position    core.Point
	Direction   core.Point // 组码 11，文字方向向量
	Value       string
	Height      float64
	Width       float64
	Rotation    float64 // 弧度
	StyleName   string
	Attachment  int     // 组码 71，九宫格附着点
	LineSpacing float64 // 组码 44
}

func NewMText() *MText {
	return &MText{BaseEntity: newBase("MTEXT"), LineSpacing: 1}
}

func (m *MText) Parse(s *core.Scanner) (err error) {
	return parseProps(s, &m.BaseEntity, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 10:
			if m.Position, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 11:
			if m.Direction, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 3:
			// 超长正文的续段，按出现顺序拼接
			m.Value += t.Value
		case 1:
			m.Value += t.Value
		case 7:
			m.StyleName = t.AsString()
		case 40:
			m.Height = t.AsFloat()
		case 41:
			m.Width = t.AsFloat()
		case 50:
			m.Rotation = t.AsFloat() * math.Pi / 180
		case 71:
			m.Attachment = t.AsInt()
		case 44:
			m.LineSpacing = t.AsFloat()
		default:
			return false, nil
		}

		return true, nil
	})
}

func (m *MText) BBox() core.BBox {
	return core.NewBBox(m.Position)
}

// AttDef 属性定义（块内的属性模板）
type AttDef struct {
	BaseEntity
	Tag      string
	Prompt   string
	Default  string
	Position core.Point
	Height   float64
	Flags    int
}

func NewAttDef() *AttDef {
	return &AttDef{BaseEntity: newBase("ATTDEF")}
}

func (a *AttDef) Parse(s *core.Scanner) (err error) {
	return parseProps(s, &a.BaseEntity, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 10:
			if a.Position, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 1:
			a.Default = t.Value
		case 2:
			a.Tag = t.AsString()
		case 3:
			a.Prompt = t.Value
		case 40:
			a.Height = t.AsFloat()
		case 70:
			a.Flags = t.AsInt()
		default:
			return false, nil
		}

		return true, nil
	})
}

func (a *AttDef) BBox() core.BBox {
	return core.NewBBox(a.Position)
}

// Attrib 块引用携带的属性值
type Attrib struct {
	BaseEntity
	Tag      string
	Text     string
	Position core.Point
	Height   float64
	Flags    int
}

func NewAttrib() *Attrib {
	return &Attrib{BaseEntity: newBase("ATTRIB")}
}

func (a *Attrib) Parse(s *core.Scanner) (err error) {
	return parseProps(s, &a.BaseEntity, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 10:
			if a.Position, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 1:
			a.Text = t.AsString()
		case 2:
			a.Tag = t.AsString()
		case 40:
			a.Height = t.AsFloat()
		case 70:
			a.Flags = t.AsInt()
		default:
			return false, nil
		}

		return true, nil
	})
}

func (a *Attrib) BBox() core.BBox {
	return core.NewBBox(a.Position)
}
