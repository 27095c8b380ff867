package entities

import (
	"math"

	"github.com/zooyer/dxfview/core"
)

type Insert struct {
	BaseEntity
	BlockName      string
	InsertionPoint core.Point
	Scale          core.Point
	Rotation       float64 // 度（与变换工具约定一致）
	Rows, Columns  int
	RowSpacing     float64
	ColumnSpacing  float64
	Attributes     []*Attrib
}

func NewInsert() *Insert {
	return &Insert{
		BaseEntity: newBase("INSERT"),
		Scale:      core.Point{X: 1, Y: 1, Z: 1}, // 默认缩放为 1
		Rows:       1,
		Columns:    1,
	}
}

func (i *Insert) Parse(scanner *core.Scanner) error {
	hasAttributes := false

	err := parseProps(scanner, &i.BaseEntity, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 2:
			i.BlockName = t.AsString()
		case 10:
			p, err := core.ReadPoint(scanner, t)
			if err != nil {
				return false, err
			}
			i.InsertionPoint = p
		case 41:
			i.Scale.X = t.AsFloat()
		case 42:
			i.Scale.Y = t.AsFloat()
		case 43:
			i.Scale.Z = t.AsFloat()
		case 50:
			i.Rotation = t.AsFloat()
		case 70:
			i.Columns = t.AsInt()
		case 71:
			i.Rows = t.AsInt()
		case 44:
			i.ColumnSpacing = t.AsFloat()
		case 45:
			i.RowSpacing = t.AsFloat()
		case 66:
			if t.AsInt() == 1 {
				hasAttributes = true
			}
		default:
			return false, nil
		}

		return true, nil
	})
	if err != nil {
		return err
	}

	// 核心逻辑：如果标记了有属性，则继续在当前流中抓取 ATTRIB 直到 SEQEND
	if hasAttributes {
		for !scanner.Exhausted() {
			t, err := scanner.Peek()
			if err != nil || t.Code != 0 {
				return nil
			}

			switch {
			case t.Is("SEQEND"):
				if _, err = scanner.Next(); err != nil {
					return nil
				}
				var seqend = newBase("SEQEND")
				return parseProps(scanner, &seqend, func(t core.Tag) (bool, error) {
					return false, nil
				})
			case t.Is("ATTRIB"):
				if _, err = scanner.Next(); err != nil {
					return nil
				}
				attr := NewAttrib()
				if err = attr.Parse(scanner); err != nil {
					return err
				}
				i.Attributes = append(i.Attributes, attr)
			default:
				// 流被截断或损坏，把该标签交还上层
				return nil
			}
		}
	}

	return nil
}

func (i *Insert) BBox() core.BBox {
	// Insert 的包围盒比较特殊，通常需要结合 Block 定义计算
	// 这里先返回插入点
	return core.NewBBox(i.InsertionPoint)
}

// RotationRad 旋转角的弧度值
func (i *Insert) RotationRad() float64 {
	return i.Rotation * math.Pi / 180
}
