package entities

import (
	"github.com/zooyer/dxfview/core"
)

// Leader 引线：一串顶点加箭头/路径类型
type Leader struct {
	BaseEntity
	Vertices  []core.Point
	ArrowHead bool
	PathType  int // 0 直线段 1 样条
	StyleName string
}

func NewLeader() *Leader {
	return &Leader{BaseEntity: newBase("LEADER"), ArrowHead: true}
}

func (l *Leader) Parse(s *core.Scanner) (err error) {
	return parseProps(s, &l.BaseEntity, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 3:
			l.StyleName = t.AsString()
		case 71:
			l.ArrowHead = t.AsInt() != 0
		case 72:
			l.PathType = t.AsInt()
		case 10:
			p, err := core.ReadPoint(s, t)
			if err != nil {
				return false, err
			}
			l.Vertices = append(l.Vertices, p)
		default:
			return false, nil
		}

		return true, nil
	})
}

func (l *Leader) BBox() core.BBox {
	if len(l.Vertices) == 0 {
		return core.BBox{}
	}

	box := core.NewBBox(l.Vertices[0])
	for _, p := range l.Vertices[1:] {
		box.Extend(p)
	}

	return box
}

// MLeaderLine 多重引线里的一条折线
type MLeaderLine struct {
	Vertices []core.Point
}

// MLeaderNode 一组引线（LEADER 括号内），含若干折线和基点
type MLeaderNode struct {
	Lines     []MLeaderLine
	BasePoint core.Point
	HasDogleg bool
	DoglegLen float64
}

// MultiLeader 多重引线
// 标签流采用括号式标记语法：301 开 LEADER、302 开 LEADER_LINE、305 收括号，
// 需要一个显式的嵌套状态机而不是平铺字段表
type MultiLeader struct {
	BaseEntity
	Leaders   []MLeaderNode
	Text      string
	TextPos   core.Point
	Height    float64
	ArrowSize float64
	StyleName string
}

func NewMultiLeader() *MultiLeader {
	return &MultiLeader{BaseEntity: newBase("MULTILEADER")}
}

func (m *MultiLeader) Parse(s *core.Scanner) error {
	var (
		inLeader bool // 括号状态：当前在 LEADER 内
		inLine   bool // 括号状态：当前在 LEADER_LINE 内
	)

	return parseProps(s, &m.BaseEntity, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 301: // 开 LEADER
			m.Leaders = append(m.Leaders, MLeaderNode{})
			inLeader, inLine = true, false
		case 302: // 开 LEADER_LINE
			if !inLeader {
				// 容错：缺外层括号时补一个
				m.Leaders = append(m.Leaders, MLeaderNode{})
				inLeader = true
			}
			node := &m.Leaders[len(m.Leaders)-1]
			node.Lines = append(node.Lines, MLeaderLine{})
			inLine = true
		case 305: // 收括号：先收 LEADER_LINE，再收 LEADER
			switch {
			case inLine:
				inLine = false
			case inLeader:
				inLeader = false
			}
		case 10:
			p, err := core.ReadPoint(s, t)
			if err != nil {
				return false, err
			}
			switch {
			case inLine:
				node := &m.Leaders[len(m.Leaders)-1]
				line := &node.Lines[len(node.Lines)-1]
				line.Vertices = append(line.Vertices, p)
			case inLeader:
				m.Leaders[len(m.Leaders)-1].BasePoint = p
			default:
				m.TextPos = p
			}
		case 40:
			if inLeader && !inLine {
				node := &m.Leaders[len(m.Leaders)-1]
				node.HasDogleg = true
				node.DoglegLen = t.AsFloat()
			} else if !inLeader {
				m.Height = t.AsFloat()
			}
		case 41:
			if !inLeader {
				m.ArrowSize = t.AsFloat()
			}
		case 304:
			m.Text = t.Value
		case 3:
			m.StyleName = t.AsString()
		default:
			return false, nil
		}

		return true, nil
	})
}

func (m *MultiLeader) BBox() core.BBox {
	box := core.NewBBox(m.TextPos)
	for _, node := range m.Leaders {
		for _, line := range node.Lines {
			for _, p := range line.Vertices {
				box.Extend(p)
			}
		}
	}

	return box
}
