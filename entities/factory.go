package entities

import (
	"github.com/zooyer/dxfview/core"
)

// Entity 是一切几何实体的接口
// Parse 的约定：进入时扫描器已消费掉 (0, 实体名) 标签，位于第一个属性标签前；
// 返回时扫描器停在下一个组码 0 标签前（或文件末尾）
type Entity interface {
	Parse(scanner *core.Scanner) error
	Type() string
	Layer() string
	Common() *BaseEntity
	BBox() core.BBox
}

// BaseEntity 存放所有实体通用的属性（如 Layer, Color, Handle）
type BaseEntity struct {
	TypeName   string
	Handle     string
	Owner      string
	LayerName  string
	LineType   string
	ColorIndex int // 0=ByBlock 256=ByLayer
	TrueColor  int // 组码 420，-1 表示未指定
	Lineweight int
	Invisible  bool
	PaperSpace bool
	XData      map[string][]core.Tag

	xdataApp string // 当前扩展数据归属的应用名
}

func newBase(typeName string) BaseEntity {
	return BaseEntity{
		TypeName:   typeName,
		ColorIndex: 256, // 默认 ByLayer
		TrueColor:  -1,
	}
}

func (b *BaseEntity) Type() string { return b.TypeName }

func (b *BaseEntity) Layer() string { return b.LayerName }

func (b *BaseEntity) Common() *BaseEntity { return b }

// Apply 通用属性兜底处理：实体解析器认不出的组码都走这里
// 返回是否已被消费
func (b *BaseEntity) Apply(t core.Tag) bool {
	switch t.Code {
	case 5:
		b.Handle = t.AsString()
	case 330:
		b.Owner = t.AsString()
	case 8:
		b.LayerName = t.AsString()
	case 6:
		b.LineType = t.AsString()
	case 62:
		b.ColorIndex = t.AsInt()
	case 420:
		b.TrueColor = t.AsInt()
	case 370:
		b.Lineweight = t.AsInt()
	case 60:
		b.Invisible = t.AsInt() == 1
	case 67:
		b.PaperSpace = t.AsInt() == 1
	case 1001:
		if b.XData == nil {
			b.XData = make(map[string][]core.Tag)
		}
		b.xdataApp = t.AsString()
		b.XData[b.xdataApp] = nil
	default:
		if t.Code >= 1000 && t.Code <= 1071 {
			if b.XData == nil {
				b.XData = make(map[string][]core.Tag)
			}
			b.XData[b.xdataApp] = append(b.XData[b.xdataApp], t)
			return true
		}
		return false
	}

	return true
}

// Factory 定义了如何从标签流中创建一个实体
type Factory func() Entity

// Registry 实体名到构造器的分发表
// 启动时从静态列表构建一次，之后只读，由解析上下文持有
type Registry map[string]Factory

// NewRegistry 构建默认的实体分发表
func NewRegistry() Registry {
	var registry = make(Registry, len(factories))
	for name, factory := range factories {
		registry[name] = factory
	}

	return registry
}

// Create 根据实体名称生产对应的结构体，认不出的返回 nil
func (r Registry) Create(typeName string) Entity {
	if factory, ok := r[typeName]; ok {
		return factory()
	}

	return nil
}

// CreateAny 同 Create，但认不出的实体名返回 Unknown 占位实体
func (r Registry) CreateAny(typeName string) Entity {
	if entity := r.Create(typeName); entity != nil {
		return entity
	}

	return NewUnknown(typeName)
}

// 静态注册表：新增实体类型在这里挂一行
var factories = map[string]Factory{
	"LINE":        func() Entity { return NewLine() },
	"POINT":       func() Entity { return NewPointEntity() },
	"CIRCLE":      func() Entity { return NewCircle() },
	"ARC":         func() Entity { return NewArc() },
	"ELLIPSE":     func() Entity { return NewEllipse() },
	"LWPOLYLINE":  func() Entity { return NewLWPolyline() },
	"POLYLINE":    func() Entity { return NewPolyline() },
	"SPLINE":      func() Entity { return NewSpline() },
	"TEXT":        func() Entity { return NewText() },
	"MTEXT":       func() Entity { return NewMText() },
	"ATTDEF":      func() Entity { return NewAttDef() },
	"ATTRIB":      func() Entity { return NewAttrib() },
	"DIMENSION":   func() Entity { return NewDimension() },
	"INSERT":      func() Entity { return NewInsert() },
	"SOLID":       func() Entity { return NewSolid() },
	"3DFACE":      func() Entity { return NewFace3D() },
	"HATCH":       func() Entity { return NewHatch() },
	"LEADER":      func() Entity { return NewLeader() },
	"MULTILEADER": func() Entity { return NewMultiLeader() },
	"VIEWPORT":    func() Entity { return NewViewport("VIEWPORT") },
	"IMAGE":       func() Entity { return NewViewport("IMAGE") },
	"WIPEOUT":     func() Entity { return NewViewport("WIPEOUT") },
}

// Vertex 多段线顶点
// Bulge 为 0 表示无曲率：解析器对 0 不做存储，稀疏语义
type Vertex struct {
	X, Y, Z    float64
	Bulge      float64
	StartWidth float64
	EndWidth   float64
}

// Position 返回顶点坐标
func (v Vertex) Position() core.Point {
	return core.Point{X: v.X, Y: v.Y, Z: v.Z}
}
