package render

import (
	"go.uber.org/zap"

	"github.com/zooyer/dxfview/color"
)

// 几何重建的工作量上限与细分常量
// 上限是正确性要求：病态/恶意的图案定义不能产出无界输出
const (
	CircleSegments     = 72     // 整圆细分段数
	MinArcSegments     = 8      // 圆弧最少段数
	SplineSegments     = 64     // 样条采样段数
	MaxInsertDepth     = 10     // 块引用递归深度上限
	MaxPatternLines    = 10000  // 单族填充线的重复上限
	MaxPatternSegments = 100000 // 单个填充的线段总数上限
)

// Options 重建选项
type Options struct {
	CircleSegments     int
	MinArcSegments     int
	SplineSegments     int
	MaxInsertDepth     int
	MaxPatternLines    int
	MaxPatternSegments int
}

// DefaultOptions 默认选项
func DefaultOptions() Options {
	return Options{
		CircleSegments:     CircleSegments,
		MinArcSegments:     MinArcSegments,
		SplineSegments:     SplineSegments,
		MaxInsertDepth:     MaxInsertDepth,
		MaxPatternLines:    MaxPatternLines,
		MaxPatternSegments: MaxPatternSegments,
	}
}

type styleKey struct {
	layer string
	color color.RGB
}

// Context 单次装配范围内的上下文
// 样式去重表必须显式作为参数随调用树传递，绝不放在包级全局
type Context struct {
	Options Options
	Logger  *zap.Logger

	styles map[styleKey]*Style

	// 汇总：不支持的实体与递归中止，与错误区分开
	Unsupported     map[string]int
	RecursionAborts int
	Warnings        []string
}

// NewContext 构造装配上下文，logger 为 nil 时静默
func NewContext(opt Options, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}

	if opt.CircleSegments <= 0 {
		opt = DefaultOptions()
	}

	return &Context{
		Options:     opt,
		Logger:      logger,
		styles:      make(map[styleKey]*Style),
		Unsupported: make(map[string]int),
	}
}

// style 样式对象去重：相同图层 + 颜色共享同一个实例
func (c *Context) style(layer string, rgb color.RGB) *Style {
	key := styleKey{layer: layer, color: rgb}
	if s, ok := c.styles[key]; ok {
		return s
	}

	s := &Style{Layer: layer, Color: rgb}
	c.styles[key] = s

	return s
}

// warn 记录一条重建告警
func (c *Context) warn(msg string, fields ...zap.Field) {
	c.Warnings = append(c.Warnings, msg)
	c.Logger.Warn(msg, fields...)
}
