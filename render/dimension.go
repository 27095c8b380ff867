package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/zooyer/dxfview"
	"github.com/zooyer/dxfview/core"
	"github.com/zooyer/dxfview/entities"
)

// 标注几何的固定特征尺寸（图纸单位，乘 DIMSCALE 生效）
const (
	DimExtension   = 1.2 // 延伸线冒过标注线的长度（AutoCAD 惯例）
	DimArrowSize   = 2.5 // 箭头长度
	DimTextHeight  = 2.5 // 缺省文字高度
	DimTextGapMul  = 4.0 // 文字豁口宽度 = 倍数 × 文字高度
	DimOnLineRange = 1.0 // 文字贴线判定的固定坐标容差
)

// formatDimNumber 测量值格式化：两位小数，去掉尾零（28.10 -> "28.1"，28 -> "28"）
func formatDimNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		s = "0"
	}

	return s
}

// dimFeature 汇集一次标注重建用到的特征尺寸
type dimFeature struct {
	arrow    float64
	textH    float64
	exe      float64
	overshot float64
}

func dimFeatures(d *entities.Dimension, style *dxfview.DimStyle) dimFeature {
	var f = dimFeature{
		arrow:    DimArrowSize,
		textH:    DimTextHeight,
		exe:      0,
		overshot: DimExtension,
	}

	if d.TextHeight > 0 {
		f.textH = d.TextHeight
	}

	if style != nil {
		scale := style.Scale
		if scale <= 0 {
			scale = 1
		}
		if style.ArrowSize > 0 {
			f.arrow = style.ArrowSize * scale
		}
		if style.TextHeight > 0 && d.TextHeight <= 0 {
			f.textH = style.TextHeight * scale
		}
		f.exe = style.ExLimit * scale
		f.overshot = DimExtension * scale
	}

	return f
}

// dimText 自动文字：无覆盖串（或 "<>" 占位）时按测量值生成
func dimText(d *entities.Dimension, measured float64, prefix, suffix string) string {
	if d.Text != "" && !strings.Contains(d.Text, "<>") {
		return d.Text
	}

	value := d.ActualMeasurement
	if value <= 0 {
		value = measured
	}

	text := prefix + formatDimNumber(value) + suffix
	if strings.Contains(d.Text, "<>") {
		text = strings.ReplaceAll(d.Text, "<>", text)
	}

	return text
}

// BuildDimension 按类型位域低半字节分发六种标注布局
func BuildDimension(d *entities.Dimension, style *dxfview.DimStyle, ctx *Context, s *Style) []Primitive {
	switch d.Kind() {
	case entities.DimLinear, entities.DimAligned:
		return buildLinearDim(d, style, ctx, s)
	case entities.DimAngular, entities.DimAngular3P:
		return buildAngularDim(d, style, ctx, s)
	case entities.DimDiametric:
		return buildRadialDim(d, style, ctx, s, true)
	case entities.DimRadial:
		return buildRadialDim(d, style, ctx, s, false)
	case entities.DimOrdinate:
		return buildOrdinateDim(d, style, ctx, s)
	default:
		return buildLinearDim(d, style, ctx, s)
	}
}

// projector 方向相关的坐标分解：主轴是测量方向，副轴是到标注线的偏移方向
// 同一套构线逻辑靠它同时服务水平/垂直/任意旋转
type projector struct {
	dir  core.Point // 主轴单位向量
	perp core.Point // 副轴单位向量
}

func newProjector(angle float64) projector {
	return projector{
		dir:  core.Point{X: math.Cos(angle), Y: math.Sin(angle)},
		perp: core.Point{X: -math.Sin(angle), Y: math.Cos(angle)},
	}
}

func (p projector) main(pt core.Point) float64 {
	return pt.X*p.dir.X + pt.Y*p.dir.Y
}

func (p projector) fixed(pt core.Point) float64 {
	return pt.X*p.perp.X + pt.Y*p.perp.Y
}

func (p projector) point(main, fixed float64) core.Point {
	return core.Point{
		X: main*p.dir.X + fixed*p.perp.X,
		Y: main*p.dir.Y + fixed*p.perp.Y,
	}
}

// buildArrow 箭头三角形：尖点 + 沿 angle 反方向的两个尾点
func buildArrow(tip core.Point, angle, size float64, s *Style) Arrow {
	var (
		bx = tip.X - size*math.Cos(angle)
		by = tip.Y - size*math.Sin(angle)

		hw = size / 3
		px = -math.Sin(angle) * hw
		py = math.Cos(angle) * hw
	)

	return Arrow{
		Tip:   tip,
		Left:  core.Point{X: bx + px, Y: by + py},
		Right: core.Point{X: bx - px, Y: by - py},
		Style: s,
	}
}

// buildLinearDim 线性/对齐/旋转标注
// 坐标分解成主轴（测量方向）和副轴（标注线偏移）后用同一套构线逻辑
func buildLinearDim(d *entities.Dimension, style *dxfview.DimStyle, ctx *Context, s *Style) []Primitive {
	var (
		f     = dimFeatures(d, style)
		angle = d.Angle
	)

	// 对齐标注沿被测两点方向；未给角度的线性标注按点差大的轴取水平/垂直
	if d.Kind() == entities.DimAligned {
		angle = math.Atan2(d.MeasureEnd.Y-d.MeasureStart.Y, d.MeasureEnd.X-d.MeasureStart.X)
	} else if d.Angle == 0 {
		dx := math.Abs(d.MeasureEnd.X - d.MeasureStart.X)
		dy := math.Abs(d.MeasureEnd.Y - d.MeasureStart.Y)
		if dy > dx {
			angle = math.Pi / 2
		}
	}

	var (
		proj  = newProjector(angle)
		fixed = proj.fixed(d.DefPoint)

		m13 = proj.main(d.MeasureStart)
		m14 = proj.main(d.MeasureEnd)

		prims []Primitive
	)

	// 延伸线：从被测点到标注线，冒过标注线一段固定长度，虚线样式
	for _, mp := range []struct {
		from core.Point
		main float64
	}{{d.MeasureStart, m13}, {d.MeasureEnd, m14}} {
		var (
			startFixed = proj.fixed(mp.from)
			dirSign    = 1.0
		)
		if fixed < startFixed {
			dirSign = -1.0
		}

		end := proj.point(mp.main, fixed+dirSign*f.overshot)
		prims = append(prims, Polyline{
			Points: []core.Point{mp.from, end},
			Dashed: true,
			Style:  s,
		})
	}

	// 标注线：文字贴线时从中间断开留豁口，否则一整段
	var (
		lo, hi = math.Min(m13, m14), math.Max(m13, m14)

		textMain  = proj.main(d.TextMidPoint)
		textFixed = proj.fixed(d.TextMidPoint)
		gap       = DimTextGapMul * f.textH / 2
	)

	if math.Abs(textFixed-fixed) < DimOnLineRange && textMain-gap > lo && textMain+gap < hi {
		prims = append(prims,
			Polyline{Points: []core.Point{proj.point(lo, fixed), proj.point(textMain-gap, fixed)}, Style: s},
			Polyline{Points: []core.Point{proj.point(textMain+gap, fixed), proj.point(hi, fixed)}, Style: s},
		)
	} else {
		prims = append(prims, Polyline{
			Points: []core.Point{proj.point(lo, fixed), proj.point(hi, fixed)},
			Style:  s,
		})
	}

	// 两端箭头朝外
	prims = append(prims,
		buildArrow(proj.point(lo, fixed), angle+math.Pi, f.arrow, s),
		buildArrow(proj.point(hi, fixed), angle, f.arrow, s),
	)

	// 文字沿标注线方向，保持可读（角度归一到 [-π/2, π/2]）
	prims = append(prims, TextQuad{
		At:       d.TextMidPoint,
		Text:     dimText(d, hi-lo, "", ""),
		Height:   f.textH,
		Rotation: uprightAngle(angle),
		HAlign:   1,
		VAlign:   2,
		Style:    s,
	})

	return prims
}

// uprightAngle 文字角度归一到 [-π/2, π/2]，保证不倒立
func uprightAngle(angle float64) float64 {
	for angle > math.Pi/2 {
		angle -= math.Pi
	}
	for angle < -math.Pi/2 {
		angle += math.Pi
	}

	return angle
}

// intersectLines 两条直线（点 + 方向）求交，平行时 ok 为假
func intersectLines(p1, d1, p2, d2 core.Point) (core.Point, bool) {
	det := d1.X*d2.Y - d1.Y*d2.X
	if math.Abs(det) < epsilon {
		return core.Point{}, false
	}

	t := ((p2.X-p1.X)*d2.Y - (p2.Y-p1.Y)*d2.X) / det

	return core.Point{X: p1.X + d1.X*t, Y: p1.Y + d1.Y*t}, true
}

// buildAngularDim 角度标注（两线式）
// 射线 A 过 13/14，射线 B 过 10/15；顶点是两射线交点，平行则放弃
func buildAngularDim(d *entities.Dimension, style *dxfview.DimStyle, ctx *Context, s *Style) []Primitive {
	var (
		f = dimFeatures(d, style)

		dirA = core.Point{X: d.MeasureEnd.X - d.MeasureStart.X, Y: d.MeasureEnd.Y - d.MeasureStart.Y}
		dirB = core.Point{X: d.DiameterPoint.X - d.DefPoint.X, Y: d.DiameterPoint.Y - d.DefPoint.Y}
	)

	vertex, ok := intersectLines(d.MeasureStart, dirA, d.DefPoint, dirB)
	if !ok {
		// 两边平行，没有可画的角度几何
		ctx.warn("angular dimension rays are parallel")
		return nil
	}

	// 每条射线取离顶点更远的端点定方向（严格大于：同距时第一个候选胜出）
	farther := func(a, b core.Point) core.Point {
		da := (a.X-vertex.X)*(a.X-vertex.X) + (a.Y-vertex.Y)*(a.Y-vertex.Y)
		db := (b.X-vertex.X)*(b.X-vertex.X) + (b.Y-vertex.Y)*(b.Y-vertex.Y)
		if db > da {
			return b
		}
		return a
	}

	var (
		farA = farther(d.MeasureStart, d.MeasureEnd)
		farB = farther(d.DefPoint, d.DiameterPoint)

		angA = math.Atan2(farA.Y-vertex.Y, farA.X-vertex.X)
		angB = math.Atan2(farB.Y-vertex.Y, farB.X-vertex.X)
	)

	// 两个候选扫向：A→B 逆时针或 B→A 逆时针；弧线定位点（组码 16）做裁决
	sweepAB := math.Mod(angB-angA+4*math.Pi, 2*math.Pi)

	var start, sweep float64
	if d.HasArcPoint() {
		arcAng := math.Atan2(d.ArcPoint.Y-vertex.Y, d.ArcPoint.X-vertex.X)
		inAB := math.Mod(arcAng-angA+4*math.Pi, 2*math.Pi) <= sweepAB
		if inAB {
			start, sweep = angA, sweepAB
		} else {
			start, sweep = angB, 2*math.Pi-sweepAB
		}
	} else {
		start, sweep = angA, sweepAB
	}

	// 半径：有弧线定位点用它，否则取四个定义点最远距离的 0.8 倍
	var radius float64
	if d.HasArcPoint() {
		radius = math.Hypot(d.ArcPoint.X-vertex.X, d.ArcPoint.Y-vertex.Y)
	} else {
		for _, p := range []core.Point{d.MeasureStart, d.MeasureEnd, d.DefPoint, d.DiameterPoint} {
			if r := math.Hypot(p.X-vertex.X, p.Y-vertex.Y); r > radius {
				radius = r
			}
		}
		radius *= 0.8
	}

	if radius < epsilon {
		return nil
	}

	var prims []Primitive

	// 弧体
	arc := TessellateArc(vertex, radius, start, start+sweep, true, ctx.Options)
	prims = append(prims, Polyline{Points: arc, Style: s})

	// 箭头贴弧：沿弧退回 arrowSize/radius 的角量近似弦向，不用纯切线
	var (
		back = f.arrow / radius

		tip1 = pointOnCircle(vertex, radius, start)
		dir1 = math.Atan2(tip1.Y-pointOnCircle(vertex, radius, start+back).Y, tip1.X-pointOnCircle(vertex, radius, start+back).X)

		tip2 = pointOnCircle(vertex, radius, start+sweep)
		dir2 = math.Atan2(tip2.Y-pointOnCircle(vertex, radius, start+sweep-back).Y, tip2.X-pointOnCircle(vertex, radius, start+sweep-back).X)
	)

	prims = append(prims,
		buildArrow(tip1, dir1, f.arrow, s),
		buildArrow(tip2, dir2, f.arrow, s),
	)

	// 两条边的延伸段：从射线远端点补到弧半径
	for _, far := range []core.Point{farA, farB} {
		dist := math.Hypot(far.X-vertex.X, far.Y-vertex.Y)
		if dist < radius {
			a := math.Atan2(far.Y-vertex.Y, far.X-vertex.X)
			prims = append(prims, Polyline{
				Points: []core.Point{far, pointOnCircle(vertex, radius+f.overshot, a)},
				Dashed: true,
				Style:  s,
			})
		}
	}

	// 角度内部以弧度计，只在显示时转为度并带 ° 后缀
	textPos := d.TextMidPoint
	if textPos == (core.Point{}) {
		textPos = pointOnCircle(vertex, radius+2*f.textH, start+sweep/2)
	}

	prims = append(prims, TextQuad{
		At:     textPos,
		Text:   dimText(d, RadiansToDegrees(sweep), "", "°"),
		Height: f.textH,
		HAlign: 1,
		VAlign: 2,
		Style:  s,
	})

	return prims
}

func pointOnCircle(center core.Point, radius, angle float64) core.Point {
	return core.Point{
		X: center.X + radius*math.Cos(angle),
		Y: center.Y + radius*math.Sin(angle),
	}
}

// textOnSegment 文字是否贴在线段上：垂距 + 参数范围都卡在文字高度内
func textOnSegment(text, a, b core.Point, textHeight float64) bool {
	var (
		abx, aby = b.X - a.X, b.Y - a.Y
		length2  = abx*abx + aby*aby
	)
	if length2 < epsilon {
		return false
	}

	t := ((text.X-a.X)*abx + (text.Y-a.Y)*aby) / length2
	if t < -0.1 || t > 1.1 {
		return false
	}

	var (
		px   = a.X + abx*t
		py   = a.Y + aby*t
		dist = math.Hypot(text.X-px, text.Y-py)
	)

	return dist <= textHeight
}

// buildRadialDim 半径/直径标注
// 文字贴线时箭头从圆心向外，文字外置带引线时箭头向内指回圆
func buildRadialDim(d *entities.Dimension, style *dxfview.DimStyle, ctx *Context, s *Style, diametric bool) []Primitive {
	var (
		f = dimFeatures(d, style)

		center = d.DefPoint
		onArc  = d.DiameterPoint
	)

	if diametric {
		// 直径标注的 10/15 是圆上对径两点，圆心取中点
		center = core.Point{X: (d.DefPoint.X + d.DiameterPoint.X) / 2, Y: (d.DefPoint.Y + d.DiameterPoint.Y) / 2}
	}

	var (
		radius = math.Hypot(onArc.X-center.X, onArc.Y-center.Y)
		angle  = math.Atan2(onArc.Y-center.Y, onArc.X-center.X)

		inner = center
		prims []Primitive
	)

	if radius < epsilon {
		return nil
	}

	if diametric {
		inner = d.DefPoint
	}

	measured := radius
	if diametric {
		measured = 2 * radius
	}

	onLine := textOnSegment(d.TextMidPoint, inner, onArc, math.Max(f.textH, DimOnLineRange))

	if onLine {
		// 文字在标注线上：线从内端画到圆上点，箭头在圆上点朝外
		prims = append(prims, Polyline{Points: []core.Point{inner, onArc}, Style: s})
		prims = append(prims, buildArrow(onArc, angle, f.arrow, s))
		if diametric {
			prims = append(prims, buildArrow(inner, angle+math.Pi, f.arrow, s))
		}

		rotation := 0.0
		if diametric {
			// 直径标注的贴线文字要摆正（归一到 [-π/2, π/2]）
			rotation = uprightAngle(angle)
		}

		prims = append(prims, TextQuad{
			At:       d.TextMidPoint,
			Text:     dimText(d, measured, "R", ""),
			Height:   f.textH,
			Rotation: rotation,
			HAlign:   1,
			VAlign:   2,
			Style:    s,
		})

		return prims
	}

	// 文字外置：引线从圆上点折到文字，箭头在圆上点朝内（指回圆心方向）
	prims = append(prims, Polyline{
		Points: []core.Point{onArc, d.TextMidPoint},
		Style:  s,
	})
	prims = append(prims, buildArrow(onArc, angle+math.Pi, f.arrow, s))

	prims = append(prims, TextQuad{
		At:     d.TextMidPoint,
		Text:   dimText(d, measured, "R", ""),
		Height: f.textH,
		HAlign: 1,
		VAlign: 2,
		Style:  s,
	})

	return prims
}

// buildOrdinateDim 坐标标注：直行段 + 约 63° 拐接段 + 到文字边的直行段
// X 型测 X 坐标（引线走 Y 向），Y 型反之
func buildOrdinateDim(d *entities.Dimension, style *dxfview.DimStyle, ctx *Context, s *Style) []Primitive {
	var (
		f = dimFeatures(d, style)

		feature = d.MeasureStart // 组码 13：被测特征点
		leader  = d.MeasureEnd   // 组码 14：引线端点（文字侧）
	)

	// 主轴是引线直行方向：X 型标注沿 Y 走，Y 型沿 X 走
	var proj projector
	if d.OrdinateX() {
		proj = newProjector(math.Pi / 2)
	} else {
		proj = newProjector(0)
	}

	var (
		mainStart  = proj.main(feature)
		mainEnd    = proj.main(leader)
		fixedStart = proj.fixed(feature)
		fixedEnd   = proj.fixed(leader)

		dMain  = mainEnd - mainStart
		dFixed = fixedEnd - fixedStart

		sign = 1.0
	)

	if dMain < 0 {
		sign = -1
	}

	// 拐接段按 tan(63.43°)=2 斜走：主轴分量是副轴偏移的一半
	var (
		kneeMain = math.Abs(dFixed) / 2 * sign
		endRun   = math.Min(math.Abs(dMain)*0.25, 2*f.textH) * sign

		kneeEnd   = mainEnd - endRun
		kneeStart = kneeEnd - kneeMain
	)

	// 拐点不许越过特征点
	if sign > 0 && kneeStart < mainStart {
		kneeStart = mainStart
	} else if sign < 0 && kneeStart > mainStart {
		kneeStart = mainStart
	}

	points := []core.Point{
		feature,
		proj.point(kneeStart, fixedStart),
		proj.point(kneeEnd, fixedEnd),
		leader,
	}

	// 测量值：X 型取特征点 X，Y 型取 Y
	measured := feature.Y
	if d.OrdinateX() {
		measured = feature.X
	}

	return []Primitive{
		Polyline{Points: points, Style: s},
		TextQuad{
			At:     leader,
			Text:   dimText(d, measured, "", ""),
			Height: f.textH,
			HAlign: 0,
			VAlign: 2,
			Style:  s,
		},
	}
}
