package render

import (
	"math"

	"github.com/zooyer/dxfview/core"
	"github.com/zooyer/dxfview/entities"
)

const epsilon = 1e-10

// DegreesToRadians 角度转弧度
func DegreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadiansToDegrees 弧度转角度
func RadiansToDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// sweepSegments 按扫过角度成比例地决定细分段数，而不是固定段数
func sweepSegments(sweep float64, opt Options) int {
	n := int(math.Floor(math.Abs(sweep) * float64(opt.CircleSegments) / (2 * math.Pi)))
	if n < opt.MinArcSegments {
		n = opt.MinArcSegments
	}

	return n
}

// BulgeArc 把一对顶点和凸度展开为圆弧折线
// 凸度 b = tan(θ/4)，θ 为圆心角，符号给出扫向（正为逆时针）
func BulgeArc(p1, p2 core.Point, bulge float64, opt Options) []core.Point {
	chord := math.Hypot(p2.X-p1.X, p2.Y-p1.Y)
	if math.Abs(bulge) < epsilon || chord < epsilon {
		return []core.Point{p1, p2}
	}

	var (
		theta  = 4 * math.Atan(bulge)
		radius = chord / (2 * math.Sin(theta/2)) // 带符号
	)

	// 圆心：弦中点沿左手法向偏移 h = r·cos(θ/2)（同样带符号）
	var (
		h   = radius * math.Cos(theta/2)
		mid = core.Point{X: (p1.X + p2.X) / 2, Y: (p1.Y + p2.Y) / 2}
		dx  = (p2.X - p1.X) / chord
		dy  = (p2.Y - p1.Y) / chord

		center = core.Point{X: mid.X - dy*h, Y: mid.Y + dx*h}
	)

	var (
		start = math.Atan2(p1.Y-center.Y, p1.X-center.X)
		end   = math.Atan2(p2.Y-center.Y, p2.X-center.X)
		sweep = end - start
	)

	// 原始差值归一到 [-π, π]，再强制与凸度符号一致：
	// 正凸度必须逆时针，负凸度必须顺时针，不一致就补一整圈
	for sweep > math.Pi {
		sweep -= 2 * math.Pi
	}
	for sweep < -math.Pi {
		sweep += 2 * math.Pi
	}
	if bulge > 0 && sweep < 0 {
		sweep += 2 * math.Pi
	}
	if bulge < 0 && sweep > 0 {
		sweep -= 2 * math.Pi
	}

	var (
		n      = sweepSegments(sweep, opt)
		r      = math.Abs(radius)
		points = make([]core.Point, 0, n+1)
	)

	for i := 0; i <= n; i++ {
		a := start + sweep*float64(i)/float64(n)
		points = append(points, core.Point{
			X: center.X + r*math.Cos(a),
			Y: center.Y + r*math.Sin(a),
			Z: p1.Z,
		})
	}

	return points
}

// TessellateArc 圆弧细分，start/end 为弧度，ccw 为逆时针
func TessellateArc(center core.Point, radius, start, end float64, ccw bool, opt Options) []core.Point {
	sweep := end - start
	if ccw {
		for sweep <= 0 {
			sweep += 2 * math.Pi
		}
	} else {
		for sweep >= 0 {
			sweep -= 2 * math.Pi
		}
	}

	var (
		n      = sweepSegments(sweep, opt)
		points = make([]core.Point, 0, n+1)
	)

	for i := 0; i <= n; i++ {
		a := start + sweep*float64(i)/float64(n)
		points = append(points, core.Point{
			X: center.X + radius*math.Cos(a),
			Y: center.Y + radius*math.Sin(a),
			Z: center.Z,
		})
	}

	return points
}

// TessellateCircle 整圆细分（闭合，首尾点重合）
func TessellateCircle(center core.Point, radius float64, opt Options) []core.Point {
	var (
		n      = opt.CircleSegments
		points = make([]core.Point, 0, n+1)
	)

	for i := 0; i <= n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		points = append(points, core.Point{
			X: center.X + radius*math.Cos(a),
			Y: center.Y + radius*math.Sin(a),
			Z: center.Z,
		})
	}

	return points
}

// TessellateEllipse 椭圆（弧）细分
// major 是长轴端点相对圆心的向量，ratio 是短长轴比，参数角从 start 到 end 逆时针
func TessellateEllipse(center, major core.Point, ratio, start, end float64, opt Options) []core.Point {
	sweep := end - start
	for sweep <= 0 {
		sweep += 2 * math.Pi
	}
	if sweep > 2*math.Pi {
		sweep = 2 * math.Pi
	}

	// 短轴是长轴逆时针旋转 90° 再乘比例
	var (
		minorX = -major.Y * ratio
		minorY = major.X * ratio

		n      = sweepSegments(sweep, opt)
		points = make([]core.Point, 0, n+1)
	)

	for i := 0; i <= n; i++ {
		t := start + sweep*float64(i)/float64(n)
		cos, sin := math.Cos(t), math.Sin(t)
		points = append(points, core.Point{
			X: center.X + major.X*cos + minorX*sin,
			Y: center.Y + major.Y*cos + minorY*sin,
			Z: center.Z,
		})
	}

	return points
}

// ExpandPolyline 把带凸度的顶点序列展开为纯折线点列
func ExpandPolyline(vertices []entities.Vertex, closed bool, opt Options) []core.Point {
	if len(vertices) == 0 {
		return nil
	}

	var points []core.Point

	appendRun := func(run []core.Point) {
		// 避免相邻段的重复衔接点
		if len(points) > 0 && len(run) > 0 && samePoint(points[len(points)-1], run[0]) {
			run = run[1:]
		}
		points = append(points, run...)
	}

	for i := 0; i < len(vertices)-1; i++ {
		appendRun(BulgeArc(vertices[i].Position(), vertices[i+1].Position(), vertices[i].Bulge, opt))
	}

	if closed && len(vertices) > 1 {
		appendRun(BulgeArc(vertices[len(vertices)-1].Position(), vertices[0].Position(), vertices[len(vertices)-1].Bulge, opt))
	}

	if len(points) == 0 {
		points = []core.Point{vertices[0].Position()}
	}

	return points
}

func samePoint(a, b core.Point) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon
}

// SampleSpline 样条采样：有节点矢量走 NURBS，只有拟合点走 Catmull-Rom
func SampleSpline(sp *entities.Spline, opt Options) []core.Point {
	if len(sp.Controls) > sp.Degree && len(sp.Knots) >= len(sp.Controls)+sp.Degree+1 {
		return SampleNURBS(sp.Controls, sp.Knots, sp.Weights, sp.Degree, opt.SplineSegments)
	}

	if len(sp.FitPoints) >= 2 {
		return SampleCatmullRom(sp.FitPoints, opt.SplineSegments)
	}

	// 数据不全，退化为控制点折线
	return append([]core.Point(nil), sp.Controls...)
}

// SampleNURBS 非均匀有理 B 样条求值（Cox-de Boor 基函数）
func SampleNURBS(controls []core.Point, knots, weights []float64, degree, segments int) []core.Point {
	var (
		n  = len(controls) - 1
		lo = knots[degree]
		hi = knots[len(knots)-degree-1]
	)

	if segments < 2 {
		segments = 2
	}

	// 权重缺省为 1（非有理）
	if len(weights) < len(controls) {
		weights = make([]float64, len(controls))
		for i := range weights {
			weights[i] = 1
		}
	}

	var points = make([]core.Point, 0, segments+1)
	for i := 0; i <= segments; i++ {
		u := lo + (hi-lo)*float64(i)/float64(segments)
		points = append(points, nurbsPoint(controls, knots, weights, n, degree, u))
	}

	return points
}

// findSpan 节点区间定位（The NURBS Book A2.1）
func findSpan(n, degree int, u float64, knots []float64) int {
	if u >= knots[n+1] {
		return n
	}
	if u <= knots[degree] {
		return degree
	}

	lo, hi := degree, n+1
	mid := (lo + hi) / 2
	for u < knots[mid] || u >= knots[mid+1] {
		if u < knots[mid] {
			hi = mid
		} else {
			lo = mid
		}
		mid = (lo + hi) / 2
	}

	return mid
}

// basisFuns 非零基函数求值（The NURBS Book A2.2）
func basisFuns(span int, u float64, degree int, knots []float64) []float64 {
	var (
		funs  = make([]float64, degree+1)
		left  = make([]float64, degree+1)
		right = make([]float64, degree+1)
	)

	funs[0] = 1
	for j := 1; j <= degree; j++ {
		left[j] = u - knots[span+1-j]
		right[j] = knots[span+j] - u

		saved := 0.0
		for r := 0; r < j; r++ {
			denom := right[r+1] + left[j-r]
			if math.Abs(denom) < epsilon {
				funs[r] = saved
				saved = 0
				continue
			}
			temp := funs[r] / denom
			funs[r] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		funs[j] = saved
	}

	return funs
}

func nurbsPoint(controls []core.Point, knots, weights []float64, n, degree int, u float64) core.Point {
	var (
		span = findSpan(n, degree, u, knots)
		funs = basisFuns(span, u, degree, knots)

		x, y, z, w float64
	)

	for i := 0; i <= degree; i++ {
		idx := span - degree + i
		if idx < 0 || idx > n {
			continue
		}

		wb := funs[i] * weights[idx]
		x += wb * controls[idx].X
		y += wb * controls[idx].Y
		z += wb * controls[idx].Z
		w += wb
	}

	if math.Abs(w) < epsilon {
		return core.Point{}
	}

	return core.Point{X: x / w, Y: y / w, Z: z / w}
}

// SampleCatmullRom 过拟合点的 Catmull-Rom 插值采样
func SampleCatmullRom(fit []core.Point, segments int) []core.Point {
	if len(fit) < 2 {
		return append([]core.Point(nil), fit...)
	}

	// 首尾复制端点作为虚拟控制点
	var (
		ext = make([]core.Point, 0, len(fit)+2)
		per = segments / (len(fit) - 1)
	)
	if per < 4 {
		per = 4
	}

	ext = append(ext, fit[0])
	ext = append(ext, fit...)
	ext = append(ext, fit[len(fit)-1])

	var points []core.Point
	for i := 1; i < len(ext)-2; i++ {
		p0, p1, p2, p3 := ext[i-1], ext[i], ext[i+1], ext[i+2]

		last := per
		if i < len(ext)-3 {
			last = per - 1 // 中间段不重复衔接点
		}

		for j := 0; j <= last; j++ {
			t := float64(j) / float64(per)
			points = append(points, catmullRom(p0, p1, p2, p3, t))
		}
	}

	return points
}

func catmullRom(p0, p1, p2, p3 core.Point, t float64) core.Point {
	var (
		t2 = t * t
		t3 = t2 * t

		b0 = -0.5*t3 + t2 - 0.5*t
		b1 = 1.5*t3 - 2.5*t2 + 1
		b2 = -1.5*t3 + 2*t2 + 0.5*t
		b3 = 0.5*t3 - 0.5*t2
	)

	return core.Point{
		X: b0*p0.X + b1*p1.X + b2*p2.X + b3*p3.X,
		Y: b0*p0.Y + b1*p1.Y + b2*p2.Y + b3*p3.Y,
		Z: b0*p0.Z + b1*p1.Z + b2*p2.Z + b3*p3.Z,
	}
}
