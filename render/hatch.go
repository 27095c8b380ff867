package render

import (
	"math"
	"sort"

	"github.com/zooyer/dxfview/core"
	"github.com/zooyer/dxfview/entities"
)

// BuildHatch 重建填充：实心走三角化，图案走平行线族裁剪
// 图案定义来自文件，不可信，工作量越界时整体降级为仅描边并告警
func BuildHatch(h *entities.Hatch, ctx *Context, s *Style) []Primitive {
	polygons := hatchPolygons(h, ctx)
	if len(polygons) == 0 {
		return nil
	}

	var prims []Primitive

	// 边界描边始终产出
	for _, poly := range polygons {
		prims = append(prims, Polyline{Points: poly, Closed: true, Style: s})
	}

	if h.Solid || len(h.PatternLines) == 0 {
		if tris := triangulatePolygons(polygons); len(tris) > 0 {
			prims = append(prims, Triangles{Points: tris, Style: s})
		}
		return prims
	}

	lines, ok := patternFill(h, polygons, ctx, s)
	if !ok {
		ctx.warn("hatch pattern exceeds work limits, fill degraded to outline")
		return prims
	}

	prims = append(prims, lines...)

	return prims
}

// hatchPolygons 把每条边界路径展开为闭合多边形点列
func hatchPolygons(h *entities.Hatch, ctx *Context) [][]core.Point {
	var polygons [][]core.Point

	for _, path := range h.Paths {
		var poly []core.Point

		if path.Polyline() {
			poly = ExpandPolyline(path.Vertices, false, ctx.Options)
		} else {
			poly = edgePathPolygon(path.Edges, ctx.Options)
		}

		if len(poly) >= 3 {
			polygons = append(polygons, poly)
		}
	}

	return polygons
}

// edgePathPolygon 类型化边列表串接成多边形
// 反向边（终点接不上前一条的尾部）翻转后再接
func edgePathPolygon(edges []entities.HatchEdge, opt Options) []core.Point {
	var poly []core.Point

	for _, edge := range edges {
		run := tessellateEdge(edge, opt)
		if len(run) == 0 {
			continue
		}

		if len(poly) > 0 {
			if !samePoint(poly[len(poly)-1], run[0]) && samePoint(poly[len(poly)-1], run[len(run)-1]) {
				reversePoints(run)
			}
			if samePoint(poly[len(poly)-1], run[0]) {
				run = run[1:]
			}
		}

		poly = append(poly, run...)
	}

	// 闭合路径的末点回到起点时去掉重复
	if len(poly) > 1 && samePoint(poly[0], poly[len(poly)-1]) {
		poly = poly[:len(poly)-1]
	}

	return poly
}

func tessellateEdge(edge entities.HatchEdge, opt Options) []core.Point {
	switch edge.Type {
	case entities.EdgeLine:
		return []core.Point{edge.Start, edge.End}
	case entities.EdgeArc:
		return TessellateArc(edge.Center, edge.Radius, edge.StartAngle, edge.EndAngle, edge.CCW, opt)
	case entities.EdgeEllipse:
		start, end := edge.StartAngle, edge.EndAngle
		if !edge.CCW {
			// 顺时针边的角度按顺时针量取，镜像成逆时针参数采样同一段弧
			start, end = 2*math.Pi-edge.EndAngle, 2*math.Pi-edge.StartAngle
		}
		points := TessellateEllipse(edge.Center, edge.MajorAxis, edge.Ratio, start, end, opt)
		if !edge.CCW {
			reversePoints(points)
		}
		return points
	case entities.EdgeSpline:
		if len(edge.Controls) > edge.Degree && len(edge.Knots) >= len(edge.Controls)+edge.Degree+1 {
			return SampleNURBS(edge.Controls, edge.Knots, edge.Weights, edge.Degree, opt.SplineSegments)
		}
		return append([]core.Point(nil), edge.Controls...)
	}

	return nil
}

func reversePoints(points []core.Point) {
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
}

// triangulatePolygons 逐个多边形耳切三角化
// 多边形间的内外嵌套关系不建拓扑，外边界与孤岛各自独立填充，
// 描边叠加后视觉上与奇偶规则一致
func triangulatePolygons(polygons [][]core.Point) []core.Point {
	var tris []core.Point

	for _, poly := range polygons {
		tris = append(tris, earClip(poly)...)
	}

	return tris
}

// earClip 简单多边形耳切三角化，退化输入返回空
func earClip(poly []core.Point) []core.Point {
	n := len(poly)
	if n < 3 {
		return nil
	}

	// 统一成逆时针
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if signedArea(poly) < 0 {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}

	var tris []core.Point

	// 找不到耳朵说明多边形自交或共线退化，剩余部分放弃
	for len(idx) > 3 {
		clipped := false

		for i := 0; i < len(idx); i++ {
			var (
				prev = poly[idx[(i+len(idx)-1)%len(idx)]]
				curr = poly[idx[i]]
				next = poly[idx[(i+1)%len(idx)]]
			)

			if cross2(prev, curr, next) <= epsilon {
				continue
			}

			ear := true
			for _, j := range idx {
				p := poly[j]
				if samePoint(p, prev) || samePoint(p, curr) || samePoint(p, next) {
					continue
				}
				if pointInTriangle(p, prev, curr, next) {
					ear = false
					break
				}
			}

			if !ear {
				continue
			}

			tris = append(tris, prev, curr, next)
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}

		if !clipped {
			return tris
		}
	}

	tris = append(tris, poly[idx[0]], poly[idx[1]], poly[idx[2]])

	return tris
}

func signedArea(poly []core.Point) float64 {
	var area float64
	for i := range poly {
		j := (i + 1) % len(poly)
		area += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}

	return area / 2
}

func cross2(a, b, c core.Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func pointInTriangle(p, a, b, c core.Point) bool {
	var (
		d1 = cross2(a, b, p)
		d2 = cross2(b, c, p)
		d3 = cross2(c, a, p)

		hasNeg = d1 < -epsilon || d2 < -epsilon || d3 < -epsilon
		hasPos = d1 > epsilon || d2 > epsilon || d3 > epsilon
	)

	return !(hasNeg && hasPos)
}

// patternFill 平行线族图案填充
// 每族线：沿族方向 dir 与法向 perp 铺开，base 平移 + offset 错位，
// 逐条无限线与边界求交裁剪，再按划线定义切虚线段
func patternFill(h *entities.Hatch, polygons [][]core.Point, ctx *Context, style *Style) ([]Primitive, bool) {
	var (
		opt = ctx.Options

		box      = polygonsBBox(polygons)
		diagonal = math.Hypot(box.Max.X-box.Min.X, box.Max.Y-box.Min.Y)

		segments int
		prims    []Primitive
	)

	if diagonal < epsilon {
		return nil, true
	}

	// 图案定义行（组码 53/43-46/49）写入文件时已含整体角度与比例，
	// 组码 52/41 只是记录，这里不再叠加，否则旋转与缩放会被应用两次
	for _, family := range h.PatternLines {
		var (
			angle = family.Angle

			dir  = core.Point{X: math.Cos(angle), Y: math.Sin(angle)}
			perp = core.Point{X: -math.Sin(angle), Y: math.Cos(angle)}

			// 偏移向量在图案自身坐标系中定义，随族角度旋转；
			// 法向分量是线距，切向分量是相邻线的错位（随线号在锚点里累加）
			offsetX = family.Offset.X
			offsetY = family.Offset.Y

			worldOffX = offsetX*dir.X + offsetY*perp.X
			worldOffY = offsetX*dir.Y + offsetY*perp.Y

			spacing = worldOffX*perp.X + worldOffY*perp.Y
		)

		if math.Abs(spacing) < epsilon {
			// 零间距会产生无限条线
			return nil, false
		}

		var (
			base = core.Point{X: family.Base.X, Y: family.Base.Y}

			// 包围盒四角投影到法向，确定要铺的线号范围
			baseN = base.X*perp.X + base.Y*perp.Y
			minN  = math.Inf(1)
			maxN  = math.Inf(-1)
		)

		for _, corner := range []core.Point{
			{X: box.Min.X, Y: box.Min.Y},
			{X: box.Max.X, Y: box.Min.Y},
			{X: box.Min.X, Y: box.Max.Y},
			{X: box.Max.X, Y: box.Max.Y},
		} {
			n := corner.X*perp.X + corner.Y*perp.Y
			minN = math.Min(minN, n)
			maxN = math.Max(maxN, n)
		}

		var (
			first = int(math.Floor((minN - baseN) / spacing))
			last  = int(math.Ceil((maxN - baseN) / spacing))
		)
		if first > last {
			first, last = last, first
		}

		if last-first+1 > opt.MaxPatternLines {
			return nil, false
		}

		for i := first; i <= last; i++ {
			// 第 i 条线的锚点：基点 + i 倍偏移
			var (
				anchor = core.Point{
					X: base.X + float64(i)*worldOffX,
					Y: base.Y + float64(i)*worldOffY,
				}

				// 锚点沿线方向退到包围盒外，保证覆盖整个边界
				anchorT = anchor.X*dir.X + anchor.Y*dir.Y
				centerT = (box.Min.X+box.Max.X)/2*dir.X + (box.Min.Y+box.Max.Y)/2*dir.Y

				lineStart = core.Point{
					X: anchor.X + (centerT-anchorT-diagonal)*dir.X,
					Y: anchor.Y + (centerT-anchorT-diagonal)*dir.Y,
				}
				lineEnd = core.Point{
					X: anchor.X + (centerT-anchorT+diagonal)*dir.X,
					Y: anchor.Y + (centerT-anchorT+diagonal)*dir.Y,
				}
			)

			clipped := clipSegment(lineStart, lineEnd, polygons)

			for _, seg := range clipped {
				// 划线相位锚定在图案基点上，相邻填充区的图案能对齐
				phase := (seg.a.X-anchor.X)*dir.X + (seg.a.Y-anchor.Y)*dir.Y

				runs := dashRuns(seg.a, seg.b, dir, family.Dashes, phase)
				segments += len(runs)
				if segments > opt.MaxPatternSegments {
					return nil, false
				}

				for _, r := range runs {
					prims = append(prims, Polyline{Points: []core.Point{r.a, r.b}, Style: style})
				}
			}
		}
	}

	return prims, true
}

type segment struct {
	a, b core.Point
}

// dashRuns 沿线段铺划线：正值画、负值跳、零当点划近似为短线
func dashRuns(a, b, dir core.Point, dashes []float64, phase float64) []segment {
	length := math.Hypot(b.X-a.X, b.Y-a.Y)
	if length < epsilon {
		return nil
	}

	if len(dashes) == 0 {
		return []segment{{a, b}}
	}

	var total float64
	for _, d := range dashes {
		total += math.Abs(d)
	}
	if total < epsilon {
		return []segment{{a, b}}
	}

	// 相位对齐到划线周期
	pos := math.Mod(phase, total)
	if pos < 0 {
		pos += total
	}

	var (
		runs []segment
		t    float64
		di   int
	)

	// 先走到相位所在的划线段
	for pos > 0 {
		d := math.Abs(dashes[di])
		if d < epsilon {
			d = 0.05
		}
		if pos < d {
			// 当前划线段剩余部分
			remain := d - pos
			if dashes[di] >= 0 {
				end := math.Min(t+remain, length)
				runs = append(runs, segment{pointAt(a, dir, t), pointAt(a, dir, end)})
			}
			t += remain
			di = (di + 1) % len(dashes)
			break
		}
		pos -= d
		di = (di + 1) % len(dashes)
		if pos == 0 {
			break
		}
	}

	for t < length {
		d := math.Abs(dashes[di])
		if d < epsilon {
			d = 0.05
		}

		if dashes[di] >= 0 {
			end := math.Min(t+d, length)
			runs = append(runs, segment{pointAt(a, dir, t), pointAt(a, dir, end)})
		}

		t += d
		di = (di + 1) % len(dashes)
	}

	return runs
}

func pointAt(origin, dir core.Point, t float64) core.Point {
	return core.Point{X: origin.X + dir.X*t, Y: origin.Y + dir.Y*t}
}

// clipSegment 线段对多边形组的奇偶裁剪
// 求出所有交点按参数排序，相邻交点的中点在内部则该子段保留
func clipSegment(a, b core.Point, polygons [][]core.Point) []segment {
	var (
		dx = b.X - a.X
		dy = b.Y - a.Y

		ts = []float64{0, 1}
	)

	for _, poly := range polygons {
		for i := range poly {
			var (
				p1 = poly[i]
				p2 = poly[(i+1)%len(poly)]

				ex = p2.X - p1.X
				ey = p2.Y - p1.Y

				det = dx*ey - dy*ex
			)

			if math.Abs(det) < epsilon {
				continue
			}

			var (
				t = ((p1.X-a.X)*ey - (p1.Y-a.Y)*ex) / det
				u = ((p1.X-a.X)*dy - (p1.Y-a.Y)*dx) / det
			)

			if t > 0 && t < 1 && u >= 0 && u < 1 {
				ts = append(ts, t)
			}
		}
	}

	sort.Float64s(ts)

	var out []segment
	for i := 0; i < len(ts)-1; i++ {
		if ts[i+1]-ts[i] < epsilon {
			continue
		}

		mid := core.Point{
			X: a.X + dx*(ts[i]+ts[i+1])/2,
			Y: a.Y + dy*(ts[i]+ts[i+1])/2,
		}

		if pointInPolygons(mid, polygons) {
			out = append(out, segment{
				a: core.Point{X: a.X + dx*ts[i], Y: a.Y + dy*ts[i]},
				b: core.Point{X: a.X + dx*ts[i+1], Y: a.Y + dy*ts[i+1]},
			})
		}
	}

	return out
}

// pointInPolygons 奇偶规则的点包含测试（射线法）
func pointInPolygons(p core.Point, polygons [][]core.Point) bool {
	inside := false

	for _, poly := range polygons {
		for i := range poly {
			var (
				p1 = poly[i]
				p2 = poly[(i+1)%len(poly)]
			)

			if (p1.Y > p.Y) != (p2.Y > p.Y) {
				x := p1.X + (p.Y-p1.Y)/(p2.Y-p1.Y)*(p2.X-p1.X)
				if x > p.X {
					inside = !inside
				}
			}
		}
	}

	return inside
}

func polygonsBBox(polygons [][]core.Point) core.BBox {
	var (
		box   core.BBox
		first = true
	)

	for _, poly := range polygons {
		for _, p := range poly {
			if first {
				box = core.NewBBox(p)
				first = false
			} else {
				box.Extend(p)
			}
		}
	}

	return box
}
