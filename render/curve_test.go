package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zooyer/dxfview/core"
	"github.com/zooyer/dxfview/entities"
)

func TestDegreesToRadians(t *testing.T) {
	assert.Equal(t, 0.0, DegreesToRadians(0))
	assert.InDelta(t, math.Pi/2, DegreesToRadians(90), 1e-12)
	assert.InDelta(t, math.Pi, DegreesToRadians(180), 1e-12)
	assert.InDelta(t, 2*math.Pi, DegreesToRadians(360), 1e-12)
	assert.InDelta(t, -math.Pi/2, DegreesToRadians(-90), 1e-12)
}

func TestBulgeArc_ZeroBulge(t *testing.T) {
	var (
		p1 = core.Point{X: 1, Y: 2}
		p2 = core.Point{X: 3, Y: 4}
	)

	points := BulgeArc(p1, p2, 0, DefaultOptions())
	require.Len(t, points, 2)
	assert.Equal(t, p1, points[0])
	assert.Equal(t, p2, points[1])
}

func TestBulgeArc_Semicircle(t *testing.T) {
	// 凸度 1 是半圆：半径 = 弦长/2，圆心在弦中点
	var (
		p1 = core.Point{X: 0, Y: 0}
		p2 = core.Point{X: 1, Y: 0}
	)

	points := BulgeArc(p1, p2, 1, DefaultOptions())
	require.GreaterOrEqual(t, len(points), 9)

	// 端点保持不动
	assert.InDelta(t, 0, points[0].X, 1e-9)
	assert.InDelta(t, 0, points[0].Y, 1e-9)
	assert.InDelta(t, 1, points[len(points)-1].X, 1e-9)
	assert.InDelta(t, 0, points[len(points)-1].Y, 1e-9)

	// 每个采样点到圆心 (0.5, 0) 的距离都是 0.5
	for _, p := range points {
		assert.InDelta(t, 0.5, math.Hypot(p.X-0.5, p.Y), 1e-9)
	}

	// 正凸度逆时针走劣弧侧，弧顶在弦的行进方向右侧
	mid := points[len(points)/2]
	assert.Less(t, mid.Y, 0.0)
}

func TestBulgeArc_NegativeMirror(t *testing.T) {
	var (
		p1 = core.Point{X: 0, Y: 0}
		p2 = core.Point{X: 1, Y: 0}

		pos = BulgeArc(p1, p2, 0.5, DefaultOptions())
		neg = BulgeArc(p1, p2, -0.5, DefaultOptions())
	)

	require.Equal(t, len(pos), len(neg))

	// 正负凸度关于弦对称
	for i := range pos {
		assert.InDelta(t, pos[i].X, neg[i].X, 1e-9)
		assert.InDelta(t, pos[i].Y, -neg[i].Y, 1e-9)
	}
}

func TestTessellateCircle(t *testing.T) {
	points := TessellateCircle(core.Point{X: 10, Y: 20}, 5, DefaultOptions())
	require.Len(t, points, CircleSegments+1)

	// 闭合：首尾重合
	assert.InDelta(t, points[0].X, points[len(points)-1].X, 1e-9)
	assert.InDelta(t, points[0].Y, points[len(points)-1].Y, 1e-9)

	for _, p := range points {
		assert.InDelta(t, 5, math.Hypot(p.X-10, p.Y-20), 1e-9)
	}
}

func TestTessellateArc_SweepSegments(t *testing.T) {
	// 细分段数与扫过角度成比例，但不低于下限
	quarter := TessellateArc(core.Point{}, 1, 0, math.Pi/2, true, DefaultOptions())
	assert.Len(t, quarter, CircleSegments/4+1)

	tiny := TessellateArc(core.Point{}, 1, 0, 0.01, true, DefaultOptions())
	assert.Len(t, tiny, MinArcSegments+1)
}

func TestExpandPolyline(t *testing.T) {
	vertices := []entities.Vertex{
		{X: 0, Y: 0},
		{X: 1, Y: 0, Bulge: 1},
		{X: 2, Y: 0},
	}

	points := ExpandPolyline(vertices, false, DefaultOptions())
	require.NotEmpty(t, points)

	// 衔接点不重复
	for i := 1; i < len(points); i++ {
		assert.False(t, samePoint(points[i-1], points[i]))
	}

	assert.Equal(t, core.Point{X: 0, Y: 0}, points[0])
	assert.InDelta(t, 2, points[len(points)-1].X, 1e-9)
}

func TestSampleCatmullRom(t *testing.T) {
	fit := []core.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}}

	points := SampleCatmullRom(fit, 64)
	require.NotEmpty(t, points)

	// 插值曲线过所有拟合点
	assert.Equal(t, fit[0], points[0])
	assert.Equal(t, fit[len(fit)-1], points[len(points)-1])

	found := false
	for _, p := range points {
		if samePoint(p, fit[1]) {
			found = true
			break
		}
	}
	assert.True(t, found, "curve should pass through interior fit point")
}

func TestSampleNURBS_Line(t *testing.T) {
	// 一次 B 样条就是折线本身
	var (
		controls = []core.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}
		knots    = []float64{0, 0, 1, 1}
	)

	points := SampleNURBS(controls, knots, nil, 1, 8)
	require.Len(t, points, 9)

	for _, p := range points {
		assert.InDelta(t, 0, p.Y, 1e-9)
	}
	assert.InDelta(t, 0, points[0].X, 1e-9)
	assert.InDelta(t, 10, points[len(points)-1].X, 1e-9)
}
