package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zooyer/dxfview/core"
	"github.com/zooyer/dxfview/entities"
)

func TestFormatDimNumber(t *testing.T) {
	assert.Equal(t, "28.1", formatDimNumber(28.1))
	assert.Equal(t, "28.1", formatDimNumber(28.10))
	assert.Equal(t, "28", formatDimNumber(28))
	assert.Equal(t, "28.13", formatDimNumber(28.126))
	assert.Equal(t, "0", formatDimNumber(0))
	assert.Equal(t, "0.5", formatDimNumber(0.5))
	assert.Equal(t, "-3.2", formatDimNumber(-3.2))
}

func TestUprightAngle(t *testing.T) {
	assert.InDelta(t, 0, uprightAngle(math.Pi), 1e-9)
	assert.InDelta(t, math.Pi/4, uprightAngle(math.Pi/4), 1e-9)
	assert.InDelta(t, -math.Pi/4, uprightAngle(3*math.Pi/4), 1e-9)
}

func TestBuildDimension_Linear(t *testing.T) {
	d := entities.NewDimension()
	d.DimType = entities.DimLinear
	d.MeasureStart = core.Point{X: 0, Y: 0}
	d.MeasureEnd = core.Point{X: 10, Y: 0}
	d.DefPoint = core.Point{X: 10, Y: 5}
	d.TextMidPoint = core.Point{X: 5, Y: 8}
	d.ActualMeasurement = 10

	ctx := NewContext(DefaultOptions(), nil)
	prims := BuildDimension(d, nil, ctx, &Style{})
	require.NotEmpty(t, prims)

	var (
		arrows int
		texts  []TextQuad
		lines  int
	)

	for _, p := range prims {
		switch v := p.(type) {
		case Arrow:
			arrows++
		case TextQuad:
			texts = append(texts, v)
		case Polyline:
			lines++
		}
	}

	// 两条延伸线 + 标注线 + 两个箭头 + 文字
	assert.Equal(t, 2, arrows)
	assert.GreaterOrEqual(t, lines, 3)
	require.Len(t, texts, 1)
	assert.Equal(t, "10", texts[0].Text)
}

func TestBuildDimension_LinearTextGap(t *testing.T) {
	// 文字中点贴在标注线上时，标注线从中间断开
	d := entities.NewDimension()
	d.DimType = entities.DimLinear
	d.MeasureStart = core.Point{X: 0, Y: 0}
	d.MeasureEnd = core.Point{X: 100, Y: 0}
	d.DefPoint = core.Point{X: 100, Y: 20}
	d.TextMidPoint = core.Point{X: 50, Y: 20}
	d.ActualMeasurement = 100

	ctx := NewContext(DefaultOptions(), nil)
	prims := BuildDimension(d, nil, ctx, &Style{})

	lines := 0
	for _, p := range prims {
		if _, ok := p.(Polyline); ok {
			lines++
		}
	}

	// 两条延伸线 + 两段断开的标注线
	assert.Equal(t, 4, lines)
}

func TestBuildDimension_TextOverride(t *testing.T) {
	d := entities.NewDimension()
	d.DimType = entities.DimLinear
	d.Text = "EQ"
	d.MeasureStart = core.Point{X: 0, Y: 0}
	d.MeasureEnd = core.Point{X: 10, Y: 0}
	d.DefPoint = core.Point{X: 10, Y: 5}
	d.TextMidPoint = core.Point{X: 5, Y: 8}

	ctx := NewContext(DefaultOptions(), nil)
	for _, p := range BuildDimension(d, nil, ctx, &Style{}) {
		if quad, ok := p.(TextQuad); ok {
			assert.Equal(t, "EQ", quad.Text)
		}
	}
}

func TestBuildDimension_Radial(t *testing.T) {
	d := entities.NewDimension()
	d.DimType = entities.DimRadial
	d.DefPoint = core.Point{X: 0, Y: 0}      // 圆心
	d.DiameterPoint = core.Point{X: 5, Y: 0} // 圆上点
	d.TextMidPoint = core.Point{X: 2.5, Y: 0}
	d.ActualMeasurement = 5

	ctx := NewContext(DefaultOptions(), nil)
	prims := BuildDimension(d, nil, ctx, &Style{})
	require.NotEmpty(t, prims)

	for _, p := range prims {
		if quad, ok := p.(TextQuad); ok {
			assert.Equal(t, "R5", quad.Text)
		}
	}
}

func TestBuildDimension_AngularParallel(t *testing.T) {
	// 两条平行边构不成角度，整个标注放弃并告警
	d := entities.NewDimension()
	d.DimType = entities.DimAngular
	d.MeasureStart = core.Point{X: 0, Y: 0}
	d.MeasureEnd = core.Point{X: 10, Y: 0}
	d.DefPoint = core.Point{X: 0, Y: 5}
	d.DiameterPoint = core.Point{X: 10, Y: 5}

	ctx := NewContext(DefaultOptions(), nil)
	prims := BuildDimension(d, nil, ctx, &Style{})

	assert.Empty(t, prims)
	assert.NotEmpty(t, ctx.Warnings)
}

func TestBuildDimension_Angular(t *testing.T) {
	// 直角两边，角度文字应带 ° 后缀
	d := entities.NewDimension()
	d.DimType = entities.DimAngular
	d.MeasureStart = core.Point{X: 0, Y: 0}
	d.MeasureEnd = core.Point{X: 10, Y: 0}
	d.DefPoint = core.Point{X: 0, Y: 0}
	d.DiameterPoint = core.Point{X: 0, Y: 10}

	ctx := NewContext(DefaultOptions(), nil)
	prims := BuildDimension(d, nil, ctx, &Style{})
	require.NotEmpty(t, prims)

	var text string
	for _, p := range prims {
		if quad, ok := p.(TextQuad); ok {
			text = quad.Text
		}
	}
	assert.Equal(t, "90°", text)
}

func TestBuildDimension_Ordinate(t *testing.T) {
	d := entities.NewDimension()
	d.DimType = entities.DimOrdinate | entities.DimOrdinateX
	d.MeasureStart = core.Point{X: 7.5, Y: 0}
	d.MeasureEnd = core.Point{X: 7.5, Y: 20}

	ctx := NewContext(DefaultOptions(), nil)
	prims := BuildDimension(d, nil, ctx, &Style{})
	require.Len(t, prims, 2)

	leader, ok := prims[0].(Polyline)
	require.True(t, ok)
	assert.Len(t, leader.Points, 4)
	assert.Equal(t, core.Point{X: 7.5, Y: 0}, leader.Points[0])

	quad, ok := prims[1].(TextQuad)
	require.True(t, ok)
	assert.Equal(t, "7.5", quad.Text)
}
