package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zooyer/dxfview"
	"github.com/zooyer/dxfview/core"
	"github.com/zooyer/dxfview/entities"
)

func insert(x, y, sx, sy, rotation float64) *entities.Insert {
	return &entities.Insert{
		InsertionPoint: core.Point{X: x, Y: y},
		Scale:          core.Point{X: sx, Y: sy, Z: 1},
		Rotation:       rotation,
	}
}

func TestTransformPoint(t *testing.T) {
	// 缩放 -> 旋转 -> 平移
	ins := insert(10, 20, 2, 2, 90)

	p := TransformPoint(core.Point{X: 1, Y: 0}, ins)
	assert.InDelta(t, 10, p.X, 1e-9)
	assert.InDelta(t, 22, p.Y, 1e-9)
}

func TestCombineInserts(t *testing.T) {
	var (
		parent = insert(100, 0, 2, 2, 90)
		child  = insert(1, 0, 3, 3, 45)
	)

	combined := CombineInserts(parent, child)

	assert.InDelta(t, 135, combined.Rotation, 1e-9)
	assert.InDelta(t, 6, combined.Scale.X, 1e-9)

	// 子插入点经父变换：(1,0)*2 旋转 90° -> (0,2)，平移 -> (100,2)
	assert.InDelta(t, 100, combined.InsertionPoint.X, 1e-9)
	assert.InDelta(t, 2, combined.InsertionPoint.Y, 1e-9)
}

func TestTransformBBox_Rotation(t *testing.T) {
	local := core.BBox{Min: core.Point{X: 0, Y: 0}, Max: core.Point{X: 2, Y: 1}}

	// 旋转 90° 后宽高互换
	box := TransformBBox(local, insert(0, 0, 1, 1, 90))
	assert.InDelta(t, 1, box.Max.X-box.Min.X, 1e-9)
	assert.InDelta(t, 2, box.Max.Y-box.Min.Y, 1e-9)
}

func TestMergeBoxes(t *testing.T) {
	boxes := []core.BBox{
		{Min: core.Point{X: 0, Y: 0}, Max: core.Point{X: 1, Y: 1}},
		{Min: core.Point{X: 0.5, Y: 0.5}, Max: core.Point{X: 2, Y: 2}},
		{Min: core.Point{X: 10, Y: 10}, Max: core.Point{X: 11, Y: 11}},
	}

	merged := MergeBoxes(boxes, 0)
	assert.Len(t, merged, 2)
	assert.Equal(t, 2.0, merged[0].Max.X)
}

func TestIsSeparate(t *testing.T) {
	var (
		a = core.BBox{Min: core.Point{X: 0, Y: 0}, Max: core.Point{X: 1, Y: 1}}
		b = core.BBox{Min: core.Point{X: 3, Y: 0}, Max: core.Point{X: 4, Y: 1}}
	)

	assert.True(t, IsSeparate(a, b, 1))
	assert.False(t, IsSeparate(a, b, 3))
}

func TestGetAttrs(t *testing.T) {
	ins := entities.NewInsert()
	ins.Attributes = []*entities.Attrib{
		{Tag: "ROOM", Text: "101"},
		{Tag: "AREA", Text: "35.5"},
	}

	attrs := GetAttrs(ins)
	assert.Equal(t, "101", attrs["ROOM"])
	assert.Equal(t, "35.5", GetAttr(ins, "AREA"))
	assert.Equal(t, "", GetAttr(ins, "MISSING"))
}

func TestGetDimValue(t *testing.T) {
	doc := &dxfview.Document{
		DimStyles: map[string]*dxfview.DimStyle{
			"STD": {Name: "STD", Precision: 1},
		},
	}

	dim := entities.NewDimension()
	dim.StyleName = "STD"
	dim.ActualMeasurement = 28.16

	// 按样式精度四舍五入
	assert.InDelta(t, 28.2, GetDimValue(doc, dim), 1e-9)

	// 无测量值、只有覆盖文字时按文字提数字
	dim3 := entities.NewDimension()
	dim3.Text = "約30.5米"
	assert.InDelta(t, 30.5, GetDimValue(doc, dim3), 1e-9)

	// 无样式时取整
	dim2 := entities.NewDimension()
	dim2.ActualMeasurement = 28.16
	assert.InDelta(t, 28, GetDimValue(doc, dim2), 1e-9)
}
