package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zooyer/dxfview"
	"github.com/zooyer/dxfview/core"
	"github.com/zooyer/dxfview/entities"
)

func line(x1, y1, x2, y2 float64) *entities.Line {
	l := entities.NewLine()
	l.Start = core.Point{X: x1, Y: y1}
	l.End = core.Point{X: x2, Y: y2}

	return l
}

func TestModelExtent(t *testing.T) {
	doc := &dxfview.Document{
		Entities: []entities.Entity{
			line(0, 0, 10, 10),
			line(2, 2, 8, 8),
			line(500, 500, 510, 510),
		},
	}

	box, groups, ok := modelExtent(doc)
	require.True(t, ok)

	assert.InDelta(t, 0, box.Min.X, 1e-9)
	assert.InDelta(t, 510, box.Max.X, 1e-9)

	// 重叠的两条线并成一组，远处的线单独成组
	assert.Equal(t, 2, groups)

	_, _, ok = modelExtent(&dxfview.Document{})
	assert.False(t, ok)
}

func TestCountOutside(t *testing.T) {
	doc := &dxfview.Document{
		Header: map[string][]core.Tag{
			"$EXTMIN": {{Code: 10, Value: "0"}, {Code: 20, Value: "0"}},
			"$EXTMAX": {{Code: 10, Value: "100"}, {Code: 20, Value: "100"}},
		},
		Entities: []entities.Entity{
			line(10, 10, 20, 20),
			line(300, 300, 310, 310),
		},
	}

	n, ok := countOutside(doc)
	require.True(t, ok)
	assert.Equal(t, 1, n)

	// 图头没有声明范围时不判越界
	_, ok = countOutside(&dxfview.Document{Header: map[string][]core.Tag{}})
	assert.False(t, ok)
}

func TestDimLines(t *testing.T) {
	doc := &dxfview.Document{
		DimStyles: map[string]*dxfview.DimStyle{
			"STD": {Name: "STD", Precision: 1},
		},
	}

	dim := entities.NewDimension()
	dim.StyleName = "STD"
	dim.ActualMeasurement = 28.16
	dim.Handle = "2A"
	doc.Entities = []entities.Entity{dim}

	lines := dimLines(doc)
	require.Len(t, lines, 1)
	assert.Equal(t, "#2A 28.2", lines[0])
}

func TestAttrLines(t *testing.T) {
	ins := entities.NewInsert()
	ins.BlockName = "DOOR"
	ins.Attributes = []*entities.Attrib{
		{Tag: "ROOM", Text: "101"},
		{Tag: "AREA", Text: "35.5"},
	}

	doc := &dxfview.Document{Entities: []entities.Entity{ins, line(0, 0, 1, 1)}}

	lines := attrLines(doc)
	require.Len(t, lines, 1)
	assert.Equal(t, "DOOR: AREA=35.5 ROOM=101", lines[0])
}
