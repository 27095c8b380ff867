package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zooyer/dxfview"
	"github.com/zooyer/dxfview/color"
	"github.com/zooyer/dxfview/core"
	"github.com/zooyer/dxfview/entities"
)

func testDoc() *dxfview.Document {
	return &dxfview.Document{
		Blocks:    make(map[string]*dxfview.Block),
		Layers:    make(map[string]*dxfview.Layer),
		LineTypes: make(map[string]*dxfview.LineType),
		DimStyles: make(map[string]*dxfview.DimStyle),
	}
}

func TestAssemble_Line(t *testing.T) {
	doc := testDoc()

	line := entities.NewLine()
	line.Start = core.Point{X: 0, Y: 0}
	line.End = core.Point{X: 10, Y: 10}
	doc.Entities = append(doc.Entities, line)

	a := NewAssembler(doc, nil)
	prims := a.Assemble()
	require.Len(t, prims, 1)

	poly, ok := prims[0].(Polyline)
	require.True(t, ok)
	assert.Equal(t, []core.Point{{X: 0, Y: 0}, {X: 10, Y: 10}}, poly.Points)
}

func TestAssemble_InvisibleSkipped(t *testing.T) {
	doc := testDoc()

	line := entities.NewLine()
	line.Invisible = true
	doc.Entities = append(doc.Entities, line)

	frozen := entities.NewLine()
	frozen.LayerName = "COLD"
	doc.Layers["COLD"] = &dxfview.Layer{Name: "COLD", Visible: true, Frozen: true}
	doc.Entities = append(doc.Entities, frozen)

	a := NewAssembler(doc, nil)
	assert.Empty(t, a.Assemble())
}

func TestAssemble_InsertTransform(t *testing.T) {
	doc := testDoc()

	inner := entities.NewLine()
	inner.Start = core.Point{X: 0, Y: 0}
	inner.End = core.Point{X: 1, Y: 0}

	doc.Blocks["PART"] = &dxfview.Block{Name: "PART", Entities: []entities.Entity{inner}}

	ins := entities.NewInsert()
	ins.BlockName = "part"
	ins.InsertionPoint = core.Point{X: 100, Y: 50}
	ins.Scale = core.Point{X: 2, Y: 2, Z: 1}
	doc.Entities = append(doc.Entities, ins)

	a := NewAssembler(doc, nil)
	prims := a.Assemble()
	require.Len(t, prims, 1)

	poly := prims[0].(Polyline)
	assert.InDelta(t, 100, poly.Points[0].X, 1e-9)
	assert.InDelta(t, 50, poly.Points[0].Y, 1e-9)
	assert.InDelta(t, 102, poly.Points[1].X, 1e-9)
	assert.InDelta(t, 50, poly.Points[1].Y, 1e-9)
}

func TestAssemble_SelfReferentialInsert(t *testing.T) {
	// 自引用块：深度上限处中止分支并告警，而不是栈溢出
	doc := testDoc()

	self := entities.NewInsert()
	self.BlockName = "LOOP"

	line := entities.NewLine()
	line.End = core.Point{X: 1, Y: 0}

	doc.Blocks["LOOP"] = &dxfview.Block{Name: "LOOP", Entities: []entities.Entity{line, self}}

	top := entities.NewInsert()
	top.BlockName = "LOOP"
	doc.Entities = append(doc.Entities, top)

	a := NewAssembler(doc, nil)
	prims := a.Assemble()

	// 每层展开一条线，展开到深度上限
	assert.Len(t, prims, MaxInsertDepth)
	assert.Equal(t, 1, a.Context().RecursionAborts)
	assert.NotEmpty(t, a.Context().Warnings)
}

func TestAssemble_ByBlockColor(t *testing.T) {
	doc := testDoc()

	// 块内实体 ByBlock，颜色随引用方
	inner := entities.NewLine()
	inner.ColorIndex = 0
	inner.End = core.Point{X: 1, Y: 0}

	doc.Blocks["B"] = &dxfview.Block{Name: "B", Entities: []entities.Entity{inner}}

	ins := entities.NewInsert()
	ins.BlockName = "B"
	ins.ColorIndex = 1 // 红
	doc.Entities = append(doc.Entities, ins)

	a := NewAssembler(doc, nil)
	prims := a.Assemble()
	require.Len(t, prims, 1)

	assert.Equal(t, color.RGB(0xFF0000), prims[0].GetStyle().Color)
}

func TestAssemble_ByLayerColor(t *testing.T) {
	doc := testDoc()
	doc.Layers["WALLS"] = &dxfview.Layer{Name: "WALLS", ColorIndex: 5, TrueColor: -1, Visible: true}

	line := entities.NewLine()
	line.LayerName = "WALLS"
	line.End = core.Point{X: 1, Y: 0}
	doc.Entities = append(doc.Entities, line)

	a := NewAssembler(doc, nil)
	prims := a.Assemble()
	require.Len(t, prims, 1)

	assert.Equal(t, color.RGB(0x0000FF), prims[0].GetStyle().Color)
}

func TestAssemble_UnsupportedCounted(t *testing.T) {
	doc := testDoc()
	doc.Entities = append(doc.Entities,
		entities.NewViewport("VIEWPORT"),
		entities.NewUnknown("WEIRD"),
		entities.NewUnknown("WEIRD"),
	)

	a := NewAssembler(doc, nil)
	assert.Empty(t, a.Assemble())
	assert.Equal(t, 1, a.Context().Unsupported["VIEWPORT"])
	assert.Equal(t, 2, a.Context().Unsupported["WEIRD"])
}

func TestAssemble_MTextLines(t *testing.T) {
	doc := testDoc()

	m := entities.NewMText()
	m.Position = core.Point{X: 0, Y: 0}
	m.Height = 2
	m.Value = `\C1;Red\PNormal`
	doc.Entities = append(doc.Entities, m)

	a := NewAssembler(doc, nil)
	prims := a.Assemble()
	require.Len(t, prims, 2)

	first := prims[0].(TextQuad)
	second := prims[1].(TextQuad)

	assert.Equal(t, "Red", first.Text)
	assert.Equal(t, color.RGB(0xFF0000), first.GetStyle().Color)

	assert.Equal(t, "Normal", second.Text)
	// 第二行回到实体本色
	assert.NotEqual(t, color.RGB(0xFF0000), second.GetStyle().Color)
	// 行间距向下
	assert.Less(t, second.At.Y, first.At.Y)
}

func TestAssemble_InsertGrid(t *testing.T) {
	doc := testDoc()

	inner := entities.NewPointEntity()
	doc.Blocks["DOT"] = &dxfview.Block{Name: "DOT", Entities: []entities.Entity{inner}}

	ins := entities.NewInsert()
	ins.BlockName = "DOT"
	ins.Rows, ins.Columns = 2, 3
	ins.RowSpacing, ins.ColumnSpacing = 10, 20
	doc.Entities = append(doc.Entities, ins)

	a := NewAssembler(doc, nil)
	prims := a.Assemble()
	assert.Len(t, prims, 6)
}
