package dxfview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zooyer/dxfview/core"
	"github.com/zooyer/dxfview/entities"
)

// dxf 按 (组码, 值) 对拼出测试输入
func dxf(pairs ...string) []byte {
	return []byte(strings.Join(pairs, "\n") + "\n")
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(nil)
	assert.ErrorIs(t, err, core.ErrEmptyInput)

	_, err = Parse([]byte("   \n  \n"))
	assert.ErrorIs(t, err, core.ErrEmptyInput)
}

func TestParse_OnlyEOF(t *testing.T) {
	doc, err := Parse(dxf("0", "EOF"))
	require.NoError(t, err)
	assert.Empty(t, doc.Entities)
}

func TestParse_Line(t *testing.T) {
	doc, err := Parse(dxf(
		"0", "SECTION",
		"2", "ENTITIES",
		"0", "LINE",
		"8", "0",
		"10", "1.5",
		"20", "2.5",
		"11", "3.5",
		"21", "4.5",
		"0", "ENDSEC",
		"0", "EOF",
	))
	require.NoError(t, err)
	require.Len(t, doc.Entities, 1)

	line, ok := doc.Entities[0].(*entities.Line)
	require.True(t, ok)
	assert.Equal(t, core.Point{X: 1.5, Y: 2.5}, line.Start)
	assert.Equal(t, core.Point{X: 3.5, Y: 4.5}, line.End)
}

func TestParse_LineEndings(t *testing.T) {
	// \n、\r\n、\r 三种行尾解析结果一致
	var (
		lf = "0\nSECTION\n2\nENTITIES\n0\nLINE\n10\n1\n20\n2\n0\nENDSEC\n0\nEOF\n"

		crlf = strings.ReplaceAll(lf, "\n", "\r\n")
		cr   = strings.ReplaceAll(lf, "\n", "\r")
	)

	for _, data := range []string{lf, crlf, cr} {
		doc, err := Parse([]byte(data))
		require.NoError(t, err)
		require.Len(t, doc.Entities, 1)

		line := doc.Entities[0].(*entities.Line)
		assert.Equal(t, core.Point{X: 1, Y: 2}, line.Start)
	}
}

func TestParse_DamagedEntityRecovery(t *testing.T) {
	// 第一个实体坐标结构损坏：跳过并计数，后面的实体正常解析
	doc, err := Parse(dxf(
		"0", "SECTION",
		"2", "ENTITIES",
		"0", "CIRCLE",
		"10", "1.0",
		"30", "9.9", // X 之后不是 Y，结构损坏
		"0", "LINE",
		"10", "0",
		"20", "0",
		"11", "5",
		"21", "5",
		"0", "ENDSEC",
		"0", "EOF",
	))
	require.NoError(t, err)

	assert.Equal(t, 1, doc.Summary.DamagedEntities)
	require.Len(t, doc.Summary.DamagedSamples, 1)
	assert.Contains(t, doc.Summary.DamagedSamples[0], "CIRCLE")

	// 同一条告警也进扁平告警清单
	require.Len(t, doc.Summary.Warnings, 1)
	assert.Contains(t, doc.Summary.Warnings[0], "damaged entity CIRCLE")

	require.Len(t, doc.Entities, 1)
	assert.IsType(t, &entities.Line{}, doc.Entities[0])
}

func TestParse_UnknownSectionSkipped(t *testing.T) {
	doc, err := Parse(dxf(
		"0", "SECTION",
		"2", "OBJECTS",
		"0", "DICTIONARY",
		"3", "whatever",
		"0", "ENDSEC",
		"0", "SECTION",
		"2", "ENTITIES",
		"0", "POINT",
		"10", "1",
		"20", "2",
		"0", "ENDSEC",
		"0", "EOF",
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"OBJECTS"}, doc.Summary.UnknownSections)
	assert.Contains(t, doc.Summary.Warnings, "unknown section OBJECTS")
	require.Len(t, doc.Entities, 1)
}

func TestParse_Header(t *testing.T) {
	doc, err := Parse(dxf(
		"0", "SECTION",
		"2", "HEADER",
		"9", "$ACADVER",
		"1", "AC1027",
		"9", "$INSUNITS",
		"70", "4",
		"9", "$EXTMIN",
		"10", "-5.0",
		"20", "-10.0",
		"0", "ENDSEC",
		"0", "EOF",
	))
	require.NoError(t, err)

	ver, ok := doc.HeaderString("$ACADVER")
	require.True(t, ok)
	assert.Equal(t, "AC1027", ver)

	units, ok := doc.HeaderInt("$INSUNITS")
	require.True(t, ok)
	assert.Equal(t, 4, units)

	min, ok := doc.HeaderPoint("$EXTMIN")
	require.True(t, ok)
	assert.Equal(t, core.Point{X: -5, Y: -10}, min)
}

func TestParse_LayerTable(t *testing.T) {
	doc, err := Parse(dxf(
		"0", "SECTION",
		"2", "TABLES",
		"0", "TABLE",
		"2", "LAYER",
		"0", "LAYER",
		"2", "Walls",
		"62", "-5", // 负索引：图层关闭
		"6", "DASHED",
		"0", "LAYER",
		"2", "Doors",
		"62", "3",
		"70", "1", // 冻结
		"0", "ENDTAB",
		"0", "ENDSEC",
		"0", "EOF",
	))
	require.NoError(t, err)
	require.Len(t, doc.Layers, 2)

	walls := doc.Layers["WALLS"]
	require.NotNil(t, walls)
	assert.False(t, walls.Visible)
	assert.Equal(t, 5, walls.ColorIndex)
	assert.Equal(t, "DASHED", walls.LineType)

	doors := doc.Layers["DOORS"]
	require.NotNil(t, doors)
	assert.True(t, doors.Visible)
	assert.True(t, doors.Frozen)
}

func TestParse_Blocks(t *testing.T) {
	doc, err := Parse(dxf(
		"0", "SECTION",
		"2", "BLOCKS",
		"0", "BLOCK",
		"2", "Chair",
		"10", "1",
		"20", "2",
		"0", "LINE",
		"10", "0",
		"20", "0",
		"11", "1",
		"21", "1",
		"0", "ENDBLK",
		"0", "ENDSEC",
		"0", "EOF",
	))
	require.NoError(t, err)

	block := doc.Blocks["CHAIR"]
	require.NotNil(t, block)
	assert.Equal(t, core.Point{X: 1, Y: 2}, block.BasePoint)
	require.Len(t, block.Entities, 1)
	assert.IsType(t, &entities.Line{}, block.Entities[0])
}

func TestParse_HandleSynthesis(t *testing.T) {
	doc, err := Parse(dxf(
		"0", "SECTION",
		"2", "ENTITIES",
		"0", "LINE",
		"5", "FF",
		"10", "0",
		"20", "0",
		"0", "LINE", // 无句柄
		"10", "1",
		"20", "1",
		"0", "LINE", // 无句柄
		"10", "2",
		"20", "2",
		"0", "ENDSEC",
		"0", "EOF",
	))
	require.NoError(t, err)
	require.Len(t, doc.Entities, 3)

	// 合成句柄越过文件中出现过的最大值，且互不重复
	seen := make(map[string]bool)
	for _, e := range doc.Entities {
		h := e.Common().Handle
		require.NotEmpty(t, h)
		assert.False(t, seen[h])
		seen[h] = true
	}

	assert.Equal(t, "100", doc.Entities[1].Common().Handle)
	assert.Equal(t, "101", doc.Entities[2].Common().Handle)
}

func TestParse_StrayTagsDropped(t *testing.T) {
	// 实体流里夹着游离标签（没有前导组码 0），丢弃不报错
	doc, err := Parse(dxf(
		"0", "SECTION",
		"2", "ENTITIES",
		"8", "stray",
		"0", "POINT",
		"10", "1",
		"20", "2",
		"0", "ENDSEC",
		"0", "EOF",
	))
	require.NoError(t, err)
	assert.Len(t, doc.Entities, 1)
}
