package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMText_Plain(t *testing.T) {
	lines := FormatMText("hello")
	require.Len(t, lines, 1)
	assert.Equal(t, "hello", lines[0].Plain())
}

func TestFormatMText_LineBreak(t *testing.T) {
	lines := FormatMText(`first\Psecond\Pthird`)
	require.Len(t, lines, 3)
	assert.Equal(t, "first", lines[0].Plain())
	assert.Equal(t, "second", lines[1].Plain())
	assert.Equal(t, "third", lines[2].Plain())
}

func TestFormatMText_ColorDoesNotCarry(t *testing.T) {
	// 颜色指令只作用到行内，不跨行延续
	lines := FormatMText(`\C1;Red\PNormal`)
	require.Len(t, lines, 2)

	require.Len(t, lines[0].Spans, 1)
	assert.Equal(t, "Red", lines[0].Spans[0].Text)
	assert.Equal(t, 1, lines[0].Spans[0].Color)

	require.Len(t, lines[1].Spans, 1)
	assert.Equal(t, "Normal", lines[1].Spans[0].Text)
	assert.Equal(t, -1, lines[1].Spans[0].Color)
}

func TestFormatMText_ColorRevert(t *testing.T) {
	// \C0 恢复继承色
	lines := FormatMText(`\C3;green\C0;plain`)
	require.Len(t, lines, 1)
	require.Len(t, lines[0].Spans, 2)
	assert.Equal(t, 3, lines[0].Spans[0].Color)
	assert.Equal(t, -1, lines[0].Spans[1].Color)
}

func TestFormatMText_FontCarriesOver(t *testing.T) {
	// 行内最后一个字体指令带给后续行
	lines := FormatMText(`\f宋体|b1|i0;粗体\P下一行`)
	require.Len(t, lines, 2)

	assert.Equal(t, "宋体", lines[0].Spans[0].Font)
	assert.True(t, lines[0].Spans[0].Bold)

	assert.Equal(t, "宋体", lines[1].Spans[0].Font)
	assert.True(t, lines[1].Spans[0].Bold)
}

func TestFormatMText_FontRetroactive(t *testing.T) {
	// 行首文字之后才出现的第一个字体指令，回溯决定整行的字体
	lines := FormatMText(`开头\f黑体|b0|i1;后段`)
	require.Len(t, lines, 1)
	require.Len(t, lines[0].Spans, 1)

	assert.Equal(t, "黑体", lines[0].Spans[0].Font)
	assert.True(t, lines[0].Spans[0].Italic)
	assert.Equal(t, "开头后段", lines[0].Spans[0].Text)
}

func TestFormatMText_Unicode(t *testing.T) {
	lines := FormatMText(`\U+4E2D\U+6587`)
	require.Len(t, lines, 1)
	assert.Equal(t, "中文", lines[0].Plain())
}

func TestFormatMText_Percents(t *testing.T) {
	lines := FormatMText(`45%%d %%p0.1 %%c20`)
	require.Len(t, lines, 1)
	assert.Equal(t, "45° ±0.1 Ø20", lines[0].Plain())
}

func TestFormatMText_Stacked(t *testing.T) {
	lines := FormatMText(`\S1^2;`)
	require.Len(t, lines, 1)
	require.Len(t, lines[0].Spans, 1)
	assert.Equal(t, "1", lines[0].Spans[0].StackedTop)
	assert.Equal(t, "2", lines[0].Spans[0].StackedBottom)
}

func TestFormatMText_Literals(t *testing.T) {
	// 字面转义不被当成控制码
	lines := FormatMText(`a\\b\{c\}`)
	require.Len(t, lines, 1)
	assert.Equal(t, `a\b{c}`, lines[0].Plain())
}

func TestFormatMText_Height(t *testing.T) {
	lines := FormatMText(`normal\H2x;big\Pstill big`)
	require.Len(t, lines, 2)
	require.Len(t, lines[0].Spans, 2)

	assert.Equal(t, 1.0, lines[0].Spans[0].Height)
	assert.Equal(t, 2.0, lines[0].Spans[1].Height)

	// 高度延续到后续行
	assert.Equal(t, 2.0, lines[1].Spans[0].Height)
}

func TestFormatMText_StripDirectives(t *testing.T) {
	// 对齐等指令剥掉不留痕
	lines := FormatMText(`\A1;text`)
	require.Len(t, lines, 1)
	assert.Equal(t, "text", lines[0].Plain())
}

func TestFormatMText_BracesStripped(t *testing.T) {
	lines := FormatMText(`{\C1;red}after`)
	require.Len(t, lines, 1)
	assert.Equal(t, "redafter", lines[0].Plain())
}
