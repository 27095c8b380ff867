package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanner_Basic(t *testing.T) {
	// 模拟一个简单的 DXF 片段
	dxfData := "0\nSECTION\n2\nHEADER\n0\nENDSEC\n"
	scanner, err := NewScanner(strings.NewReader(dxfData))
	require.NoError(t, err)

	expected := []Tag{
		{0, "SECTION"},
		{2, "HEADER"},
		{0, "ENDSEC"},
	}

	for i, exp := range expected {
		tag, err := scanner.Next()
		require.NoError(t, err, "第 %d 步读取失败", i)
		assert.Equal(t, exp, tag, "第 %d 步数据不符", i)
	}
}

func TestScanner_LineEndings(t *testing.T) {
	// LF、CRLF、CR 三种换行必须解析出完全一致的结果
	tests := []struct {
		name string
		data string
	}{
		{"LF", "0\nLINE\n8\n0\n0\nEOF\n"},
		{"CRLF", "0\r\nLINE\r\n8\r\n0\r\n0\r\nEOF\r\n"},
		{"CR", "0\rLINE\r8\r0\r0\rEOF\r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanner, err := NewScannerData([]byte(tt.data))
			require.NoError(t, err)

			tag, err := scanner.Next()
			require.NoError(t, err)
			assert.Equal(t, Tag{0, "LINE"}, tag)

			tag, err = scanner.Next()
			require.NoError(t, err)
			assert.Equal(t, 8, tag.Code)
			assert.Equal(t, 0, tag.AsInt())

			tag, err = scanner.Next()
			require.NoError(t, err)
			assert.True(t, tag.Is("EOF"))
			assert.True(t, scanner.IsEOF())
		})
	}
}

func TestScanner_EmptyInput(t *testing.T) {
	_, err := NewScannerData(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = NewScannerData([]byte{})
	assert.ErrorIs(t, err, ErrEmptyInput)

	// 只有空白行同样算空输入
	_, err = NewScannerData([]byte("\n\n\n"))
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestScanner_EOFLatch(t *testing.T) {
	scanner, err := NewScannerData([]byte("0\nEOF\n"))
	require.NoError(t, err)

	tag, err := scanner.Next()
	require.NoError(t, err)
	assert.True(t, tag.Is("EOF"))
	assert.True(t, scanner.IsEOF())

	// 读过 EOF 之后继续读取必须报错
	_, err = scanner.Next()
	assert.ErrorIs(t, err, ErrUnexpectedEOF)

	// 回退必须清除 EOF 状态，EOF 标签可以被重新读取
	scanner.Rewind(1)
	assert.False(t, scanner.IsEOF())

	tag, err = scanner.Next()
	require.NoError(t, err)
	assert.True(t, tag.Is("EOF"))
}

func TestScanner_PeekRewind(t *testing.T) {
	scanner, err := NewScannerData([]byte("10\n1.5\n20\n2.5\n30\n3.5\n"))
	require.NoError(t, err)

	peeked, err := scanner.Peek()
	require.NoError(t, err)

	next, err := scanner.Next()
	require.NoError(t, err)
	assert.Equal(t, peeked, next)

	_, _ = scanner.Next()
	_, _ = scanner.Next()

	scanner.Rewind(2)
	tag, err := scanner.Next()
	require.NoError(t, err)
	assert.Equal(t, 20, tag.Code)
}

func TestTag_TypeOf(t *testing.T) {
	// 类型区间表是正确性契约，边界逐个核对
	tests := []struct {
		code int
		want Type
	}{
		{0, TypeString}, {9, TypeString},
		{10, TypeFloat}, {59, TypeFloat},
		{60, TypeInt}, {99, TypeInt},
		{100, TypeString}, {109, TypeString},
		{110, TypeFloat}, {149, TypeFloat},
		{160, TypeInt}, {179, TypeInt},
		{210, TypeFloat}, {239, TypeFloat},
		{270, TypeInt}, {289, TypeInt},
		{290, TypeBool}, {299, TypeBool},
		{300, TypeString}, {369, TypeString},
		{370, TypeInt}, {389, TypeInt},
		{420, TypeInt}, {429, TypeInt},
		{1000, TypeString}, {1009, TypeString},
		{1010, TypeFloat}, {1059, TypeFloat},
		{1060, TypeInt}, {1071, TypeInt},
		{150, TypeString}, {390, TypeString}, {999, TypeString},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TypeOf(tt.code), "code=%d", tt.code)
	}
}

func TestTag_Accessors(t *testing.T) {
	assert.Equal(t, 1.25, Tag{40, " 1.25 "}.AsFloat())
	assert.Equal(t, 7, Tag{62, " 7"}.AsInt())
	assert.True(t, Tag{290, "1"}.AsBool())
	assert.False(t, Tag{290, "0"}.AsBool())
	assert.Equal(t, "LAYER1", Tag{8, "  LAYER1 "}.AsString())
	assert.True(t, Tag{0, "line"}.Is("LINE"))
}
