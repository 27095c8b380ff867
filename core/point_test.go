package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readTag(t *testing.T, s *Scanner) Tag {
	t.Helper()
	tag, err := s.Next()
	require.NoError(t, err)
	return tag
}

func TestReadPoint_3D(t *testing.T) {
	scanner, err := NewScannerData([]byte("10\n1.0\n20\n2.0\n30\n3.0\n0\nEOF\n"))
	require.NoError(t, err)

	p, err := ReadPoint(scanner, readTag(t, scanner))
	require.NoError(t, err)
	assert.Equal(t, Point{X: 1, Y: 2, Z: 3}, p)

	// Z 已消费，下一个应是 EOF
	tag, err := scanner.Next()
	require.NoError(t, err)
	assert.True(t, tag.Is("EOF"))
}

func TestReadPoint_2DRewind(t *testing.T) {
	// 没有 Z：预读到 40 后必须回退，扫描器状态如同从未预读
	scanner, err := NewScannerData([]byte("10\n1.0\n20\n2.0\n40\n5.0\n"))
	require.NoError(t, err)

	p, err := ReadPoint(scanner, readTag(t, scanner))
	require.NoError(t, err)
	assert.Equal(t, Point{X: 1, Y: 2}, p)

	tag, err := scanner.Next()
	require.NoError(t, err)
	assert.Equal(t, Tag{40, "5.0"}, tag)
}

func TestReadPoint_MissingY(t *testing.T) {
	// X 之后必须是 Y（组码 +10），否则是硬性结构错误
	scanner, err := NewScannerData([]byte("10\n1.0\n30\n3.0\n"))
	require.NoError(t, err)

	_, err = ReadPoint(scanner, readTag(t, scanner))
	assert.ErrorIs(t, err, ErrPointStructure)
}

func TestReadPoint_LookaheadOnEOF(t *testing.T) {
	// Z 的预读恰好落在 EOF 标签上：回退后 EOF 标签必须还能读到
	scanner, err := NewScannerData([]byte("11\n1.0\n21\n2.0\n0\nEOF\n"))
	require.NoError(t, err)

	p, err := ReadPoint(scanner, readTag(t, scanner))
	require.NoError(t, err)
	assert.Equal(t, Point{X: 1, Y: 2}, p)
	assert.False(t, scanner.IsEOF())

	tag, err := scanner.Next()
	require.NoError(t, err)
	assert.True(t, tag.Is("EOF"))
	assert.True(t, scanner.IsEOF())
}

func TestReadPoint_SecondPointCodes(t *testing.T) {
	// 组码 11 的点要求 Y=21、Z=31
	scanner, err := NewScannerData([]byte("11\n100\n21\n50\n31\n0\n"))
	require.NoError(t, err)

	p, err := ReadPoint(scanner, readTag(t, scanner))
	require.NoError(t, err)
	assert.Equal(t, Point{X: 100, Y: 50}, p)
}
