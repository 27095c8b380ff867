package core

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	// ErrEmptyInput 输入为空，整个解析直接失败
	ErrEmptyInput = errors.New("dxf: empty input")

	// ErrUnexpectedEOF 已经读过 EOF 标签之后继续读取
	ErrUnexpectedEOF = errors.New("dxf: unexpected end of file")
)

// Scanner 基于标签数组的游标扫描器
// 支持向前读取、单步预读和回退 N 个标签（回退会清除 EOF 状态）
type Scanner struct {
	tags []Tag
	pos  int
	eof  bool // 是否已读到 (0, EOF) 标签
}

// NewScanner 读取全部输入并切分为标签数组
func NewScanner(r io.Reader) (*Scanner, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return NewScannerData(data)
}

// NewScannerData 从内存数据构造扫描器
func NewScannerData(data []byte) (*Scanner, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	lines := splitLines(string(data))

	var tags = make([]Tag, 0, len(lines)/2)
	for i := 0; i < len(lines); i++ {
		codeStr := strings.TrimSpace(lines[i])
		if codeStr == "" { // 跳过空的组码行
			continue
		}

		code, err := strconv.Atoi(codeStr)
		if err != nil {
			return nil, fmt.Errorf("dxf: invalid group code %q at line %d: %w", codeStr, i+1, err)
		}

		// 组码行之后必须跟一个值行，值行保留开头空格（DXF 规范要求）
		i++
		var value string
		if i < len(lines) {
			value = lines[i]
		}

		tags = append(tags, Tag{Code: code, Value: value})
	}

	if len(tags) == 0 {
		return nil, ErrEmptyInput
	}

	return &Scanner{tags: tags}, nil
}

// splitLines 兼容 LF、CRLF、CR 三种换行，三者解析结果必须一致
func splitLines(data string) []string {
	var (
		lines []string
		start = 0
	)

	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\n':
			lines = append(lines, data[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, data[start:i])
			if i+1 < len(data) && data[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}

	if start < len(data) {
		lines = append(lines, data[start:])
	}

	return lines
}

// Next 读取下一个标签并前进游标
// 读过终止 EOF 标签之后再调用，返回 ErrUnexpectedEOF
func (s *Scanner) Next() (Tag, error) {
	if s.eof || s.pos >= len(s.tags) {
		return Tag{}, ErrUnexpectedEOF
	}

	tag := s.tags[s.pos]
	s.pos++

	if tag.Is("EOF") {
		s.eof = true
	}

	return tag, nil
}

// Peek 预读下一个标签，不前进游标
func (s *Scanner) Peek() (Tag, error) {
	if s.eof || s.pos >= len(s.tags) {
		return Tag{}, ErrUnexpectedEOF
	}

	return s.tags[s.pos], nil
}

// Rewind 回退 n 个标签
// 必须清除 EOF 状态：预读可能恰好落在 EOF 标签上，回退后要能重新读取
func (s *Scanner) Rewind(n int) {
	if n < 1 {
		n = 1
	}

	s.pos -= n
	if s.pos < 0 {
		s.pos = 0
	}

	s.eof = false
}

// IsEOF 是否已读到 (0, EOF) 标签
func (s *Scanner) IsEOF() bool {
	return s.eof
}

// Exhausted 是否已无标签可读（EOF 标签或数组末尾）
func (s *Scanner) Exhausted() bool {
	return s.eof || s.pos >= len(s.tags)
}

// Pos 返回当前游标位置（供测试与诊断）
func (s *Scanner) Pos() int {
	return s.pos
}
