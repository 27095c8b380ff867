package dxfview

import (
	"strings"

	"github.com/zooyer/dxfview/core"
)

// parseHeader HEADER 段：(9, $变量名) 后面跟若干值标签，直到下一个 9 或 ENDSEC
func (p *parser) parseHeader() {
	var current string

	for !p.scanner.Exhausted() {
		tag, err := p.scanner.Next()
		if err != nil || tag.Is("ENDSEC") {
			return
		}

		switch {
		case tag.Code == 9:
			current = strings.ToUpper(tag.AsString())
			p.doc.Header[current] = nil
		case tag.Code == 0:
			// 不认识的结构，整段放弃到 ENDSEC
			p.skipSection()
			return
		case current != "":
			p.doc.Header[current] = append(p.doc.Header[current], tag)
		}
	}
}

// HeaderFloat 读取数值型头变量（取第一个值标签）
func (d *Document) HeaderFloat(name string) (float64, bool) {
	tags := d.Header[strings.ToUpper(name)]
	if len(tags) == 0 {
		return 0, false
	}

	return tags[0].AsFloat(), true
}

// HeaderInt 读取整型头变量
func (d *Document) HeaderInt(name string) (int, bool) {
	tags := d.Header[strings.ToUpper(name)]
	if len(tags) == 0 {
		return 0, false
	}

	return tags[0].AsInt(), true
}

// HeaderString 读取字符串头变量
func (d *Document) HeaderString(name string) (string, bool) {
	tags := d.Header[strings.ToUpper(name)]
	if len(tags) == 0 {
		return "", false
	}

	return tags[0].AsString(), true
}

// HeaderPoint 读取坐标型头变量（如 $EXTMIN/$EXTMAX）
func (d *Document) HeaderPoint(name string) (core.Point, bool) {
	tags := d.Header[strings.ToUpper(name)]
	if len(tags) == 0 {
		return core.Point{}, false
	}

	var p core.Point
	for _, t := range tags {
		switch t.Code {
		case 10:
			p.X = t.AsFloat()
		case 20:
			p.Y = t.AsFloat()
		case 30:
			p.Z = t.AsFloat()
		}
	}

	return p, true
}
