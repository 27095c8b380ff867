// Package dxfview 解析 DXF 图纸并重建渲染无关的几何
//
// 解析层容忍残缺输入：认不出的段、表、实体静默跳过，
// 单个损坏实体不会丢掉整个文件，解析结果附带告警汇总
package dxfview

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/zooyer/dxfview/core"
	"github.com/zooyer/dxfview/entities"
)

// Block 块定义
type Block struct {
	Name       string
	BasePoint  core.Point
	PaperSpace bool
	Entities   []entities.Entity
}

// Summary 解析告警汇总：要么整体失败，要么整体成功并附带这份清单，
// 绝不无声地给出残缺结果
type Summary struct {
	DamagedEntities int
	DamagedSamples  []string // 损坏实体的样本（类型 + 错误）
	UnknownSections []string
	Warnings        []string
}

// Warn 记录一条告警
func (s *Summary) Warn(msg string) {
	s.Warnings = append(s.Warnings, msg)
}

// Document 一次解析产出的只读绘图模型
type Document struct {
	Header    map[string][]core.Tag
	Entities  []entities.Entity
	Blocks    map[string]*Block
	Layers    map[string]*Layer
	LineTypes map[string]*LineType
	Styles    map[string]*TextStyle
	DimStyles map[string]*DimStyle
	Vports    map[string]*Vport
	Summary   Summary
}

// Option 解析选项
type Option func(*parser)

// WithLogger 指定解析过程的日志器，默认静默
func WithLogger(logger *zap.Logger) Option {
	return func(p *parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

type parser struct {
	scanner  *core.Scanner
	registry entities.Registry
	logger   *zap.Logger
	doc      *Document
}

// Open 打开并解析 DXF 文件
func Open(filename string, opts ...Option) (doc *Document, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return
	}

	defer func() {
		if e := file.Close(); e != nil && err == nil {
			err = e
		}
	}()

	return Load(file, opts...)
}

// Load 从 reader 解析 DXF
func Load(reader io.Reader, opts ...Option) (*Document, error) {
	scanner, err := core.NewScanner(reader)
	if err != nil {
		return nil, err
	}

	return parse(scanner, opts...)
}

// Parse 从内存数据解析 DXF
func Parse(data []byte, opts ...Option) (*Document, error) {
	scanner, err := core.NewScannerData(data)
	if err != nil {
		return nil, err
	}

	return parse(scanner, opts...)
}

func parse(scanner *core.Scanner, opts ...Option) (*Document, error) {
	var p = parser{
		scanner:  scanner,
		registry: entities.NewRegistry(),
		logger:   zap.NewNop(),
		doc: &Document{
			Header:    make(map[string][]core.Tag),
			Entities:  make([]entities.Entity, 0, 1024),
			Blocks:    make(map[string]*Block),
			Layers:    make(map[string]*Layer),
			LineTypes: make(map[string]*LineType),
			Styles:    make(map[string]*TextStyle),
			DimStyles: make(map[string]*DimStyle),
			Vports:    make(map[string]*Vport),
		},
	}

	for _, opt := range opts {
		opt(&p)
	}

	for !p.scanner.Exhausted() {
		tag, err := p.scanner.Next()
		if err != nil {
			break
		}

		if tag.Is("EOF") {
			break
		}

		if !tag.Is("SECTION") {
			continue
		}

		// SECTION 之后必须是 (2, 段名)，否则整段跳过，不让整个解析失败
		nameTag, err := p.scanner.Peek()
		if err != nil {
			break
		}

		if nameTag.Code != 2 {
			p.skipSection()
			continue
		}

		if _, err = p.scanner.Next(); err != nil {
			break
		}

		switch name := strings.ToUpper(nameTag.AsString()); name {
		case "HEADER":
			p.parseHeader()
		case "TABLES":
			p.parseTables()
		case "BLOCKS":
			p.parseBlocks()
		case "ENTITIES":
			p.parseEntities(func(e entities.Entity) {
				p.doc.Entities = append(p.doc.Entities, e)
			})
		default:
			p.doc.Summary.UnknownSections = append(p.doc.Summary.UnknownSections, name)
			p.doc.Summary.Warn("unknown section " + name)
			p.logger.Debug("skip section", zap.String("name", name))
			p.skipSection()
		}
	}

	p.assignHandles()

	return p.doc, nil
}

// skipSection 跳到匹配的 ENDSEC 之后
func (p *parser) skipSection() {
	for !p.scanner.Exhausted() {
		tag, err := p.scanner.Next()
		if err != nil || tag.Is("ENDSEC") {
			return
		}
	}
}

// parseEntities 解析一段实体流（ENTITIES 段或 BLOCK 内部）
// 单个实体解析失败：告警、跳到下一个组码 0，继续解析
func (p *parser) parseEntities(emit func(entities.Entity)) {
	for !p.scanner.Exhausted() {
		tag, err := p.scanner.Peek()
		if err != nil {
			return
		}

		if tag.Is("ENDSEC") || tag.Is("ENDBLK") || tag.Is("BLOCK") {
			return
		}

		if tag.Code != 0 {
			// 游离标签（通常是上一个实体损坏的残渣），丢弃
			if _, err = p.scanner.Next(); err != nil {
				return
			}
			continue
		}

		if _, err = p.scanner.Next(); err != nil {
			return
		}

		if tag.Is("EOF") {
			return
		}

		entity := p.registry.CreateAny(tag.AsString())
		if err = p.parseOne(entity); err != nil {
			msg := fmt.Sprintf("%s: %v", entity.Type(), err)
			p.doc.Summary.DamagedEntities++
			p.doc.Summary.Warn("damaged entity " + msg)
			if len(p.doc.Summary.DamagedSamples) < 10 {
				p.doc.Summary.DamagedSamples = append(p.doc.Summary.DamagedSamples, msg)
			}
			p.logger.Warn("damaged entity", zap.String("type", entity.Type()), zap.Error(err))
			p.skipEntity()
			continue
		}

		emit(entity)
	}
}

// parseOne 解析单个实体，panic 一并转成错误
func (p *parser) parseOne(entity entities.Entity) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dxf: entity parser panic: %v", r)
		}
	}()

	return entity.Parse(p.scanner)
}

// skipEntity 错误恢复：跳到下一个组码 0 之前
func (p *parser) skipEntity() {
	for !p.scanner.Exhausted() {
		tag, err := p.scanner.Peek()
		if err != nil || tag.Code == 0 {
			return
		}

		if _, err = p.scanner.Next(); err != nil {
			return
		}
	}
}

// assignHandles 句柄补齐：每个实体最终都要有唯一句柄，缺失的按序合成
// 合成起点越过文件里出现过的最大句柄，保证不与真实句柄冲突
func (p *parser) assignHandles() {
	var (
		maxHandle uint64
		all       []entities.Entity
	)

	all = append(all, p.doc.Entities...)
	for _, block := range p.doc.Blocks {
		all = append(all, block.Entities...)
	}

	for _, e := range all {
		if h := e.Common().Handle; h != "" {
			if v, err := strconv.ParseUint(h, 16, 64); err == nil && v > maxHandle {
				maxHandle = v
			}
		}
	}

	next := maxHandle + 1
	for _, e := range all {
		if e.Common().Handle == "" {
			e.Common().Handle = strconv.FormatUint(next, 16)
			next++
		}
	}
}
