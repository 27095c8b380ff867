package dxfview

import (
	"strings"

	"github.com/zooyer/dxfview/core"
	"github.com/zooyer/dxfview/entities"
)

// parseBlocks BLOCKS 段：每个块是 (0,BLOCK) 头 + 实体流 + (0,ENDBLK)
func (p *parser) parseBlocks() {
	for !p.scanner.Exhausted() {
		tag, err := p.scanner.Next()
		if err != nil || tag.Is("ENDSEC") {
			return
		}

		if !tag.Is("BLOCK") {
			continue
		}

		block := p.parseBlockHeader()

		// 块体实体，复用实体流解析（含损坏恢复）
		p.parseEntities(func(e entities.Entity) {
			block.Entities = append(block.Entities, e)
		})

		// 消费 ENDBLK 及其属性标签
		if t, err := p.scanner.Peek(); err == nil && t.Is("ENDBLK") {
			if _, err = p.scanner.Next(); err == nil {
				p.skipEntity()
			}
		}

		if block.Name != "" {
			p.doc.Blocks[strings.ToUpper(block.Name)] = block
		}
	}
}

// parseBlockHeader 块头：名称、基点、图纸空间标志
func (p *parser) parseBlockHeader() *Block {
	var block = Block{Entities: []entities.Entity{}}

	for !p.scanner.Exhausted() {
		tag, err := p.scanner.Peek()
		if err != nil || tag.Code == 0 {
			break
		}

		if _, err = p.scanner.Next(); err != nil {
			break
		}

		switch tag.Code {
		case 2, 3:
			if block.Name == "" {
				block.Name = strings.ToUpper(tag.AsString())
			}
		case 10:
			if pt, err := core.ReadPoint(p.scanner, tag); err == nil {
				block.BasePoint = pt
			}
		case 67:
			block.PaperSpace = tag.AsInt() == 1
		}
	}

	return &block
}
