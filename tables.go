package dxfview

import (
	"strings"
)

// Layer 图层表记录
// 可见性由颜色索引的符号推导：负值表示图层关闭
type Layer struct {
	Name       string
	Flags      int
	ColorIndex int // 绝对值
	TrueColor  int // -1 未指定
	Visible    bool
	Frozen     bool // 标志位 1|2
	LineType   string
}

// LineType 线型表记录
type LineType struct {
	Name        string
	Description string
	Pattern     []float64 // 组码 49：正值画线，负值留空
	Length      float64
}

// TextStyle 文字样式表记录
type TextStyle struct {
	Name    string
	Font    string
	BigFont string
	Height  float64
}

// DimStyle 标注样式表记录
type DimStyle struct {
	Name       string
	Precision  int     // 对应组码 271 DIMDEC，显示的小数位数
	ExLimit    float64 // 对应组码 44 DIMEXE，标注线超出延伸线的长度
	Scale      float64 // 对应组码 40 DIMSCALE，全局比例，影响所有标注特征
	ArrowSize  float64 // 对应组码 41 DIMASZ
	TextHeight float64 // 对应组码 140 DIMTXT
}

// Vport 视口表记录
type Vport struct {
	Name    string
	CenterX float64
	CenterY float64
	Height  float64
}

// parseTables TABLES 段：(0,TABLE)(2,表名) ... (0,ENDTAB)，按表名分发
func (p *parser) parseTables() {
	for !p.scanner.Exhausted() {
		tag, err := p.scanner.Next()
		if err != nil || tag.Is("ENDSEC") {
			return
		}

		if !tag.Is("TABLE") {
			continue
		}

		nameTag, err := p.scanner.Peek()
		if err != nil {
			return
		}

		if nameTag.Code != 2 {
			p.skipTable()
			continue
		}

		if _, err = p.scanner.Next(); err != nil {
			return
		}

		switch strings.ToUpper(nameTag.AsString()) {
		case "LAYER":
			p.parseLayerTable()
		case "LTYPE":
			p.parseLTypeTable()
		case "STYLE":
			p.parseStyleTable()
		case "DIMSTYLE":
			p.parseDimStyleTable()
		case "VPORT":
			p.parseVportTable()
		default:
			// 认不出的表静默跳过
			p.skipTable()
		}
	}
}

// skipTable 跳到 ENDTAB 之后
func (p *parser) skipTable() {
	for !p.scanner.Exhausted() {
		tag, err := p.scanner.Next()
		if err != nil || tag.Is("ENDTAB") {
			return
		}
	}
}

// nextRecord 消费到下一条 (0, recordName) 记录，返回是否还有记录
func (p *parser) nextRecord(recordName string) bool {
	for !p.scanner.Exhausted() {
		tag, err := p.scanner.Peek()
		if err != nil {
			return false
		}

		if tag.Is("ENDTAB") || tag.Is("ENDSEC") {
			if tag.Is("ENDTAB") {
				_, _ = p.scanner.Next()
			}
			return false
		}

		if _, err = p.scanner.Next(); err != nil {
			return false
		}

		if tag.Is(recordName) {
			return true
		}
	}

	return false
}

// recordDone 记录是否解析完（停在组码 0 之前）
func (p *parser) recordDone() bool {
	tag, err := p.scanner.Peek()
	return err != nil || tag.Code == 0
}

func (p *parser) parseLayerTable() {
	for p.nextRecord("LAYER") {
		var layer = Layer{Visible: true, TrueColor: -1, LineType: "CONTINUOUS"}

		for !p.recordDone() {
			t, err := p.scanner.Next()
			if err != nil {
				break
			}

			switch t.Code {
			case 2:
				layer.Name = t.AsString()
			case 70:
				layer.Flags = t.AsInt()
				layer.Frozen = t.AsInt()&(1|2) != 0
			case 62:
				// 负的颜色索引表示图层关闭
				ci := t.AsInt()
				if ci < 0 {
					layer.Visible = false
					ci = -ci
				}
				layer.ColorIndex = ci
			case 420:
				layer.TrueColor = t.AsInt()
			case 6:
				layer.LineType = t.AsString()
			}
		}

		if layer.Name != "" {
			p.doc.Layers[strings.ToUpper(layer.Name)] = &layer
		}
	}
}

func (p *parser) parseLTypeTable() {
	for p.nextRecord("LTYPE") {
		var lt LineType

		for !p.recordDone() {
			t, err := p.scanner.Next()
			if err != nil {
				break
			}

			switch t.Code {
			case 2:
				lt.Name = t.AsString()
			case 3:
				lt.Description = t.Value
			case 40:
				lt.Length = t.AsFloat()
			case 49:
				lt.Pattern = append(lt.Pattern, t.AsFloat())
			}
		}

		if lt.Name != "" {
			p.doc.LineTypes[strings.ToUpper(lt.Name)] = &lt
		}
	}
}

func (p *parser) parseStyleTable() {
	for p.nextRecord("STYLE") {
		var st TextStyle

		for !p.recordDone() {
			t, err := p.scanner.Next()
			if err != nil {
				break
			}

			switch t.Code {
			case 2:
				st.Name = t.AsString()
			case 3:
				st.Font = t.AsString()
			case 4:
				st.BigFont = t.AsString()
			case 40:
				st.Height = t.AsFloat()
			}
		}

		if st.Name != "" {
			p.doc.Styles[strings.ToUpper(st.Name)] = &st
		}
	}
}

func (p *parser) parseDimStyleTable() {
	for p.nextRecord("DIMSTYLE") {
		var style = DimStyle{
			Scale: 1.0, // 默认为 1.0，防止乘法归零
		}

		for !p.recordDone() {
			t, err := p.scanner.Next()
			if err != nil {
				break
			}

			switch t.Code {
			case 2: // 样式名称
				style.Name = strings.ToUpper(t.AsString())
			case 271: // 精度
				style.Precision = t.AsInt()
			case 44: // 标注线超出延伸线长度 (DIMEXE)
				style.ExLimit = t.AsFloat()
			case 40: // 全局标注比例 (DIMSCALE)
				style.Scale = t.AsFloat()
			case 41: // 箭头尺寸 (DIMASZ)
				style.ArrowSize = t.AsFloat()
			case 140: // 文字高度 (DIMTXT)
				style.TextHeight = t.AsFloat()
			}
		}

		if style.Name != "" {
			p.doc.DimStyles[style.Name] = &style
		}
	}
}

func (p *parser) parseVportTable() {
	for p.nextRecord("VPORT") {
		var vp Vport

		for !p.recordDone() {
			t, err := p.scanner.Next()
			if err != nil {
				break
			}

			switch t.Code {
			case 2:
				vp.Name = t.AsString()
			case 12:
				vp.CenterX = t.AsFloat()
			case 22:
				vp.CenterY = t.AsFloat()
			case 40:
				vp.Height = t.AsFloat()
			}
		}

		if vp.Name != "" {
			p.doc.Vports[strings.ToUpper(vp.Name)] = &vp
		}
	}
}
