package render

import (
	"strconv"
	"strings"
)

// MTEXT 字面转义的占位符：先把 \\、\{、\} 换成私用区码点，
// 后续所有控制码解析都不会再碰到它们，最后一步换回字面字符
const (
	placeBackslash  = '\uE000'
	placeOpenBrace  = '\uE001'
	placeCloseBrace = '\uE002'
)

// TextSpan 一行内一段统一样式的文字
type TextSpan struct {
	Text   string
	Font   string
	Bold   bool
	Italic bool
	Height float64 // 相对高度系数，1 为基准
	Color  int     // ACI 颜色索引，-1 继承实体色

	// 堆叠分数：非空时 Text 为空，上下两段分开渲染
	StackedTop    string
	StackedBottom string
}

// TextLine 一行富文本
type TextLine struct {
	Spans []TextSpan
}

// Plain 拼出该行的纯文本
func (l TextLine) Plain() string {
	var sb strings.Builder
	for _, span := range l.Spans {
		if span.StackedTop != "" || span.StackedBottom != "" {
			sb.WriteString(span.StackedTop)
			sb.WriteString("/")
			sb.WriteString(span.StackedBottom)
			continue
		}
		sb.WriteString(span.Text)
	}

	return sb.String()
}

// FormatMText 解析 MTEXT 控制码，拆成带样式段的行列表
//
// 控制码语义按 AutoCAD 行为：
//   - \P 换行；{...} 样式分组（组内样式不外泄，这里简化为平铺处理）
//   - \f...; 字体：行内第一个指令决定整行字体，最后一个指令带给后续行
//   - \C...; 颜色：不跨指令延续，遇 \C0/\C256 或下一个 \f 恢复
//   - \H...; 高度系数，延续到被覆盖
//   - \S...^...; 堆叠分数（分隔符 ^ / #）
//   - \U+XXXX Unicode 码点；%%d 度、%%p 正负、%%c 直径、%%nnn 码点
func FormatMText(value string) []TextLine {
	// 字面转义先保护起来
	var protected = strings.NewReplacer(
		`\\`, string(placeBackslash),
		`\{`, string(placeOpenBrace),
		`\}`, string(placeCloseBrace),
	).Replace(value)

	// 分组花括号对样式解析无意义（样式按指令顺序平铺），直接剥掉
	protected = strings.ReplaceAll(protected, "{", "")
	protected = strings.ReplaceAll(protected, "}", "")

	protected = expandUnicode(protected)
	protected = expandPercents(protected)

	var (
		lines []TextLine

		// 跨行延续的样式状态
		carryFont   string
		carryBold   bool
		carryItalic bool
		carryHeight = 1.0
	)

	for _, raw := range strings.Split(protected, `\P`) {
		line, lastFont, lastBold, lastItalic, lastHeight := parseMTextLine(raw, carryFont, carryBold, carryItalic, carryHeight)
		lines = append(lines, line)

		// 行内最后一个字体指令带给后续行
		carryFont, carryBold, carryItalic, carryHeight = lastFont, lastBold, lastItalic, lastHeight
	}

	return lines
}

// parseMTextLine 解析单行控制码
// 行内第一个字体指令回溯应用到行首已收的文字（决定整行字体的视觉效果）
func parseMTextLine(raw, font string, bold, italic bool, height float64) (line TextLine, lastFont string, lastBold, lastItalic bool, lastHeight float64) {
	var (
		cur = TextSpan{Font: font, Bold: bold, Italic: italic, Height: height, Color: -1}

		sawFont bool
		sb      strings.Builder
	)

	flush := func() {
		if sb.Len() == 0 {
			return
		}
		cur.Text = restoreLiterals(sb.String())
		line.Spans = append(line.Spans, cur)
		sb.Reset()
		cur.Text = ""
		cur.StackedTop, cur.StackedBottom = "", ""
	}

	var runes = []rune(raw)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '\\' || i+1 >= len(runes) {
			sb.WriteRune(r)
			continue
		}

		directive := runes[i+1]
		switch directive {
		case 'f', 'F':
			// \f字体名|b1|i0|...; 到分号为止
			arg, next := directiveArg(runes, i+2)
			i = next

			name, b, it := parseFontArg(arg)

			if !sawFont && len(line.Spans) == 0 && sb.Len() > 0 {
				// 行首文字回溯换字体：重建当前段样式而不是另起一段
				cur.Font, cur.Bold, cur.Italic = name, b, it
			} else {
				flush()
				cur.Font, cur.Bold, cur.Italic = name, b, it
			}
			// 字体指令同时终止行内颜色
			cur.Color = -1

			sawFont = true

		case 'C', 'c':
			arg, next := directiveArg(runes, i+2)
			i = next

			flush()
			if ci, err := strconv.Atoi(arg); err == nil && ci != 0 && ci != 256 {
				cur.Color = ci
			} else {
				// \C0 / \C256 / 非法参数都恢复继承色
				cur.Color = -1
			}

		case 'H':
			arg, next := directiveArg(runes, i+2)
			i = next

			flush()
			arg = strings.TrimSuffix(arg, "x")
			if h, err := strconv.ParseFloat(arg, 64); err == nil && h > 0 {
				cur.Height = h
			}

		case 'S':
			arg, next := directiveArg(runes, i+2)
			i = next

			flush()
			top, bottom := splitStacked(arg)
			cur.StackedTop, cur.StackedBottom = top, bottom
			line.Spans = append(line.Spans, cur)
			cur.StackedTop, cur.StackedBottom = "", ""

		case 'A', 'Q', 'W', 'T':
			// 对齐/倾斜/宽度/字距：几何重建不消费，剥掉指令
			_, next := directiveArg(runes, i+2)
			i = next

		case 'L', 'l', 'O', 'o', 'K', 'k':
			// 下划线/上划线/删除线开关，单字符指令
			i++

		case '~':
			// 不换行空格
			sb.WriteRune(' ')
			i++

		default:
			// 认不出的指令原样保留反斜杠
			sb.WriteRune(r)
		}
	}

	flush()

	if len(line.Spans) == 0 {
		line.Spans = append(line.Spans, TextSpan{Font: cur.Font, Bold: cur.Bold, Italic: cur.Italic, Height: cur.Height, Color: -1})
	}

	return line, cur.Font, cur.Bold, cur.Italic, cur.Height
}

// directiveArg 取指令参数：从 start 到分号（或串尾），返回参数和跳转下标
// 返回的下标指向分号，外层循环 i++ 后越过它
func directiveArg(runes []rune, start int) (string, int) {
	end := start
	for end < len(runes) && runes[end] != ';' {
		end++
	}

	return string(runes[start:end]), end
}

// parseFontArg 解析字体参数 "宋体|b1|i0|c134|p2"
func parseFontArg(arg string) (name string, bold, italic bool) {
	parts := strings.Split(arg, "|")
	name = parts[0]

	for _, p := range parts[1:] {
		if len(p) < 2 {
			continue
		}
		switch p[0] {
		case 'b':
			bold = p[1] == '1'
		case 'i':
			italic = p[1] == '1'
		}
	}

	return
}

// splitStacked 堆叠分数拆上下：分隔符 ^（无斜线）、/（带斜线）、#（斜分）
func splitStacked(arg string) (top, bottom string) {
	for _, sep := range []string{"^", "#", "/"} {
		if idx := strings.Index(arg, sep); idx >= 0 {
			return restoreLiterals(strings.TrimSpace(arg[:idx])), restoreLiterals(strings.TrimSpace(arg[idx+len(sep):]))
		}
	}

	return restoreLiterals(arg), ""
}

// expandUnicode \U+XXXX 转对应码点
func expandUnicode(s string) string {
	var sb strings.Builder

	for {
		idx := strings.Index(s, `\U+`)
		if idx < 0 || idx+7 > len(s) {
			sb.WriteString(s)
			break
		}

		code, err := strconv.ParseUint(s[idx+3:idx+7], 16, 32)
		if err != nil {
			sb.WriteString(s[:idx+3])
			s = s[idx+3:]
			continue
		}

		sb.WriteString(s[:idx])
		sb.WriteRune(rune(code))
		s = s[idx+7:]
	}

	return sb.String()
}

// expandPercents %%d 度、%%p 正负、%%c 直径、%%nnn 按码点
func expandPercents(s string) string {
	var sb strings.Builder

	for {
		idx := strings.Index(s, "%%")
		if idx < 0 || idx+2 >= len(s) {
			sb.WriteString(s)
			break
		}

		sb.WriteString(s[:idx])
		rest := s[idx+2:]

		switch rest[0] {
		case 'd', 'D':
			sb.WriteString("°")
			s = rest[1:]
		case 'p', 'P':
			sb.WriteString("±")
			s = rest[1:]
		case 'c', 'C':
			sb.WriteString("Ø")
			s = rest[1:]
		default:
			// %%nnn 数字码点
			n := 0
			for n < 3 && n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
				n++
			}
			if n > 0 {
				if code, err := strconv.Atoi(rest[:n]); err == nil {
					sb.WriteRune(rune(code))
					s = rest[n:]
					continue
				}
			}
			sb.WriteString("%%")
			s = rest
		}
	}

	return sb.String()
}

// restoreLiterals 占位符换回字面字符
func restoreLiterals(s string) string {
	return strings.NewReplacer(
		string(placeBackslash), `\`,
		string(placeOpenBrace), "{",
		string(placeCloseBrace), "}",
	).Replace(s)
}
