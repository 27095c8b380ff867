package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/ncruces/zenity"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zooyer/golib/xos"
	"go.uber.org/zap"

	"github.com/zooyer/dxfview"
	"github.com/zooyer/dxfview/core"
	"github.com/zooyer/dxfview/entities"
	"github.com/zooyer/dxfview/render"
	"github.com/zooyer/dxfview/utils"
)

var (
	flagJSON    = pflag.StringP("json", "j", "", "解析统计输出为 JSON 文件")
	flagSVG     = pflag.StringP("svg", "s", "", "几何重建结果输出为 SVG 文件")
	flagReport  = pflag.StringP("report", "r", "", "统计报表追加到 CSV 文件")
	flagVerbose = pflag.BoolP("verbose", "v", false, "输出解析过程日志")
)

// loadOptions 重建选项：内置默认值，可被当前目录的 dxfview.yaml 覆盖
func loadOptions() render.Options {
	viper.SetConfigName("dxfview")
	viper.AddConfigPath(".")

	viper.SetDefault("render.circle_segments", render.CircleSegments)
	viper.SetDefault("render.min_arc_segments", render.MinArcSegments)
	viper.SetDefault("render.spline_segments", render.SplineSegments)
	viper.SetDefault("render.max_insert_depth", render.MaxInsertDepth)
	viper.SetDefault("render.max_pattern_lines", render.MaxPatternLines)
	viper.SetDefault("render.max_pattern_segments", render.MaxPatternSegments)

	var notFound viper.ConfigFileNotFoundError
	if err := viper.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		panic(err)
	}

	return render.Options{
		CircleSegments:     viper.GetInt("render.circle_segments"),
		MinArcSegments:     viper.GetInt("render.min_arc_segments"),
		SplineSegments:     viper.GetInt("render.spline_segments"),
		MaxInsertDepth:     viper.GetInt("render.max_insert_depth"),
		MaxPatternLines:    viper.GetInt("render.max_pattern_lines"),
		MaxPatternSegments: viper.GetInt("render.max_pattern_segments"),
	}
}

// pickFile 没给文件参数时弹文件选择框
func pickFile() string {
	filename, err := zenity.SelectFile(
		zenity.Title("选择 DXF 图纸"),
		zenity.FileFilters{{Name: "DXF 图纸", Patterns: []string{"*.dxf"}, CaseFold: true}},
	)
	if err != nil {
		fmt.Println("请把DXF文件拖入该程序上执行！")
		xos.PauseExit()
		os.Exit(1)
	}

	return filename
}

func main() {
	pflag.Parse()

	var (
		filename    string
		interactive bool
	)

	if args := pflag.Args(); len(args) > 0 {
		filename = args[0]
	} else {
		filename = pickFile()
		interactive = true
	}

	if interactive {
		defer xos.PauseExit()
	}

	logger := zap.NewNop()
	if *flagVerbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		logger = l
		defer func() { _ = logger.Sync() }()
	}

	doc, err := dxfview.Open(filename, dxfview.WithLogger(logger))
	if err != nil {
		panic(err)
	}

	ctx := render.NewContext(loadOptions(), logger)
	prims := render.NewAssembler(doc, ctx).Assemble()

	printReport(filename, doc, ctx, prims)

	if *flagReport != "" {
		appendReport(*flagReport, filename, doc, ctx, prims)
	}

	if *flagJSON != "" {
		if err = writeJSON(*flagJSON, filename, doc, ctx, prims); err != nil {
			panic(err)
		}
		fmt.Println("[JSON]", *flagJSON)
	}

	if *flagSVG != "" {
		if err = writeSVG(*flagSVG, prims); err != nil {
			panic(err)
		}
		fmt.Println("[SVG]", *flagSVG)
	}
}

// countByType 实体类型计数（含块内实体）
func countByType(doc *dxfview.Document) map[string]int {
	counts := make(map[string]int)

	for _, e := range doc.Entities {
		counts[e.Type()]++
	}
	for _, block := range doc.Blocks {
		for _, e := range block.Entities {
			counts[e.Type()]++
		}
	}

	return counts
}

func printReport(filename string, doc *dxfview.Document, ctx *render.Context, prims []render.Primitive) {
	fmt.Println("[文件]", filename)

	if ver, ok := doc.HeaderString("$ACADVER"); ok {
		fmt.Println("[版本]", ver)
	}

	fmt.Printf("[规模] 实体 %d | 图块 %d | 图层 %d | 图元 %d\n",
		len(doc.Entities), len(doc.Blocks), len(doc.Layers), len(prims))

	var (
		counts = countByType(doc)
		names  = make([]string, 0, len(counts))
	)
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("    %-12s %d\n", name, counts[name])
	}

	// 图纸范围按实体的世界坐标包围盒算，不依赖几何重建结果
	if box, groups, ok := modelExtent(doc); ok {
		fmt.Printf("[范围] %.2f,%.2f ~ %.2f,%.2f\n", box.Min.X, box.Min.Y, box.Max.X, box.Max.Y)
		if groups > 1 {
			fmt.Printf("[成组] 相邻实体聚为 %d 组\n", groups)
		}
	}

	if n, ok := countOutside(doc); ok && n > 0 {
		fmt.Printf("[越界] %d 个实体超出图头声明范围\n", n)
	}

	for _, line := range dimLines(doc) {
		fmt.Println("[标注]", line)
	}
	for _, line := range attrLines(doc) {
		fmt.Println("[属性]", line)
	}

	// 告警汇总：解析侧与重建侧分开报
	if n := doc.Summary.DamagedEntities; n > 0 {
		fmt.Printf("[损坏] 跳过 %d 个损坏实体\n", n)
		for _, sample := range doc.Summary.DamagedSamples {
			fmt.Println("    |--", sample)
		}
	}

	for _, section := range doc.Summary.UnknownSections {
		fmt.Println("[跳过] 未知段", section)
	}

	for name, n := range ctx.Unsupported {
		fmt.Printf("[忽略] %s x%d（不支持的实体）\n", name, n)
	}

	if ctx.RecursionAborts > 0 {
		fmt.Printf("[截断] 块引用嵌套超限 %d 次\n", ctx.RecursionAborts)
	}
}

// appendReport 报表行追加到 CSV，不存在时先写表头
func appendReport(filename, input string, doc *dxfview.Document, ctx *render.Context, prims []render.Primitive) {
	const header = "文件,实体,图块,图层,图元,损坏,告警\n"

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		if err = xos.AppendFile(filename, []byte(header), 0644); err != nil {
			panic(err)
		}
	}

	line := fmt.Sprintf("%s,%d,%d,%d,%d,%d,%d\n",
		input, len(doc.Entities), len(doc.Blocks), len(doc.Layers),
		len(prims), doc.Summary.DamagedEntities,
		len(doc.Summary.Warnings)+len(ctx.Warnings),
	)

	if err := xos.AppendFile(filename, []byte(line), 0644); err != nil {
		panic(err)
	}
}

type jsonReport struct {
	File       string         `json:"file"`
	Version    string         `json:"version,omitempty"`
	Entities   int            `json:"entities"`
	Blocks     int            `json:"blocks"`
	Layers     int            `json:"layers"`
	Primitives int            `json:"primitives"`
	ByType     map[string]int `json:"by_type"`

	Damaged         int            `json:"damaged"`
	DamagedSamples  []string       `json:"damaged_samples,omitempty"`
	UnknownSections []string       `json:"unknown_sections,omitempty"`
	Unsupported     map[string]int `json:"unsupported,omitempty"`
	RecursionAborts int            `json:"recursion_aborts,omitempty"`
	Warnings        []string       `json:"warnings,omitempty"`
}

func writeJSON(filename, input string, doc *dxfview.Document, ctx *render.Context, prims []render.Primitive) error {
	report := jsonReport{
		File:            input,
		Entities:        len(doc.Entities),
		Blocks:          len(doc.Blocks),
		Layers:          len(doc.Layers),
		Primitives:      len(prims),
		ByType:          countByType(doc),
		Damaged:         doc.Summary.DamagedEntities,
		DamagedSamples:  doc.Summary.DamagedSamples,
		UnknownSections: doc.Summary.UnknownSections,
		Unsupported:     ctx.Unsupported,
		RecursionAborts: ctx.RecursionAborts,
		Warnings:        append(doc.Summary.Warnings, ctx.Warnings...),
	}
	report.Version, _ = doc.HeaderString("$ACADVER")

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}

// modelExtent 实体世界坐标包围盒合并出图纸范围，
// 再按间隙聚类出相邻实体的组数（间隙阈值取图幅的 1%）
func modelExtent(doc *dxfview.Document) (extent core.BBox, groups int, ok bool) {
	boxes := make([]core.BBox, 0, len(doc.Entities))
	for _, e := range doc.Entities {
		boxes = append(boxes, utils.GetEntityBBoxWCS(doc, e))
	}
	if len(boxes) == 0 {
		return
	}

	extent = boxes[0]
	for _, box := range boxes[1:] {
		extent.Extend(box.Min)
		extent.Extend(box.Max)
	}

	gap := math.Max(extent.Max.X-extent.Min.X, extent.Max.Y-extent.Min.Y) / 100
	groups = len(utils.MergeBoxes(boxes, gap))

	return extent, groups, true
}

// countOutside 实体包围盒中心落在 $EXTMIN/$EXTMAX 声明范围外的数量
func countOutside(doc *dxfview.Document) (n int, ok bool) {
	emin, ok1 := doc.HeaderPoint("$EXTMIN")
	emax, ok2 := doc.HeaderPoint("$EXTMAX")
	if !ok1 || !ok2 {
		return 0, false
	}

	sheet := core.BBox{Min: emin, Max: emax}
	for _, e := range doc.Entities {
		box := utils.GetEntityBBoxWCS(doc, e)
		center := core.Point{X: (box.Min.X + box.Max.X) / 2, Y: (box.Min.Y + box.Max.Y) / 2}
		if !utils.InBox(sheet, center) {
			n++
		}
	}

	return n, true
}

// dimLines 标注测量值清单（覆盖文字与样式精度的处理在 GetDimValue 里）
func dimLines(doc *dxfview.Document) (lines []string) {
	for _, e := range doc.Entities {
		if dim, ok := e.(*entities.Dimension); ok {
			lines = append(lines, fmt.Sprintf("#%s %g", dim.Common().Handle, utils.GetDimValue(doc, dim)))
		}
	}

	return
}

// attrLines 块引用的属性清单，属性名排序保证输出稳定
func attrLines(doc *dxfview.Document) (lines []string) {
	for _, e := range doc.Entities {
		ins, ok := e.(*entities.Insert)
		if !ok || len(ins.Attributes) == 0 {
			continue
		}

		var (
			attrs = utils.GetAttrs(ins)
			keys  = make([]string, 0, len(attrs))
			parts = make([]string, 0, len(attrs))
		)
		for key := range attrs {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parts = append(parts, key+"="+attrs[key])
		}
		lines = append(lines, ins.BlockName+": "+strings.Join(parts, " "))
	}

	return
}

// sceneBBox 图元场景的整体包围盒
func sceneBBox(prims []render.Primitive) (core.BBox, bool) {
	var (
		box   core.BBox
		first = true
	)

	extend := func(points ...core.Point) {
		for _, p := range points {
			if first {
				box = core.NewBBox(p)
				first = false
			} else {
				box.Extend(p)
			}
		}
	}

	for _, prim := range prims {
		switch v := prim.(type) {
		case render.Polyline:
			extend(v.Points...)
		case render.Triangles:
			extend(v.Points...)
		case render.Marker:
			extend(v.At)
		case render.TextQuad:
			extend(v.At)
		case render.Arrow:
			extend(v.Tip, v.Left, v.Right)
		}
	}

	return box, !first
}

// writeSVG 图元转 SVG：Y 轴翻转，颜色取样式解析结果
func writeSVG(filename string, prims []render.Primitive) error {
	box, ok := sceneBBox(prims)
	if !ok {
		return errors.New("empty scene")
	}

	var (
		width  = box.Max.X - box.Min.X
		height = box.Max.Y - box.Min.Y

		// 线宽随图幅缩放，免得大图细线看不见
		stroke = math.Max(width, height) / 1000

		sb strings.Builder
	)
	if stroke <= 0 {
		stroke = 1
	}

	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%g %g %g %g">`+"\n",
		box.Min.X, -box.Max.Y, width, height)
	fmt.Fprintf(&sb, `<g fill="none" stroke-width="%g">`+"\n", stroke)

	for _, prim := range prims {
		rgb := uint32(0xFFFFFF)
		if s := prim.GetStyle(); s != nil {
			rgb = uint32(s.Color)
		}
		hex := fmt.Sprintf("#%06X", rgb&0xFFFFFF)

		switch v := prim.(type) {
		case render.Polyline:
			fmt.Fprintf(&sb, `<polyline stroke="%s" points="%s"`, hex, svgPoints(v.Points))
			if len(v.Pattern) > 0 || v.Dashed {
				fmt.Fprintf(&sb, ` stroke-dasharray="%s"`, svgDashes(v.Pattern, stroke))
			}
			sb.WriteString("/>\n")

		case render.Triangles:
			for i := 0; i+2 < len(v.Points); i += 3 {
				fmt.Fprintf(&sb, `<polygon fill="%s" stroke="none" points="%s"/>`+"\n",
					hex, svgPoints(v.Points[i:i+3]))
			}

		case render.Marker:
			fmt.Fprintf(&sb, `<circle fill="%s" stroke="none" cx="%g" cy="%g" r="%g"/>`+"\n",
				hex, v.At.X, -v.At.Y, stroke*2)

		case render.TextQuad:
			text := v.Text
			if v.StackedTop != "" || v.StackedBottom != "" {
				text = v.StackedTop + "/" + v.StackedBottom
			}
			fmt.Fprintf(&sb, `<text fill="%s" stroke="none" x="%g" y="%g" font-size="%g" transform="rotate(%g %g %g)">%s</text>`+"\n",
				hex, v.At.X, -v.At.Y, v.Height,
				-v.Rotation*180/math.Pi, v.At.X, -v.At.Y,
				svgEscape(text))

		case render.Arrow:
			fmt.Fprintf(&sb, `<polygon fill="%s" stroke="none" points="%s"/>`+"\n",
				hex, svgPoints([]core.Point{v.Tip, v.Left, v.Right}))
		}
	}

	sb.WriteString("</g>\n</svg>\n")

	return os.WriteFile(filename, []byte(sb.String()), 0644)
}

func svgPoints(points []core.Point) string {
	var sb strings.Builder
	for i, p := range points {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%g,%g", p.X, -p.Y)
	}

	return sb.String()
}

// svgDashes 线型划线段转 SVG dasharray，空定义给个固定虚线
func svgDashes(pattern []float64, stroke float64) string {
	if len(pattern) == 0 {
		return fmt.Sprintf("%g %g", stroke*4, stroke*4)
	}

	var parts []string
	for _, d := range pattern {
		if d == 0 {
			d = stroke
		}
		parts = append(parts, fmt.Sprintf("%g", math.Abs(d)))
	}

	return strings.Join(parts, " ")
}

func svgEscape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
