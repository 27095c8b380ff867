package entities

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/zooyer/dxfview/core"
)

// 标注类型（组码 70 低位）
const (
	DimLinear    = 0
	DimAligned   = 1
	DimAngular   = 2
	DimDiametric = 3
	DimRadial    = 4
	DimAngular3P = 5
	DimOrdinate  = 6

	// 组码 70 的附加位
	DimBlockRef  = 32 // 标注引用了自己的图块
	DimOrdinateX = 64 // 坐标标注测 X 轴（否则测 Y 轴）
	DimTextUser  = 128
)

type Dimension struct {
	BaseEntity
	DimType           int        // 组码 70 原始位域
	StyleName         string     // 组码 3（标注样式名称，用于关联 TABLES）
	ActualMeasurement float64    // 组码 42
	Text              string     // 组码 1
	TextHeight        float64    // 组码 140
	Angle             float64    // 组码 50，解析时转为弧度
	DefPoint          core.Point // 组码 10（标注线定位点）
	TextMidPoint      core.Point // 组码 11（文字中点）
	InsertPoint       core.Point // 组码 12（块插入点）
	MeasureStart      core.Point // 组码 13（被测量的起点）
	MeasureEnd        core.Point // 组码 14（被测量的终点）
	DiameterPoint     core.Point // 组码 15（直径/半径定义点）
	ArcPoint          core.Point // 组码 16（角度标注的弧线定位点）
	hasArcPoint       bool
}

func NewDimension() *Dimension {
	return &Dimension{BaseEntity: newBase("DIMENSION")}
}

func (d *Dimension) Parse(s *core.Scanner) (err error) {
	return parseProps(s, &d.BaseEntity, func(t core.Tag) (bool, error) {
		switch t.Code {
		case 3:
			d.StyleName = strings.ToUpper(t.AsString())
		case 1:
			d.Text = t.AsString()
		case 42:
			d.ActualMeasurement = t.AsFloat()
		case 50:
			d.Angle = t.AsFloat() * math.Pi / 180
		case 140:
			d.TextHeight = t.AsFloat()
		case 70:
			d.DimType = t.AsInt()
		case 10:
			if d.DefPoint, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 11:
			if d.TextMidPoint, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 12:
			if d.InsertPoint, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 13:
			if d.MeasureStart, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 14:
			if d.MeasureEnd, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 15:
			if d.DiameterPoint, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
		case 16:
			if d.ArcPoint, err = core.ReadPoint(s, t); err != nil {
				return false, err
			}
			d.hasArcPoint = true
		default:
			return false, nil
		}

		return true, nil
	})
}

// Kind 返回标注类型（位域低 3 位）
func (d *Dimension) Kind() int {
	return d.DimType & 7
}

// OrdinateX 坐标标注是否测 X 轴
func (d *Dimension) OrdinateX() bool {
	return d.DimType&DimOrdinateX != 0
}

// HasArcPoint 角度标注是否带弧线定位点（组码 16）
func (d *Dimension) HasArcPoint() bool {
	return d.hasArcPoint
}

// GetCleanVal 正则提取数值：剥掉格式控制码后抓第一个数字
func (d *Dimension) GetCleanVal() float64 {
	val := d.ActualMeasurement
	if val <= 0 && d.Text != "" {
		reFormat := regexp.MustCompile(`\\[A-Z].*?;`)
		cleanText := reFormat.ReplaceAllString(d.Text, "")
		reNum := regexp.MustCompile(`[0-9.]+`)
		if match := reNum.FindString(cleanText); match != "" {
			parsed, _ := strconv.ParseFloat(match, 64)
			val = parsed
		}
	}
	return val
}

// GetExtensionPoints 计算标注线上的两个转角点（13/14 在标注线方向上的投影）
func (d *Dimension) GetExtensionPoints() (p13Corner, p14Corner core.Point) {
	cos := math.Cos(d.Angle)
	sin := math.Sin(d.Angle)

	// 标注线的单位方向向量
	v := core.Point{X: cos, Y: sin}

	dx13 := d.MeasureStart.X - d.DefPoint.X
	dy13 := d.MeasureStart.Y - d.DefPoint.Y
	dot13 := dx13*v.X + dy13*v.Y

	p13Corner = core.Point{
		X: d.DefPoint.X + v.X*dot13,
		Y: d.DefPoint.Y + v.Y*dot13,
	}

	dx14 := d.MeasureEnd.X - d.DefPoint.X
	dy14 := d.MeasureEnd.Y - d.DefPoint.Y
	dot14 := dx14*v.X + dy14*v.Y

	p14Corner = core.Point{
		X: d.DefPoint.X + v.X*dot14,
		Y: d.DefPoint.Y + v.Y*dot14,
	}

	return
}

func (d *Dimension) BBox() core.BBox {
	return d.BBoxExt(0)
}

// BBoxExt 含延伸线冒尖量的包围盒
// exe 代表标注线超出延伸线的长度 (DIMEXE)
func (d *Dimension) BBoxExt(exe float64) core.BBox {
	c13, c14 := d.GetExtensionPoints()

	// 延伸线方向垂直于标注线
	u := core.Point{X: math.Cos(d.Angle + math.Pi/2), Y: math.Sin(d.Angle + math.Pi/2)}

	// 判定 u 是朝向还是背离测量点，决定冒尖方向
	vecToLine := core.Point{X: c13.X - d.MeasureStart.X, Y: c13.Y - d.MeasureStart.Y}
	dot := vecToLine.X*u.X + vecToLine.Y*u.Y

	direction := 1.0
	if dot < 0 {
		direction = -1.0
	}

	p13Top := core.Point{X: c13.X + u.X*exe*direction, Y: c13.Y + u.Y*exe*direction}
	p14Top := core.Point{X: c14.X + u.X*exe*direction, Y: c14.Y + u.Y*exe*direction}

	box := core.NewBBox(d.MeasureStart)
	for _, p := range []core.Point{d.MeasureEnd, p13Top, p14Top, d.TextMidPoint} {
		box.Extend(p)
	}

	return box
}
