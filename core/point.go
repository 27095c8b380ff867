package core

import (
	"errors"
	"fmt"
)

// ErrPointStructure 坐标组码结构错误：X 之后没有紧跟 Y（组码 +10）
var ErrPointStructure = errors.New("dxf: point Y code does not follow X code")

// ReadPoint 从 X 坐标标签开始读取一个 2D/3D 点
// xTag 是已经消费掉的 X 坐标标签（组码 c），Y 必须紧跟且组码为 c+10，
// 缺 Y 是硬性结构错误。Z（组码 c+20）可选：预读发现不是 Z 就回退一个标签，
// 保证扫描器状态与从未预读过完全一致
func ReadPoint(s *Scanner, xTag Tag) (Point, error) {
	var p = Point{X: xTag.AsFloat()}

	yTag, err := s.Next()
	if err != nil {
		return p, fmt.Errorf("%w: code %d", ErrPointStructure, xTag.Code)
	}

	if yTag.Code != xTag.Code+10 {
		s.Rewind(1)
		return p, fmt.Errorf("%w: code %d followed by %d", ErrPointStructure, xTag.Code, yTag.Code)
	}

	p.Y = yTag.AsFloat()

	zTag, err := s.Next()
	if err != nil {
		// 恰好落在文件末尾，2D 点也是合法的
		return p, nil
	}

	if zTag.Code != xTag.Code+20 {
		s.Rewind(1)
		return p, nil
	}

	p.Z = zTag.AsFloat()

	return p, nil
}
