package entities

import (
	"github.com/zooyer/dxfview/core"
)

// parseProps 实体解析通用循环：逐个消费属性标签交给 handle，
// handle 没认领的组码走 BaseEntity 兜底。遇到下一个组码 0 或文件末尾停止，
// 扫描器停在组码 0 标签之前
func parseProps(s *core.Scanner, base *BaseEntity, handle func(t core.Tag) (bool, error)) error {
	for !s.Exhausted() {
		t, err := s.Peek()
		if err != nil {
			return nil
		}

		if t.Code == 0 {
			return nil
		}

		if _, err = s.Next(); err != nil {
			return nil
		}

		consumed, err := handle(t)
		if err != nil {
			return err
		}

		if !consumed {
			base.Apply(t)
		}
	}

	return nil
}

// skipToCode0 跳到下一个组码 0 标签之前（实体级错误恢复用）
func skipToCode0(s *core.Scanner) {
	for !s.Exhausted() {
		t, err := s.Peek()
		if err != nil || t.Code == 0 {
			return
		}

		if _, err = s.Next(); err != nil {
			return
		}
	}
}
