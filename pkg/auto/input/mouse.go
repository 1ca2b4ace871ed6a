// Package input 用 robotgo 执行鼠标操作
package input

import (
	"github.com/go-vgo/robotgo"

	"github.com/zoeyai/zoeydetect/pkg/auto"
)

// MoveTo 移动鼠标到输入坐标
func MoveTo(x, y int) {
	robotgo.Move(x, y)
}

// toInput mapper 为 nil 时不做坐标转换
func toInput(m auto.CoordMapper, x, y int) (int, int) {
	if m == nil {
		return x, y
	}
	return m.ToInput(x, y)
}
