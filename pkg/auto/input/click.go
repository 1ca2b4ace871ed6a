package input

import (
	"time"

	"github.com/go-vgo/robotgo"

	"github.com/zoeyai/zoeydetect/pkg/auto"
)

// Mouse 在截图坐标上点击，实现 auto.Clicker
type Mouse struct {
	// Mapper 截图坐标到输入坐标的映射，通常是截图器
	Mapper auto.CoordMapper
	// Settle 移动后等待鼠标到位的时间
	Settle time.Duration
}

// NewMouse 创建鼠标点击器
func NewMouse(mapper auto.CoordMapper) *Mouse {
	return &Mouse{Mapper: mapper, Settle: 50 * time.Millisecond}
}

// Click 在截图坐标 (x, y) 处点击（根据 Options 决定点击方式）
func (m *Mouse) Click(x, y int, o *auto.Options) error {
	inputX, inputY := toInput(m.Mapper, x, y)
	MoveTo(inputX, inputY)
	time.Sleep(m.Settle)

	if o == nil {
		o = auto.DefaultOptions()
	}
	switch {
	case o.RightClick:
		robotgo.Click("right", false)
	case o.DoubleClick:
		robotgo.Click("left", true)
	default:
		robotgo.Click("left", false)
	}
	return nil
}
