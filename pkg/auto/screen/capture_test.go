package screen

import (
	"testing"

	"github.com/zoeyai/zoeydetect/pkg/auto"
)

// 需要图形环境，无权限或无显示器时跳过
func TestCapture(t *testing.T) {
	c := NewCapturer(nil)
	buf, err := c.Capture()
	if err != nil {
		t.Skipf("截屏失败 (可能需要屏幕录制权限): %v", err)
	}
	if err := buf.Validate(); err != nil {
		t.Fatalf("截图缓冲区无效: %v", err)
	}
	t.Logf("截屏成功: %dx%d, 坐标比例 %+v", buf.Width, buf.Height, c.Scale())

	s := c.Scale()
	if s.X <= 0 || s.Y <= 0 {
		t.Errorf("坐标比例应为正数: %+v", s)
	}
}

func TestCapturerDefaultScale(t *testing.T) {
	c := NewCapturer(&auto.Region{X: 10, Y: 20, Width: 30, Height: 40})
	x, y := c.ToInput(5, 5)
	if x != 5 || y != 5 {
		t.Errorf("截图前应不做映射, 实际 (%d, %d)", x, y)
	}
}
