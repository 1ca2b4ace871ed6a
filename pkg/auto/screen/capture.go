// Package screen 用 robotgo 截取屏幕帧
package screen

import (
	"fmt"
	"image"
	"sync"

	"github.com/go-vgo/robotgo"

	"github.com/zoeyai/zoeydetect/pkg/auto"
	"github.com/zoeyai/zoeydetect/pkg/vision/bitmap"
)

// Capturer 截取全屏或固定区域，实现 auto.FrameSource 和 auto.CoordMapper
//
// 每次截图后根据图像尺寸更新坐标比例，Retina 屏上截图是物理像素。
type Capturer struct {
	// Region 截图区域（输入坐标），nil 表示主屏全屏
	Region *auto.Region

	mu    sync.Mutex
	scale auto.CoordScale
}

// NewCapturer 创建截图器
func NewCapturer(region *auto.Region) *Capturer {
	return &Capturer{Region: region, scale: auto.IdentityScale}
}

// Capture 截取一帧
func (c *Capturer) Capture() (bitmap.Buffer, error) {
	img, origin, inputW, inputH, err := c.grab()
	if err != nil {
		return bitmap.Buffer{}, err
	}

	buf, err := bitmap.FromImage(img)
	if err != nil {
		return bitmap.Buffer{}, fmt.Errorf("转换截图失败: %w", err)
	}

	b := img.Bounds()
	c.mu.Lock()
	c.scale = auto.NewCoordScale(origin, b.Dx(), b.Dy(), inputW, inputH)
	c.mu.Unlock()
	return buf, nil
}

func (c *Capturer) grab() (img image.Image, origin auto.Point, inputW, inputH int, err error) {
	if c.Region != nil {
		r := c.Region
		img, err = robotgo.CaptureImg(r.X, r.Y, r.Width, r.Height)
		origin = auto.Point{X: r.X, Y: r.Y}
		inputW, inputH = r.Width, r.Height
	} else {
		img, err = robotgo.CaptureImg()
		inputW, inputH = robotgo.GetScreenSize()
	}
	if err != nil {
		return nil, origin, 0, 0, fmt.Errorf("截屏失败: %w", err)
	}
	return img, origin, inputW, inputH, nil
}

// Scale 最近一次截图的坐标比例
func (c *Capturer) Scale() auto.CoordScale {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scale
}

// ToInput 截图坐标 -> 鼠标坐标
func (c *Capturer) ToInput(x, y int) (int, int) {
	return c.Scale().ToInput(x, y)
}
