package auto

import (
	"image"
	"time"
)

// DefaultPollInterval 默认轮询间隔
const DefaultPollInterval = 200 * time.Millisecond

// Option 配置选项函数类型
type Option func(*Options)

// Options 等待与点击配置
type Options struct {
	// Timeout 等待超时，0 表示只检测一次
	Timeout time.Duration
	// Threshold 允许的误差百分比 (0-100)
	Threshold int
	// PollInterval 两次截图之间的间隔
	PollInterval time.Duration
	// ClickOffset 点击偏移量
	ClickOffset Point
	// DoubleClick 是否双击
	DoubleClick bool
	// RightClick 是否右键点击
	RightClick bool
	// Region 检测区域，坐标相对于截图 (nil 表示全图)
	Region *Region
}

// Point 表示二维坐标点
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Region 表示矩形区域
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect 转换为 image.Rectangle，负的宽高保留为越界
func (r Region) Rect() image.Rectangle {
	return image.Rectangle{
		Min: image.Pt(r.X, r.Y),
		Max: image.Pt(r.X+r.Width, r.Y+r.Height),
	}
}

// DefaultOptions 默认配置
func DefaultOptions() *Options {
	return &Options{
		Timeout:      3 * time.Second,
		Threshold:    10,
		PollInterval: DefaultPollInterval,
	}
}

// ApplyOptions 应用配置选项
func ApplyOptions(opts ...Option) *Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	return o
}

// WithTimeout 设置超时时间
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithThreshold 设置误差阈值
func WithThreshold(t int) Option {
	return func(o *Options) {
		o.Threshold = t
	}
}

// WithPollInterval 设置轮询间隔
func WithPollInterval(d time.Duration) Option {
	return func(o *Options) {
		o.PollInterval = d
	}
}

// WithClickOffset 设置点击偏移量
func WithClickOffset(x, y int) Option {
	return func(o *Options) {
		o.ClickOffset = Point{X: x, Y: y}
	}
}

// WithDoubleClick 设置双击
func WithDoubleClick() Option {
	return func(o *Options) {
		o.DoubleClick = true
	}
}

// WithRightClick 设置右键点击
func WithRightClick() Option {
	return func(o *Options) {
		o.RightClick = true
	}
}

// WithRegion 设置检测区域
func WithRegion(x, y, width, height int) Option {
	return func(o *Options) {
		o.Region = &Region{X: x, Y: y, Width: width, Height: height}
	}
}
