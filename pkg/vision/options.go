package vision

import (
	"image"

	"github.com/zoeyai/zoeydetect/internal/logger"
	"github.com/zoeyai/zoeydetect/pkg/vision/cv"
)

// Option 配置选项函数类型
type Option func(*findConfig)

// findConfig 一次检测的配置
type findConfig struct {
	threshold int
	quality   float64
	region    *image.Rectangle
	logger    *logger.Logger
}

func applyOptions(opts ...Option) *findConfig {
	cfg := &findConfig{
		threshold: 10,
		quality:   cv.DefaultDetectionQuality,
		logger:    logger.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithThreshold 设置允许的误差百分比 (0-100)
func WithThreshold(threshold int) Option {
	return func(c *findConfig) {
		c.threshold = threshold
	}
}

// WithQuality 设置检测质量
func WithQuality(quality float64) Option {
	return func(c *findConfig) {
		c.quality = quality
	}
}

// WithRegion 只在全尺寸区域 r 内检测
func WithRegion(r image.Rectangle) Option {
	return func(c *findConfig) {
		c.region = &r
	}
}

// WithLogger 设置日志记录器
func WithLogger(l *logger.Logger) Option {
	return func(c *findConfig) {
		c.logger = l
	}
}
