package cv

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/zoeyai/zoeydetect/pkg/vision/bitmap"
)

// Screen 当前屏幕帧
// 持有全分辨率彩图、缩小后的灰度图和当前缩放比例，每次新帧整体替换
type Screen struct {
	quality    float64
	scaleRatio float64

	fullSizeColor gocv.Mat
	scaledGray    gocv.Mat
	hasFrame      bool
}

// NewScreen 创建屏幕状态
func NewScreen(quality float64) *Screen {
	return &Screen{
		quality:    quality,
		scaleRatio: 1,
	}
}

// SetQuality 设置检测质量，已有帧时重新计算缩放比例和灰度图
func (s *Screen) SetQuality(quality float64) error {
	if quality < MinDetectionQuality || quality > MaxDetectionQuality {
		return fmt.Errorf("%w: 检测质量 %.0f 超出范围 [%.0f, %.0f]",
			ErrInvalidInput, quality, MinDetectionQuality, MaxDetectionQuality)
	}

	s.quality = quality
	if s.hasFrame {
		s.rescale()
	}
	return nil
}

// SetFrame 替换当前屏幕帧
func (s *Screen) SetFrame(buf bitmap.Buffer) error {
	color, err := ColorMatFromBuffer(buf)
	if err != nil {
		return err
	}

	s.closeMats()
	s.fullSizeColor = color
	s.scaleRatio, s.scaledGray = s.scaledGrayOf(color)
	s.hasFrame = true
	return nil
}

// rescale 重新计算缩放比例并替换缩小后的灰度图
func (s *Screen) rescale() {
	ratio, scaled := s.scaledGrayOf(s.fullSizeColor)
	s.scaledGray.Close()
	s.scaleRatio, s.scaledGray = ratio, scaled
}

func (s *Screen) scaledGrayOf(color gocv.Mat) (float64, gocv.Mat) {
	ratio := ComputeScaleRatio(color.Cols(), color.Rows(), s.quality)
	return ratio, ScaleAndChangeToGray(color, ratio)
}

// Initialized 是否已有可用于检测的灰度图
func (s *Screen) Initialized() bool {
	return s.hasFrame && !s.scaledGray.Empty()
}

// ScaleRatio 当前缩放比例
func (s *Screen) ScaleRatio() float64 {
	return s.scaleRatio
}

// Quality 当前检测质量
func (s *Screen) Quality() float64 {
	return s.quality
}

// Size 全分辨率尺寸 (width, height)
func (s *Screen) Size() (int, int) {
	if !s.hasFrame {
		return 0, 0
	}
	return GetResolution(s.fullSizeColor)
}

// ScaledSize 缩放后灰度图尺寸 (width, height)
func (s *Screen) ScaledSize() (int, int) {
	if !s.hasFrame {
		return 0, 0
	}
	return GetResolution(s.scaledGray)
}

// FullSizeColor 全分辨率彩图，下一帧到来后失效
func (s *Screen) FullSizeColor() gocv.Mat {
	return s.fullSizeColor
}

// ScaledGray 缩小后的灰度图，下一帧到来后失效
func (s *Screen) ScaledGray() gocv.Mat {
	return s.scaledGray
}

func (s *Screen) closeMats() {
	if !s.hasFrame {
		return
	}
	s.fullSizeColor.Close()
	s.scaledGray.Close()
	s.hasFrame = false
}

// Close 释放资源
func (s *Screen) Close() {
	s.closeMats()
}
