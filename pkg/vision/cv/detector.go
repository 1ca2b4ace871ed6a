package cv

import (
	"fmt"
	"image"
	"time"

	"gocv.io/x/gocv"

	"github.com/zoeyai/zoeydetect/internal/logger"
	"github.com/zoeyai/zoeydetect/pkg/vision/bitmap"
)

// Detector 条件图像检测器
//
// 单个 Detector 不可并发使用；不同 Detector 之间没有共享状态，可各自在独立 goroutine 中运行。
type Detector struct {
	screen *Screen
	log    *logger.Logger
	closed bool
}

// DetectorOption 检测器选项
type DetectorOption func(*Detector)

// WithLogger 设置日志记录器
func WithLogger(l *logger.Logger) DetectorOption {
	return func(d *Detector) {
		d.log = l
	}
}

// WithQuality 设置初始检测质量（不做范围校验，需要校验时使用 Configure）
func WithQuality(quality float64) DetectorOption {
	return func(d *Detector) {
		d.screen.quality = quality
	}
}

// NewDetector 创建检测器
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		screen: NewScreen(DefaultDetectionQuality),
		log:    logger.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Configure 设置检测质量（目标最大边长）
func (d *Detector) Configure(quality float64) error {
	if d.closed {
		return nil
	}
	return d.screen.SetQuality(quality)
}

// SetScreen 设置当前屏幕帧
func (d *Detector) SetScreen(frame bitmap.Buffer) error {
	if d.closed {
		return nil
	}
	if err := d.screen.SetFrame(frame); err != nil {
		return fmt.Errorf("设置屏幕图像失败: %w", err)
	}
	sw, sh := d.screen.ScaledSize()
	d.log.Debug("屏幕帧 %dx%d -> %dx%d (ratio=%.4f)", frame.Width, frame.Height, sw, sh, d.screen.ScaleRatio())
	return nil
}

// SetScreenSource 从 Source 读取并设置屏幕帧
func (d *Detector) SetScreenSource(src bitmap.Source) error {
	buf, err := src.PixelBuffer()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return d.SetScreen(buf)
}

// ScaleRatio 当前缩放比例
func (d *Detector) ScaleRatio() float64 {
	return d.screen.ScaleRatio()
}

// Screen 当前屏幕状态
func (d *Detector) Screen() *Screen {
	return d.screen
}

// Detect 在整个屏幕中检测条件图像
func (d *Detector) Detect(template bitmap.Buffer, threshold int) (DetectionResult, error) {
	if d.closed {
		return DetectionResult{}, nil
	}
	w, h := d.screen.Size()
	return d.DetectIn(template, image.Rect(0, 0, w, h), threshold)
}

// DetectAt 在 (x, y, width, height) 区域中检测条件图像
func (d *Detector) DetectAt(template bitmap.Buffer, x, y, width, height, threshold int) (DetectionResult, error) {
	// 不使用 image.Rect，负的宽高保留为越界
	roi := image.Rectangle{Min: image.Pt(x, y), Max: image.Pt(x+width, y+height)}
	return d.DetectIn(template, roi, threshold)
}

// DetectIn 在全分辨率区域 roi 中检测条件图像
//
// 未检测到不是错误：返回 IsDetected=false 且 err 为 nil。
// 只有屏幕未初始化 (ErrNotInitialized) 或输入无效 (ErrInvalidInput) 时返回错误。
func (d *Detector) DetectIn(template bitmap.Buffer, roi image.Rectangle, threshold int) (DetectionResult, error) {
	var result DetectionResult
	if d.closed {
		return result, nil
	}

	if !d.screen.Initialized() {
		return result, ErrNotInitialized
	}
	if threshold < MinThreshold || threshold > MaxThreshold {
		return result, fmt.Errorf("%w: 阈值 %d 超出范围 [%d, %d]", ErrInvalidInput, threshold, MinThreshold, MaxThreshold)
	}

	// 格式错误优先于区域检查，不被越界的区域掩盖
	if err := template.Validate(); err != nil {
		return result, fmt.Errorf("读取条件图像失败: %w: %w", ErrInvalidInput, err)
	}

	startTime := time.Now()

	// 区域不在屏幕内，不可能匹配
	fullW, fullH := d.screen.Size()
	if IsRoiOutOfBounds(roi, fullW, fullH) {
		if d.log.Enabled(logger.DEBUG) {
			d.log.Debug("检测区域 %v 超出屏幕 %dx%d", roi, fullW, fullH)
		}
		return result, nil
	}

	fullSizeColorCondition, err := ColorMatFromBuffer(template)
	if err != nil {
		return result, fmt.Errorf("读取条件图像失败: %w", err)
	}
	defer fullSizeColorCondition.Close()

	ratio := d.screen.ScaleRatio()
	scaledGrayCondition := ScaleAndChangeToGray(fullSizeColorCondition, ratio)
	defer scaledGrayCondition.Close()

	// ceil 可能比 round 得到的灰度图多出一个像素，裁剪到图像内
	scaledGray := d.screen.ScaledGray()
	scaledRoi := ScaledRoi(roi, ratio).Intersect(MatBounds(scaledGray))
	if scaledRoi.Empty() {
		return result, nil
	}
	croppedGray := scaledGray.Region(scaledRoi)
	defer croppedGray.Close()

	if !fitsIn(croppedGray, scaledGrayCondition) {
		d.log.Debug("条件图像 %dx%d 大于检测区域 %dx%d",
			scaledGrayCondition.Cols(), scaledGrayCondition.Rows(), croppedGray.Cols(), croppedGray.Rows())
		return result, nil
	}

	matchingResults := MatchTemplate(croppedGray, scaledGrayCondition)
	defer matchingResults.Close()

	s := &candidateSearch{
		results:         &matchingResults,
		scaledCropped:   MatBounds(croppedGray),
		fullSizeScreen:  d.screen.FullSizeColor(),
		fullSizeRoi:     roi,
		ratio:           ratio,
		threshold:       threshold,
		scaledCondition: image.Pt(scaledGrayCondition.Cols(), scaledGrayCondition.Rows()),
		fullCondition:   fullSizeColorCondition,
		log:             d.log,
	}
	result = s.run()

	if d.log.Enabled(logger.DEBUG) {
		elapsed := float64(time.Since(startTime).Microseconds()) / 1000
		d.log.Debug("DET  | %s | %6.1fms | %d 次候选 | %s", okString(result.IsDetected), elapsed, s.iterations, result)
	}
	return result, nil
}

// Close 释放资源，之后所有调用都不再生效
func (d *Detector) Close() {
	if d.closed {
		return
	}
	d.closed = true
	d.screen.Close()
}

// candidateSearch 一次检测中的候选搜索状态
// results 只属于本次搜索，被逐步屏蔽
type candidateSearch struct {
	results         *gocv.Mat
	scaledCropped   image.Rectangle
	fullSizeScreen  gocv.Mat
	fullSizeRoi     image.Rectangle
	ratio           float64
	threshold       int
	scaledCondition image.Point
	fullCondition   gocv.Mat
	log             *logger.Logger

	iterations int
}

// run 反复取最大值直到找到通过校验的候选或最大值低于阈值
func (s *candidateSearch) run() DetectionResult {
	var result DetectionResult

	// 每次迭代至少屏蔽 maxLoc 所在的单元，迭代次数不超过矩阵元素数
	limit := s.results.Rows() * s.results.Cols()
	for s.iterations < limit {
		s.iterations++

		result.MinVal, result.MaxVal, result.MinLoc, result.MaxLoc = LocateMinMax(*s.results)
		if !IsValidMatching(result.MaxVal, s.threshold) {
			break
		}

		scaledMatchingRoi := rectAt(result.MaxLoc, s.scaledCondition.X, s.scaledCondition.Y)
		fullSizeMatchingRoi := rectAt(
			FullSizePoint(result.MaxLoc, s.ratio, s.fullSizeRoi.Min),
			s.fullCondition.Cols(), s.fullCondition.Rows(),
		)

		screenW, screenH := GetResolution(s.fullSizeScreen)
		if IsRoiOutOfBounds(scaledMatchingRoi, s.scaledCropped.Dx(), s.scaledCropped.Dy()) ||
			IsRoiOutOfBounds(fullSizeMatchingRoi, screenW, screenH) {
			if s.log.Enabled(logger.DEBUG) {
				s.log.Debug("候选 %v 越界，屏蔽", fullSizeMatchingRoi)
			}
			MarkRoiAsInvalid(s.results, scaledMatchingRoi)
			continue
		}

		crop := s.fullSizeScreen.Region(fullSizeMatchingRoi)
		colorDiff := ColorDiff(crop, s.fullCondition)
		crop.Close()

		if IsValidColor(colorDiff, s.threshold) {
			center := rectCenter(fullSizeMatchingRoi)
			result.IsDetected = true
			result.CenterX, result.CenterY = center.X, center.Y
			return result
		}

		if s.log.Enabled(logger.DEBUG) {
			s.log.Debug("候选 %v 颜色差异 %.2f >= %d，屏蔽", fullSizeMatchingRoi, colorDiff, s.threshold)
		}
		MarkRoiAsInvalid(s.results, scaledMatchingRoi)
	}

	return result
}

func okString(ok bool) string {
	if ok {
		return "OK"
	}
	return "NG"
}
