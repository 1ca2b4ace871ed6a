// Package vision 提供基于文件的一次性条件图像检测
//
// 基本用法:
//
//	result, err := vision.Find("screen.png", "button.png", vision.WithThreshold(10))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result.IsDetected {
//	    fmt.Printf("找到位置: (%d, %d)\n", result.CenterX, result.CenterY)
//	}
//
// 需要对同一屏幕多次检测时直接使用 cv.Detector，避免重复缩放。
package vision

import (
	"github.com/zoeyai/zoeydetect/pkg/vision/bitmap"
	"github.com/zoeyai/zoeydetect/pkg/vision/cv"
)

// Find 在截图文件中检测条件图像文件
func Find(screenPath, templatePath string, opts ...Option) (cv.DetectionResult, error) {
	frame, err := bitmap.Load(screenPath)
	if err != nil {
		return cv.DetectionResult{}, err
	}
	condition, err := bitmap.Load(templatePath)
	if err != nil {
		return cv.DetectionResult{}, err
	}
	return FindBuffer(frame, condition, opts...)
}

// FindBuffer 在屏幕缓冲区中检测条件图像
func FindBuffer(frame, condition bitmap.Buffer, opts ...Option) (cv.DetectionResult, error) {
	cfg := applyOptions(opts...)

	det := cv.NewDetector(cv.WithLogger(cfg.logger))
	defer det.Close()

	if err := det.Configure(cfg.quality); err != nil {
		return cv.DetectionResult{}, err
	}
	if err := det.SetScreen(frame); err != nil {
		return cv.DetectionResult{}, err
	}

	if cfg.region != nil {
		return det.DetectIn(condition, *cfg.region, cfg.threshold)
	}
	return det.Detect(condition, cfg.threshold)
}
