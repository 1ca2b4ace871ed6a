package auto

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zoeyai/zoeydetect/pkg/vision/bitmap"
	"github.com/zoeyai/zoeydetect/pkg/vision/cv"
)

// ErrTimeout 超时仍未检测到条件图像
var ErrTimeout = errors.New("等待条件图像超时")

// FrameSource 屏幕帧来源
type FrameSource interface {
	Capture() (bitmap.Buffer, error)
}

// Clicker 在截图坐标上执行点击
type Clicker interface {
	Click(x, y int, o *Options) error
}

// DetectOnce 截取一帧并检测一次
func DetectOnce(det *cv.Detector, src FrameSource, condition bitmap.Buffer, o *Options) (cv.DetectionResult, error) {
	frame, err := src.Capture()
	if err != nil {
		return cv.DetectionResult{}, fmt.Errorf("截屏失败: %w", err)
	}
	if err := det.SetScreen(frame); err != nil {
		return cv.DetectionResult{}, err
	}
	if o.Region != nil {
		return det.DetectIn(condition, o.Region.Rect(), o.Threshold)
	}
	return det.Detect(condition, o.Threshold)
}

// WaitForCondition 轮询截图直到检测到条件图像
//
// 超时返回 ErrTimeout；ctx 取消时返回 ctx.Err()。检测器的错误（输入无效等）立即返回。
func WaitForCondition(ctx context.Context, det *cv.Detector, src FrameSource, condition bitmap.Buffer, opts ...Option) (cv.DetectionResult, error) {
	o := ApplyOptions(opts...)
	return waitForCondition(ctx, det, src, condition, o)
}

func waitForCondition(ctx context.Context, det *cv.Detector, src FrameSource, condition bitmap.Buffer, o *Options) (cv.DetectionResult, error) {
	startTime := time.Now()
	for {
		result, err := DetectOnce(det, src, condition, o)
		if err != nil {
			return result, err
		}
		if result.IsDetected {
			return result, nil
		}

		if o.Timeout == 0 || time.Since(startTime) > o.Timeout {
			return result, fmt.Errorf("%w (%v)", ErrTimeout, o.Timeout)
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(o.PollInterval):
		}
	}
}

// ClickCondition 等待条件图像出现并点击其中心
func ClickCondition(ctx context.Context, det *cv.Detector, src FrameSource, clicker Clicker, condition bitmap.Buffer, opts ...Option) (cv.DetectionResult, error) {
	o := ApplyOptions(opts...)

	result, err := waitForCondition(ctx, det, src, condition, o)
	if err != nil {
		return result, err
	}

	x, y := result.CenterX+o.ClickOffset.X, result.CenterY+o.ClickOffset.Y
	if err := clicker.Click(x, y, o); err != nil {
		return result, fmt.Errorf("点击 (%d, %d) 失败: %w", x, y, err)
	}
	return result, nil
}

// ConditionExists 只检测一次，忽略错误
func ConditionExists(det *cv.Detector, src FrameSource, condition bitmap.Buffer, opts ...Option) bool {
	o := ApplyOptions(opts...)
	o.Timeout = 0
	result, err := DetectOnce(det, src, condition, o)
	return err == nil && result.IsDetected
}
