package cv

import (
	"fmt"
	"image"
)

// 检测质量范围（目标最大边长，像素）
const (
	MinDetectionQuality     = 400.0
	MaxDetectionQuality     = 3216.0
	DefaultDetectionQuality = 1200.0
)

// 阈值范围（百分比）
const (
	MinThreshold = 0
	MaxThreshold = 100
)

// DetectionResult 单次检测结果
// 零值即重置状态：未检测到，中心坐标为 0
type DetectionResult struct {
	// IsDetected 是否检测到条件图像
	IsDetected bool `json:"is_detected"`
	// CenterX, CenterY 匹配区域中心（全分辨率坐标）
	CenterX int `json:"center_x"`
	CenterY int `json:"center_y"`

	// MaxVal 最后一次查询的相关性最大值，MaxLoc 为其在缩放 ROI 内的位置
	MaxVal float64     `json:"max_val"`
	MaxLoc image.Point `json:"max_loc"`
	MinVal float64     `json:"min_val"`
	MinLoc image.Point `json:"min_loc"`
}

// Center 返回中心点
func (r DetectionResult) Center() image.Point {
	return image.Point{X: r.CenterX, Y: r.CenterY}
}

func (r DetectionResult) String() string {
	if !r.IsDetected {
		return fmt.Sprintf("未检测到 (max=%.4f@%v)", r.MaxVal, r.MaxLoc)
	}
	return fmt.Sprintf("检测到 (%d, %d) max=%.4f@%v", r.CenterX, r.CenterY, r.MaxVal, r.MaxLoc)
}
