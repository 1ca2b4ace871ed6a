package cv

import (
	"math"

	"gocv.io/x/gocv"
)

// IsValidMatching 相关性校验
// threshold 为允许的误差百分比，越小要求的相关性越高
func IsValidMatching(maxVal float64, threshold int) bool {
	return maxVal > float64(100-threshold)/100
}

// ColorDiff 计算两张彩图前三个通道均值差异的百分比 (0-100)
func ColorDiff(img, condition gocv.Mat) float64 {
	imgMeans := img.Mean()
	conditionMeans := condition.Mean()

	diff := math.Abs(imgMeans.Val1-conditionMeans.Val1) +
		math.Abs(imgMeans.Val2-conditionMeans.Val2) +
		math.Abs(imgMeans.Val3-conditionMeans.Val3)

	return colorDiffPercent(diff)
}

// colorDiffPercent 将三个通道的绝对差之和归一化到 0-100
func colorDiffPercent(sum float64) float64 {
	return sum * 100 / (255 * 3)
}

// IsValidColor 颜色校验，差异严格小于 threshold 才通过
func IsValidColor(diff float64, threshold int) bool {
	return diff < float64(threshold)
}
