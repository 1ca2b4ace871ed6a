package cv

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// MatchTemplate 计算归一化相关系数矩阵 (TM_CCOEFF_NORMED)
// 调用方保证 img 在两个方向上都不小于 templ
// 返回矩阵尺寸为 (img - templ + 1)，由调用方 Close
func MatchTemplate(img, templ gocv.Mat) gocv.Mat {
	result := gocv.NewMatWithSize(img.Rows()-templ.Rows()+1, img.Cols()-templ.Cols()+1, gocv.MatTypeCV32F)
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(img, templ, &result, gocv.TmCcoeffNormed, mask)
	return result
}

// LocateMinMax 查找矩阵中的最小值与最大值
// 多个相同最大值时返回按行扫描遇到的第一个
func LocateMinMax(result gocv.Mat) (minVal, maxVal float64, minLoc, maxLoc image.Point) {
	minV, maxV, minL, maxL := gocv.MinMaxLoc(result)
	return float64(minV), float64(maxV), minL, maxL
}

// MarkRoiAsInvalid 将 roi 区域在结果矩阵中填充为 0
// 0 不会超过任何有效阈值 ((100-threshold)/100 >= 0)
func MarkRoiAsInvalid(result *gocv.Mat, roi image.Rectangle) {
	gocv.Rectangle(result, roi, color.RGBA{0, 0, 0, 0}, -1)
}

// fitsIn 判断 templ 是否能放入 img
func fitsIn(img, templ gocv.Mat) bool {
	return img.Rows() >= templ.Rows() && img.Cols() >= templ.Cols()
}
