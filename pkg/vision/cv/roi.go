package cv

import (
	"image"
	"math"
)

// ComputeScaleRatio 根据检测质量计算缩放比例
// 较长边超过 quality 时按比例缩小，否则保持原尺寸
func ComputeScaleRatio(width, height int, quality float64) float64 {
	longest := max(width, height)
	if longest <= 0 || float64(longest) <= quality {
		return 1
	}
	return quality / float64(longest)
}

// ScaledSize 计算缩放后的尺寸，每个方向至少 1 像素
func ScaledSize(width, height int, ratio float64) image.Point {
	return image.Point{
		X: max(int(math.Round(float64(width)*ratio)), 1),
		Y: max(int(math.Round(float64(height)*ratio)), 1),
	}
}

// ScaledRoi 将全分辨率矩形转换到缩放坐标
// 起点向下取整、尺寸向上取整
func ScaledRoi(roi image.Rectangle, ratio float64) image.Rectangle {
	x := int(math.Floor(float64(roi.Min.X) * ratio))
	y := int(math.Floor(float64(roi.Min.Y) * ratio))
	w := int(math.Ceil(float64(roi.Dx()) * ratio))
	h := int(math.Ceil(float64(roi.Dy()) * ratio))
	return image.Rect(x, y, x+w, y+h)
}

// FullSizePoint 将缩放坐标中的点映射回全分辨率坐标（相对 origin）
// 与 cvRound 一致，使用四舍六入五成双
func FullSizePoint(p image.Point, ratio float64, origin image.Point) image.Point {
	return image.Point{
		X: origin.X + int(math.RoundToEven(float64(p.X)/ratio)),
		Y: origin.Y + int(math.RoundToEven(float64(p.Y)/ratio)),
	}
}

// IsRoiOutOfBounds 判断矩形是否超出 width x height 的图像
func IsRoiOutOfBounds(roi image.Rectangle, width, height int) bool {
	return roi.Min.X < 0 || roi.Dx() < 0 || roi.Max.X > width ||
		roi.Min.Y < 0 || roi.Dy() < 0 || roi.Max.Y > height
}

// rectAt 以 topLeft 为左上角构造 w x h 的矩形
func rectAt(topLeft image.Point, w, h int) image.Rectangle {
	return image.Rect(topLeft.X, topLeft.Y, topLeft.X+w, topLeft.Y+h)
}

// rectCenter 返回矩形中心（整数除法）
func rectCenter(r image.Rectangle) image.Point {
	return image.Point{
		X: r.Min.X + r.Dx()/2,
		Y: r.Min.Y + r.Dy()/2,
	}
}
