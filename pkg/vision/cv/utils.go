package cv

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/zoeyai/zoeydetect/pkg/vision/bitmap"
)

// ColorMatFromBuffer 将 RGBA_8888 像素缓冲区复制为 CV_8UC4 的 Mat
func ColorMatFromBuffer(buf bitmap.Buffer) (gocv.Mat, error) {
	if err := buf.Validate(); err != nil {
		return gocv.Mat{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	mat, err := gocv.NewMatFromBytes(buf.Height, buf.Width, gocv.MatTypeCV8UC4, buf.Packed())
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("%w: 创建 Mat 失败: %w", ErrInvalidInput, err)
	}
	defer mat.Close()

	// NewMatFromBytes 引用 Go 内存，复制一份由 Mat 自己持有
	return mat.Clone(), nil
}

// ToGray 转换为灰度图
func ToGray(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	switch src.Channels() {
	case 1:
		src.CopyTo(&dst)
	case 3:
		gocv.CvtColor(src, &dst, gocv.ColorRGBToGray)
	default:
		gocv.CvtColor(src, &dst, gocv.ColorRGBAToGray)
	}
	return dst
}

// ScaleMat 按比例缩小图像，使用区域插值降低混叠
// ratio 为 1 时直接复制
func ScaleMat(src gocv.Mat, ratio float64) gocv.Mat {
	if ratio == 1 {
		return src.Clone()
	}
	dst := gocv.NewMat()
	gocv.Resize(src, &dst, ScaledSize(src.Cols(), src.Rows(), ratio), 0, 0, gocv.InterpolationArea)
	return dst
}

// ScaleAndChangeToGray 转为灰度后按比例缩放
func ScaleAndChangeToGray(color gocv.Mat, ratio float64) gocv.Mat {
	gray := ToGray(color)
	defer gray.Close()
	return ScaleMat(gray, ratio)
}

// GetResolution 获取图像分辨率 (width, height)
func GetResolution(img gocv.Mat) (int, int) {
	return img.Cols(), img.Rows()
}

// MatBounds 返回图像的矩形范围
func MatBounds(img gocv.Mat) image.Rectangle {
	return image.Rect(0, 0, img.Cols(), img.Rows())
}
