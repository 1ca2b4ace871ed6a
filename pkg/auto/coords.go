package auto

// CoordMapper 把截图像素坐标映射为输入设备坐标
type CoordMapper interface {
	ToInput(x, y int) (int, int)
}

// CoordScale 截图像素与输入坐标之间的比例
//
// 高分屏 (macOS Retina、Windows 缩放) 上截图是物理像素，而鼠标使用逻辑坐标。
// Origin 是截图区域左上角的输入坐标。
type CoordScale struct {
	X      float64
	Y      float64
	Origin Point
}

// IdentityScale 不缩放
var IdentityScale = CoordScale{X: 1, Y: 1}

// NewCoordScale 根据截图尺寸和对应的输入区域尺寸计算比例
func NewCoordScale(origin Point, captureW, captureH, inputW, inputH int) CoordScale {
	s := CoordScale{X: 1, Y: 1, Origin: origin}
	if captureW > 0 && inputW > 0 {
		s.X = float64(captureW) / float64(inputW)
	}
	if captureH > 0 && inputH > 0 {
		s.Y = float64(captureH) / float64(inputH)
	}
	return s
}

// ToInput 截图坐标 -> 输入坐标
func (s CoordScale) ToInput(x, y int) (int, int) {
	return s.Origin.X + ScaleInt(x, inverse(s.X)), s.Origin.Y + ScaleInt(y, inverse(s.Y))
}

func inverse(f float64) float64 {
	if f <= 0 {
		return 1
	}
	return 1 / f
}
