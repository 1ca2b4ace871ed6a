// Package auto 把检测器接入截图和鼠标操作
//
// 截图由 screen 子包提供，点击由 input 子包提供；本包只依赖 FrameSource 和
// Clicker 两个接口，轮询等待条件图像出现后返回或点击其中心。
package auto

import "math"

// ScaleInt 缩放整数值
func ScaleInt(value int, factor float64) int {
	if factor <= 0 {
		return value
	}
	return int(math.Round(float64(value) * factor))
}
