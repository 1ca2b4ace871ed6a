package cv

import "errors"

var (
	// ErrInvalidInput 像素缓冲区格式错误或参数越界
	ErrInvalidInput = errors.New("输入无效")
	// ErrNotInitialized 尚未设置屏幕图像
	ErrNotInitialized = errors.New("屏幕图像未初始化")
)
