// Package bitmap 描述外部提供的像素缓冲区
//
// 截图层或模板存储层只需要把图像暴露成 Buffer，检测核心不关心图像来源。
package bitmap

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// ErrUnsupportedFormat 像素格式不是四通道彩色
var ErrUnsupportedFormat = errors.New("不支持的像素格式")

// Format 像素格式标签
type Format int

const (
	FormatUnknown  Format = iota
	FormatRGBA8888        // 每像素 4 字节 R, G, B, A
	FormatRGB565
	FormatAlpha8
)

func (f Format) String() string {
	switch f {
	case FormatRGBA8888:
		return "RGBA_8888"
	case FormatRGB565:
		return "RGB_565"
	case FormatAlpha8:
		return "ALPHA_8"
	default:
		return "UNKNOWN"
	}
}

// Buffer 可读的像素缓冲区
type Buffer struct {
	Width  int
	Height int
	// Stride 每行字节数，0 表示紧密排列
	Stride int
	Format Format
	Pix    []byte
}

// Source 能提供像素缓冲区的平台图像句柄
type Source interface {
	PixelBuffer() (Buffer, error)
}

// RowBytes 返回有效的行字节数
func (b Buffer) RowBytes() int {
	if b.Stride > 0 {
		return b.Stride
	}
	return b.Width * 4
}

// Validate 检查缓冲区是否为可寻址的 RGBA_8888 图像
func (b Buffer) Validate() error {
	if b.Format != FormatRGBA8888 {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, b.Format)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: 尺寸无效 %dx%d", ErrUnsupportedFormat, b.Width, b.Height)
	}
	stride := b.RowBytes()
	if stride < b.Width*4 {
		return fmt.Errorf("%w: 行字节数 %d 小于 %d", ErrUnsupportedFormat, stride, b.Width*4)
	}
	if len(b.Pix) < stride*(b.Height-1)+b.Width*4 {
		return fmt.Errorf("%w: 缓冲区长度 %d 不足", ErrUnsupportedFormat, len(b.Pix))
	}
	return nil
}

// Packed 返回去掉行填充后的紧密像素数据
func (b Buffer) Packed() []byte {
	rowLen := b.Width * 4
	stride := b.RowBytes()
	if stride == rowLen && len(b.Pix) == rowLen*b.Height {
		return b.Pix
	}
	out := make([]byte, rowLen*b.Height)
	for y := 0; y < b.Height; y++ {
		copy(out[y*rowLen:(y+1)*rowLen], b.Pix[y*stride:y*stride+rowLen])
	}
	return out
}

// Image 把缓冲区包装成 *image.RGBA（共享像素数据）
func (b Buffer) Image() (*image.RGBA, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &image.RGBA{
		Pix:    b.Pix,
		Stride: b.RowBytes(),
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}, nil
}

// FromImage 将 image.Image 转换为 RGBA_8888 缓冲区
// 灰度和单通道图像没有颜色信息，返回 ErrUnsupportedFormat
func FromImage(img image.Image) (Buffer, error) {
	if img == nil {
		return Buffer{}, fmt.Errorf("%w: 图像为空", ErrUnsupportedFormat)
	}

	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model, color.AlphaModel, color.Alpha16Model:
		return Buffer{}, fmt.Errorf("%w: 颜色模型不是四通道", ErrUnsupportedFormat)
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return Buffer{}, fmt.Errorf("%w: 图像尺寸为 0", ErrUnsupportedFormat)
	}

	var rgba *image.RGBA
	switch v := img.(type) {
	case *image.RGBA:
		rgba = v
	default:
		// NRGBA、YCbCr、Paletted 等统一绘制到 RGBA
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	// 子图的 Pix 从 Rect.Min 开始偏移
	offset := rgba.PixOffset(rgba.Rect.Min.X, rgba.Rect.Min.Y)
	return Buffer{
		Width:  rgba.Rect.Dx(),
		Height: rgba.Rect.Dy(),
		Stride: rgba.Stride,
		Format: FormatRGBA8888,
		Pix:    rgba.Pix[offset:],
	}, nil
}

// ImageSource 将 image.Image 适配为 Source
type ImageSource struct {
	Img image.Image
}

// PixelBuffer 实现 Source
func (s ImageSource) PixelBuffer() (Buffer, error) {
	return FromImage(s.Img)
}
