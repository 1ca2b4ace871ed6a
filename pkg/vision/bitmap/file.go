package bitmap

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Load 读取图像文件（png/jpeg/gif/bmp/tiff/webp）
//
// 文件中的灰度图会先展开为彩色，EXIF 方向会被校正。
func Load(path string) (Buffer, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return Buffer{}, fmt.Errorf("读取图像 %s 失败: %w", path, err)
	}
	return FromImage(imaging.Clone(img))
}

// Save 按扩展名编码保存缓冲区
func Save(path string, b Buffer) error {
	img, err := b.Image()
	if err != nil {
		return err
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("保存图像 %s 失败: %w", path, err)
	}
	return nil
}

// Crop 复制缓冲区中的 r 区域，r 会被裁剪到图像范围内
func Crop(b Buffer, r image.Rectangle) (Buffer, error) {
	img, err := b.Image()
	if err != nil {
		return Buffer{}, err
	}
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return Buffer{}, fmt.Errorf("%w: 裁剪区域为空", ErrUnsupportedFormat)
	}
	return FromImage(imaging.Crop(img, r))
}
