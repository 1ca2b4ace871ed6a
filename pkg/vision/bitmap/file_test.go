package bitmap

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func opaqueImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 20), B: uint8(x + y), A: 255})
		}
	}
	return img
}

func TestSaveAndLoad(t *testing.T) {
	src := opaqueImage(12, 7)
	buf, err := FromImage(src)
	if err != nil {
		t.Fatalf("转换失败: %v", err)
	}

	// 只测试无损格式
	for _, ext := range []string{".png", ".bmp"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "condition"+ext)
			if err := Save(path, buf); err != nil {
				t.Fatalf("保存失败: %v", err)
			}

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("读取失败: %v", err)
			}
			if loaded.Width != 12 || loaded.Height != 7 {
				t.Fatalf("尺寸应为 12x7, 实际 %dx%d", loaded.Width, loaded.Height)
			}
			got, _ := loaded.Image()
			for y := 0; y < 7; y++ {
				for x := 0; x < 12; x++ {
					if got.RGBAAt(x, y) != src.RGBAAt(x, y) {
						t.Fatalf("像素 (%d, %d) 不一致: %v != %v", x, y, got.RGBAAt(x, y), src.RGBAAt(x, y))
					}
				}
			}
		})
	}
}

func TestLoadGrayFile(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i * 16)
	}
	path := filepath.Join(t.TempDir(), "gray.png")
	if err := imaging.Save(gray, path); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	buf, err := Load(path)
	if err != nil {
		t.Fatalf("灰度文件应展开为彩色: %v", err)
	}
	img, _ := buf.Image()
	if c := img.RGBAAt(1, 0); c.R != 16 || c.G != 16 || c.B != 16 {
		t.Errorf("像素值不正确: %v", c)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("文件不存在应返回错误")
	}
}

func TestCrop(t *testing.T) {
	src := opaqueImage(20, 10)
	buf, _ := FromImage(src)

	crop, err := Crop(buf, image.Rect(5, 2, 15, 12))
	if err != nil {
		t.Fatalf("裁剪失败: %v", err)
	}
	if crop.Width != 10 || crop.Height != 8 {
		t.Errorf("裁剪应被限制在图像内, 实际 %dx%d", crop.Width, crop.Height)
	}
	img, _ := crop.Image()
	if img.RGBAAt(0, 0) != src.RGBAAt(5, 2) {
		t.Errorf("裁剪起点不正确")
	}

	if _, err := Crop(buf, image.Rect(30, 30, 40, 40)); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("空区域应返回 ErrUnsupportedFormat, 实际 %v", err)
	}
}
