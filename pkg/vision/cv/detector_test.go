package cv

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"testing"

	"github.com/zoeyai/zoeydetect/internal/logger"
	"github.com/zoeyai/zoeydetect/pkg/vision/bitmap"
)

// texturedImage 生成随机彩色块纹理，block 为色块边长
func texturedImage(w, h, block int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for by := 0; by < h; by += block {
		for bx := 0; bx < w; bx += block {
			c := color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			}
			draw.Draw(img, image.Rect(bx, by, bx+block, by+block), image.NewUniform(c), image.Point{}, draw.Src)
		}
	}
	return img
}

// grayPattern 生成 R=G=B 的随机灰度图案，取值 [base, base+spread)
func grayPattern(w, h int, base, spread int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(base + rng.Intn(spread))
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// shiftGray 将灰度图案整体平移 delta
func shiftGray(src *image.RGBA, delta int) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	for i := 0; i < len(src.Pix); i += 4 {
		v := uint8(int(src.Pix[i]) + delta)
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = v, v, v, 255
	}
	return dst
}

func paste(dst *image.RGBA, src image.Image, at image.Point) {
	r := image.Rectangle{Min: at, Max: at.Add(src.Bounds().Size())}
	draw.Draw(dst, r, src, src.Bounds().Min, draw.Src)
}

func mustBuffer(t *testing.T, img image.Image) bitmap.Buffer {
	t.Helper()
	buf, err := bitmap.FromImage(img)
	if err != nil {
		t.Fatalf("转换图像失败: %v", err)
	}
	return buf
}

func newTestDetector(t *testing.T, screen image.Image) *Detector {
	t.Helper()
	d := NewDetector(WithLogger(logger.NewWithWriter(nil)))
	t.Cleanup(d.Close)
	if screen != nil {
		if err := d.SetScreen(mustBuffer(t, screen)); err != nil {
			t.Fatalf("设置屏幕失败: %v", err)
		}
	}
	return d
}

func TestDetectExactPatch(t *testing.T) {
	screen := texturedImage(100, 100, 1, 1)
	template := screen.SubImage(image.Rect(20, 20, 30, 30))
	d := newTestDetector(t, screen)

	for _, threshold := range []int{90, 10} {
		result, err := d.Detect(mustBuffer(t, template), threshold)
		if err != nil {
			t.Fatalf("threshold=%d 检测失败: %v", threshold, err)
		}
		if !result.IsDetected {
			t.Fatalf("threshold=%d 应检测到: %s", threshold, result)
		}
		if result.Center() != image.Pt(25, 25) {
			t.Errorf("threshold=%d 中心应为 (25, 25), 实际 %v", threshold, result.Center())
		}
		if result.MaxLoc != image.Pt(20, 20) {
			t.Errorf("最大值位置应为 (20, 20), 实际 %v", result.MaxLoc)
		}
		t.Logf("threshold=%d: %s", threshold, result)
	}
}

// 纯色模板的相关性矩阵全为 1，所有位置得分相同，取按行扫描的第一个
func TestDetectUniformScreen(t *testing.T) {
	gray := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	screen := image.NewRGBA(image.Rect(0, 0, 100, 100))
	draw.Draw(screen, screen.Bounds(), image.NewUniform(gray), image.Point{}, draw.Src)
	template := screen.SubImage(image.Rect(20, 20, 30, 30))
	d := newTestDetector(t, screen)

	result, err := d.Detect(mustBuffer(t, template), 90)
	if err != nil {
		t.Fatalf("检测失败: %v", err)
	}
	if !result.IsDetected {
		t.Fatalf("纯色模板应检测到: %s", result)
	}
	if result.MaxLoc != image.Pt(0, 0) {
		t.Errorf("得分相同时应取第一个位置 (0, 0), 实际 %v", result.MaxLoc)
	}
	if result.Center() != image.Pt(5, 5) {
		t.Errorf("中心应为 (5, 5), 实际 %v", result.Center())
	}
}

func TestDetectPrefersMatchingColor(t *testing.T) {
	screen := texturedImage(120, 60, 3, 2)
	template := grayPattern(10, 10, 235, 20, 3)
	// 灰度图案相同（整体平移），颜色差异约 92%
	wrongColor := shiftGray(template, -235)

	paste(screen, wrongColor, image.Pt(10, 10))
	paste(screen, template, image.Pt(70, 30))

	d := newTestDetector(t, screen)
	result, err := d.Detect(mustBuffer(t, template), 90)
	if err != nil {
		t.Fatalf("检测失败: %v", err)
	}
	if !result.IsDetected {
		t.Fatalf("应检测到颜色匹配的位置: %s", result)
	}
	if result.Center() != image.Pt(75, 35) {
		t.Errorf("中心应为 (75, 35), 实际 %v", result.Center())
	}
}

func TestDetectExhaustsWhenOnlyWrongColor(t *testing.T) {
	screen := texturedImage(120, 60, 3, 4)
	template := grayPattern(10, 10, 235, 20, 5)
	paste(screen, shiftGray(template, -235), image.Pt(40, 20))

	d := newTestDetector(t, screen)
	result, err := d.Detect(mustBuffer(t, template), 5)
	if err != nil {
		t.Fatalf("检测失败: %v", err)
	}
	if result.IsDetected {
		t.Fatalf("颜色不匹配时不应检测到: %s", result)
	}
	if result.CenterX != 0 || result.CenterY != 0 {
		t.Errorf("未检测到时中心应为 0, 实际 %v", result.Center())
	}
	if result.MaxVal > 0.95 {
		t.Errorf("结束时最大值应低于阈值, 实际 %.4f", result.MaxVal)
	}
}

func TestDetectTemplateLargerThanRoi(t *testing.T) {
	screen := texturedImage(100, 100, 2, 6)
	template := screen.SubImage(image.Rect(40, 40, 60, 60))
	d := newTestDetector(t, screen)

	result, err := d.DetectIn(mustBuffer(t, template), image.Rect(0, 0, 10, 10), 50)
	if err != nil {
		t.Fatalf("模板大于区域不应报错: %v", err)
	}
	if result.IsDetected {
		t.Error("模板大于区域时不应检测到")
	}
}

func TestDetectBeforeSetScreen(t *testing.T) {
	d := newTestDetector(t, nil)
	template := texturedImage(10, 10, 1, 7)

	_, err := d.Detect(mustBuffer(t, template), 10)
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("应返回 ErrNotInitialized, 实际 %v", err)
	}
}

func TestDetectRoiOutOfBounds(t *testing.T) {
	screen := texturedImage(100, 100, 1, 8)
	template := screen.SubImage(image.Rect(0, 0, 10, 10))
	d := newTestDetector(t, screen)

	rois := []image.Rectangle{
		image.Rect(200, 200, 210, 210),
		image.Rect(-5, 0, 50, 50),
		image.Rect(50, 50, 101, 100),
	}
	for _, roi := range rois {
		result, err := d.DetectIn(mustBuffer(t, template), roi, 50)
		if err != nil {
			t.Errorf("roi=%v 不应报错: %v", roi, err)
		}
		if result != (DetectionResult{}) {
			t.Errorf("roi=%v 应返回空结果, 实际 %+v", roi, result)
		}
	}

	result, err := d.DetectAt(mustBuffer(t, template), 10, 10, -5, 20, 50)
	if err != nil || result.IsDetected {
		t.Errorf("负宽度区域应为未检测到, 实际 %+v, %v", result, err)
	}
}

func TestDetectInRegion(t *testing.T) {
	screen := texturedImage(200, 100, 1, 9)
	template := screen.SubImage(image.Rect(150, 50, 160, 60))
	d := newTestDetector(t, screen)
	buf := mustBuffer(t, template)

	result, err := d.DetectIn(buf, image.Rect(100, 0, 200, 100), 10)
	if err != nil {
		t.Fatalf("检测失败: %v", err)
	}
	if !result.IsDetected || result.Center() != image.Pt(155, 55) {
		t.Errorf("区域内应检测到 (155, 55), 实际 %s", result)
	}
	// MaxLoc 相对于区域左上角
	if result.MaxLoc != image.Pt(50, 50) {
		t.Errorf("MaxLoc 应为 (50, 50), 实际 %v", result.MaxLoc)
	}

	result, err = d.DetectAt(buf, 0, 0, 100, 100, 10)
	if err != nil {
		t.Fatalf("检测失败: %v", err)
	}
	if result.IsDetected {
		t.Errorf("区域外的目标不应被检测到: %s", result)
	}
}

func TestDetectDownscaled(t *testing.T) {
	screen := texturedImage(800, 600, 4, 10)
	template := screen.SubImage(image.Rect(200, 100, 240, 140))
	d := newTestDetector(t, screen)

	if err := d.Configure(400); err != nil {
		t.Fatalf("设置检测质量失败: %v", err)
	}
	if d.ScaleRatio() != 0.5 {
		t.Fatalf("缩放比例应为 0.5, 实际 %v", d.ScaleRatio())
	}
	if w, h := d.Screen().ScaledSize(); w != 400 || h != 300 {
		t.Fatalf("缩放后尺寸应为 400x300, 实际 %dx%d", w, h)
	}

	result, err := d.Detect(mustBuffer(t, template), 10)
	if err != nil {
		t.Fatalf("检测失败: %v", err)
	}
	if !result.IsDetected {
		t.Fatalf("应检测到: %s", result)
	}
	if result.Center() != image.Pt(220, 120) {
		t.Errorf("中心应为 (220, 120), 实际 %v", result.Center())
	}
	if result.MaxLoc != image.Pt(100, 50) {
		t.Errorf("缩放坐标中的位置应为 (100, 50), 实际 %v", result.MaxLoc)
	}
}

// 缩放后取整可能使全尺寸候选越过右边界，越界候选被屏蔽后继续搜索
func TestDetectTemplateAtRightEdgeDownscaled(t *testing.T) {
	screen := texturedImage(1000, 100, 2, 19)
	d := newTestDetector(t, screen)
	if err := d.Configure(400); err != nil {
		t.Fatalf("设置检测质量失败: %v", err)
	}

	// 宽 6 的模板缩放后宽 2，最右候选 x=398 映射回 995，995+6 > 1000
	for _, x := range []int{994, 993, 990} {
		template := screen.SubImage(image.Rect(x, 40, x+6, 50))
		result, err := d.Detect(mustBuffer(t, template), 90)
		if err != nil {
			t.Fatalf("x=%d 检测失败: %v", x, err)
		}
		if !result.IsDetected {
			continue
		}
		left, right := result.CenterX-3, result.CenterX+3
		top, bottom := result.CenterY-5, result.CenterY+5
		if left < 0 || right > 1000 || top < 0 || bottom > 100 {
			t.Errorf("x=%d 检测区域超出屏幕: %s", x, result)
		}
	}
}

func TestSetScreenRecomputesRatio(t *testing.T) {
	d := newTestDetector(t, nil)
	if err := d.Configure(400); err != nil {
		t.Fatalf("设置检测质量失败: %v", err)
	}

	if err := d.SetScreen(mustBuffer(t, texturedImage(1000, 500, 5, 11))); err != nil {
		t.Fatalf("设置屏幕失败: %v", err)
	}
	if d.ScaleRatio() != 0.4 {
		t.Errorf("缩放比例应为 0.4, 实际 %v", d.ScaleRatio())
	}
	if w, h := d.Screen().ScaledSize(); w != 400 || h != 200 {
		t.Errorf("缩放后尺寸应为 400x200, 实际 %dx%d", w, h)
	}

	// 新帧尺寸变化后重新计算
	if err := d.SetScreen(mustBuffer(t, texturedImage(300, 200, 5, 12))); err != nil {
		t.Fatalf("设置屏幕失败: %v", err)
	}
	if d.ScaleRatio() != 1 {
		t.Errorf("小于检测质量时缩放比例应为 1, 实际 %v", d.ScaleRatio())
	}
	if w, h := d.Screen().Size(); w != 300 || h != 200 {
		t.Errorf("全尺寸应为 300x200, 实际 %dx%d", w, h)
	}
}

func TestDetectIdempotent(t *testing.T) {
	screen := texturedImage(120, 80, 2, 13)
	paste(screen, grayPattern(12, 12, 100, 100, 14), image.Pt(50, 30))
	template := mustBuffer(t, screen.SubImage(image.Rect(50, 30, 62, 42)))
	d := newTestDetector(t, screen)

	first, err := d.Detect(template, 20)
	if err != nil {
		t.Fatalf("检测失败: %v", err)
	}
	second, err := d.Detect(template, 20)
	if err != nil {
		t.Fatalf("检测失败: %v", err)
	}
	if first != second {
		t.Errorf("两次检测结果应相同: %+v != %+v", first, second)
	}
}

func TestInvalidInput(t *testing.T) {
	screen := texturedImage(50, 50, 1, 15)
	d := newTestDetector(t, screen)
	template := mustBuffer(t, screen.SubImage(image.Rect(0, 0, 5, 5)))

	t.Run("screen format", func(t *testing.T) {
		err := d.SetScreen(bitmap.Buffer{Width: 2, Height: 2, Format: bitmap.FormatRGB565, Pix: make([]byte, 8)})
		if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, bitmap.ErrUnsupportedFormat) {
			t.Errorf("应返回 ErrInvalidInput, 实际 %v", err)
		}
		// 失败的帧不替换当前帧
		if w, h := d.Screen().Size(); w != 50 || h != 50 {
			t.Errorf("当前帧不应被替换, 实际 %dx%d", w, h)
		}
	})

	t.Run("template format", func(t *testing.T) {
		_, err := d.Detect(bitmap.Buffer{Width: 2, Height: 2, Format: bitmap.FormatAlpha8, Pix: make([]byte, 4)}, 10)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("应返回 ErrInvalidInput, 实际 %v", err)
		}
	})

	t.Run("template format with roi out of bounds", func(t *testing.T) {
		bad := bitmap.Buffer{Width: 2, Height: 2, Format: bitmap.FormatRGB565, Pix: make([]byte, 8)}
		_, err := d.DetectIn(bad, image.Rect(100, 100, 120, 120), 10)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("格式错误应先于区域检查, 实际 %v", err)
		}
	})

	t.Run("threshold", func(t *testing.T) {
		for _, threshold := range []int{-1, 101} {
			if _, err := d.Detect(template, threshold); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("threshold=%d 应返回 ErrInvalidInput, 实际 %v", threshold, err)
			}
		}
	})

	t.Run("quality", func(t *testing.T) {
		for _, q := range []float64{100, 5000} {
			if err := d.Configure(q); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("quality=%v 应返回 ErrInvalidInput, 实际 %v", q, err)
			}
		}
	})
}

func TestDetectorClosed(t *testing.T) {
	screen := texturedImage(50, 50, 1, 16)
	template := mustBuffer(t, screen.SubImage(image.Rect(10, 10, 20, 20)))

	d := NewDetector(WithLogger(logger.NewWithWriter(nil)))
	if err := d.SetScreen(mustBuffer(t, screen)); err != nil {
		t.Fatalf("设置屏幕失败: %v", err)
	}
	d.Close()
	d.Close()

	result, err := d.Detect(template, 10)
	if err != nil || result.IsDetected {
		t.Errorf("关闭后应返回空结果, 实际 %+v, %v", result, err)
	}
	if err := d.SetScreen(mustBuffer(t, screen)); err != nil {
		t.Errorf("关闭后 SetScreen 不应报错: %v", err)
	}
}

func TestDetectWithDebugLogging(t *testing.T) {
	screen := texturedImage(120, 60, 3, 17)
	template := grayPattern(10, 10, 235, 20, 18)
	paste(screen, shiftGray(template, -235), image.Pt(5, 5))
	paste(screen, template, image.Pt(100, 40))

	l := logger.NewWithWriter(nil)
	l.SetLevel(logger.DEBUG)
	d := NewDetector(WithLogger(l), WithQuality(MinDetectionQuality))
	defer d.Close()

	if err := d.SetScreenSource(bitmap.ImageSource{Img: screen}); err != nil {
		t.Fatalf("设置屏幕失败: %v", err)
	}
	result, err := d.Detect(mustBuffer(t, template), 90)
	if err != nil {
		t.Fatalf("检测失败: %v", err)
	}
	if result.Center() != image.Pt(105, 45) {
		t.Errorf("中心应为 (105, 45), 实际 %s", result)
	}
}
