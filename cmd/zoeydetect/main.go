package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/zoeyai/zoeydetect/internal/logger"
	"github.com/zoeyai/zoeydetect/pkg/auto"
	"github.com/zoeyai/zoeydetect/pkg/auto/input"
	"github.com/zoeyai/zoeydetect/pkg/auto/screen"
	"github.com/zoeyai/zoeydetect/pkg/config"
	"github.com/zoeyai/zoeydetect/pkg/permissions"
	"github.com/zoeyai/zoeydetect/pkg/process"
	"github.com/zoeyai/zoeydetect/pkg/vision/bitmap"
	"github.com/zoeyai/zoeydetect/pkg/vision/cv"
)

// 版本信息 (可通过 ldflags 注入)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// cliOptions 命令行参数
type cliOptions struct {
	screenPath   string
	templatePath string
	roi          string
	threshold    int
	quality      float64
	timeout      time.Duration
	click        bool
	bench        int
	cropPath     string
	logLevel     string
	logFile      string
	saveConfig   bool
}

func main() {
	var opts cliOptions
	flag.StringVar(&opts.screenPath, "screen", "", "屏幕截图文件 (为空则实时截屏)")
	flag.StringVar(&opts.templatePath, "template", "", "条件图像文件")
	flag.StringVar(&opts.roi, "roi", "", "检测区域 x,y,w,h (全尺寸坐标)")
	flag.IntVar(&opts.threshold, "threshold", -1, "允许的误差百分比 0-100")
	flag.Float64Var(&opts.quality, "quality", 0, "检测质量 (缩小后的最大边长)")
	flag.DurationVar(&opts.timeout, "timeout", 0, "实时截屏时等待条件图像出现的时间")
	flag.BoolVar(&opts.click, "click", false, "检测到后点击中心 (仅实时截屏)")
	flag.IntVar(&opts.bench, "bench", 0, "重复检测 N 次并输出耗时和内存")
	flag.StringVar(&opts.cropPath, "save", "", "把匹配区域保存为图像文件")
	flag.StringVar(&opts.logLevel, "log-level", "", "日志级别 DEBUG/INFO/WARN/ERROR")
	flag.StringVar(&opts.logFile, "log-file", "", "日志文件路径")
	flag.BoolVar(&opts.saveConfig, "save-config", false, "保存当前参数到配置文件")
	reset := flag.Bool("reset-config", false, "删除配置文件，恢复默认配置")
	showVersion := flag.Bool("version", false, "显示版本信息")
	showHelp := flag.Bool("help", false, "显示帮助信息")

	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}
	if *showHelp {
		printHelp()
		return
	}

	if *reset {
		if err := resetConfig(config.GetDefaultManager()); err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}
		return
	}

	if err := run(opts); err != nil {
		logger.Error("%v", err)
		logger.Default().Close()
		if errors.Is(err, auto.ErrTimeout) {
			os.Exit(2)
		}
		os.Exit(1)
	}
	logger.Default().Close()
}

func run(opts cliOptions) error {
	// 加载配置，命令行参数优先级高于配置文件
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("加载配置失败: %v", err)
	}
	if opts.threshold >= 0 {
		cfg.Threshold = opts.threshold
	}
	if opts.quality > 0 {
		cfg.Quality = opts.quality
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.LogFile = opts.logFile
	}

	log := logger.Default()
	log.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if cfg.LogFile != "" {
		if err := log.SetFile(cfg.LogFile); err != nil {
			logger.Warn("打开日志文件失败: %v", err)
		}
	}

	if opts.saveConfig {
		if err := config.Save(cfg); err != nil {
			logger.Warn("保存配置失败: %v", err)
		} else {
			logger.Info("配置已保存到 %s", config.GetDefaultManager().GetConfigFile())
		}
	}

	if opts.templatePath == "" {
		printHelp()
		return errors.New("缺少条件图像，请使用 -template 参数指定")
	}
	condition, err := bitmap.Load(opts.templatePath)
	if err != nil {
		return err
	}

	roi, err := parseRoi(opts.roi)
	if err != nil {
		return err
	}

	det := cv.NewDetector(cv.WithLogger(log))
	defer det.Close()
	if err := det.Configure(cfg.Quality); err != nil {
		return err
	}

	var (
		result cv.DetectionResult
		frame  bitmap.Buffer
	)
	startTime := time.Now()
	if opts.screenPath != "" {
		if opts.click {
			logger.Warn("使用截图文件时忽略 -click")
		}
		frame, err = bitmap.Load(opts.screenPath)
		if err != nil {
			return err
		}
		if err := det.SetScreen(frame); err != nil {
			return err
		}
		result, err = detect(det, condition, roi, cfg.Threshold)
	} else {
		frame, result, err = live(det, condition, roi, cfg, opts)
	}
	if err != nil && !errors.Is(err, auto.ErrTimeout) {
		return err
	}
	waitErr := err
	logger.LogEvent("DET", result.IsDetected, float64(time.Since(startTime).Microseconds())/1000, result.String())

	if opts.bench > 0 {
		if err := bench(det, condition, roi, cfg.Threshold, opts.bench); err != nil {
			return err
		}
	}

	if opts.cropPath != "" && result.IsDetected {
		if err := saveMatch(opts.cropPath, frame, condition, result); err != nil {
			logger.Warn("%v", err)
		} else {
			logger.Info("匹配区域已保存到 %s", opts.cropPath)
		}
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
	return waitErr
}

// live 实时截屏检测，可选等待和点击
func live(det *cv.Detector, condition bitmap.Buffer, roi *image.Rectangle, cfg *config.DetectionConfig, opts cliOptions) (bitmap.Buffer, cv.DetectionResult, error) {
	status := permissions.CheckPermissions()
	if err := status.Require(true, opts.click); err != nil {
		fmt.Println(status.Instructions())
		if !status.ScreenRecording {
			permissions.OpenScreenRecordingSettings()
		} else {
			permissions.OpenAccessibilitySettings()
		}
		return bitmap.Buffer{}, cv.DetectionResult{}, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	capturer := screen.NewCapturer(nil)
	src := &recordingSource{src: capturer}
	autoOpts := []auto.Option{
		auto.WithThreshold(cfg.Threshold),
		auto.WithTimeout(opts.timeout),
		auto.WithPollInterval(time.Duration(cfg.PollInterval)),
	}
	if roi != nil {
		autoOpts = append(autoOpts, auto.WithRegion(roi.Min.X, roi.Min.Y, roi.Dx(), roi.Dy()))
	}

	var (
		result cv.DetectionResult
		err    error
	)
	if opts.click {
		result, err = auto.ClickCondition(ctx, det, src, input.NewMouse(capturer), condition, autoOpts...)
	} else {
		result, err = auto.WaitForCondition(ctx, det, src, condition, autoOpts...)
	}
	return src.last, result, err
}

// recordingSource 记录最后一帧，用于保存匹配区域
type recordingSource struct {
	src  auto.FrameSource
	last bitmap.Buffer
}

func (r *recordingSource) Capture() (bitmap.Buffer, error) {
	buf, err := r.src.Capture()
	if err == nil {
		r.last = buf
	}
	return buf, err
}

func detect(det *cv.Detector, condition bitmap.Buffer, roi *image.Rectangle, threshold int) (cv.DetectionResult, error) {
	if roi != nil {
		return det.DetectIn(condition, *roi, threshold)
	}
	return det.Detect(condition, threshold)
}

// bench 在当前帧上重复检测
func bench(det *cv.Detector, condition bitmap.Buffer, roi *image.Rectangle, threshold, n int) error {
	sampler, err := process.Self()
	if err != nil {
		return err
	}
	before, _ := sampler.Sample()

	var detected int
	startTime := time.Now()
	for i := 0; i < n; i++ {
		result, err := detect(det, condition, roi, threshold)
		if err != nil {
			return err
		}
		if result.IsDetected {
			detected++
		}
	}
	elapsed := time.Since(startTime)

	after, err := sampler.Sample()
	if err != nil {
		logger.Warn("%v", err)
	}
	logger.Info("BENCH | %d 次 | 平均 %.2fms | 检测到 %d 次", n,
		float64(elapsed.Microseconds())/1000/float64(n), detected)
	logger.Info("BENCH | 之前 %s", before)
	logger.Info("BENCH | 之后 %s", after)
	return nil
}

// saveMatch 保存匹配位置上与条件图像同尺寸的区域
func saveMatch(path string, frame, condition bitmap.Buffer, result cv.DetectionResult) error {
	w, h := condition.Width, condition.Height
	topLeft := result.Center().Sub(image.Pt(w/2, h/2))
	crop, err := bitmap.Crop(frame, image.Rectangle{Min: topLeft, Max: topLeft.Add(image.Pt(w, h))})
	if err != nil {
		return fmt.Errorf("裁剪匹配区域失败: %w", err)
	}
	return bitmap.Save(path, crop)
}

// parseRoi 解析 "x,y,w,h"，空字符串表示全屏
func parseRoi(s string) (*image.Rectangle, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("检测区域格式错误: %q (应为 x,y,w,h)", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("检测区域格式错误: %q: %w", s, err)
		}
		v[i] = n
	}
	r := image.Rectangle{Min: image.Pt(v[0], v[1]), Max: image.Pt(v[0]+v[2], v[1]+v[3])}
	return &r, nil
}

// resetConfig 删除配置文件，不存在时只提示
func resetConfig(m *config.Manager) error {
	if !m.Exists() {
		logger.Info("%s 中没有配置文件", m.GetConfigDir())
		return nil
	}
	if err := m.Clear(); err != nil {
		return fmt.Errorf("清除配置失败: %w", err)
	}
	logger.Info("已删除配置文件 %s", m.GetConfigFile())
	return nil
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("Zoey Detect v%s\n", Version)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("Zoey Detect - 条件图像检测工具")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  zoeydetect -template FILE [选项]")
	fmt.Println()
	fmt.Println("选项:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  # 在截图文件中检测")
	fmt.Println("  zoeydetect -screen screen.png -template button.png")
	fmt.Println()
	fmt.Println("  # 实时截屏，最多等待 10 秒后点击")
	fmt.Println("  zoeydetect -template button.png -timeout 10s -click")
	fmt.Println()
	fmt.Println("  # 在区域内检测并测试性能")
	fmt.Println("  zoeydetect -screen screen.png -template button.png -roi 0,0,800,600 -bench 50")
	fmt.Println()
	fmt.Printf("配置文件位置: %s\n", config.GetDefaultManager().GetConfigFile())
}
