// Package cv 提供条件图像检测功能
//
// 检测流程:
//   - 屏幕帧按检测质量缩小并转为灰度图 (Screen)
//   - 灰度模板在缩小后的 ROI 中做 TM_CCOEFF_NORMED 模板匹配
//   - 从相关性矩阵中反复取最大值，做越界与颜色校验，不通过则屏蔽后重试
//
// 基本用法:
//
//	det := cv.NewDetector()
//	defer det.Close()
//
//	if err := det.Configure(1200); err != nil {
//	    log.Fatal(err)
//	}
//	screenBuf, _ := bitmap.FromImage(screenImg)
//	if err := det.SetScreen(screenBuf); err != nil {
//	    log.Fatal(err)
//	}
//
//	condition, _ := bitmap.FromImage(conditionImg)
//	result, err := det.Detect(condition, 10)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result.IsDetected {
//	    fmt.Printf("找到位置: (%d, %d)\n", result.CenterX, result.CenterY)
//	}
package cv
