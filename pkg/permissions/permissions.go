// Package permissions 检查截屏和鼠标控制所需的系统权限
//
// 只有 macOS 需要显式授权，其他平台总是返回已授权。
package permissions

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPermissionDenied 缺少系统权限
var ErrPermissionDenied = errors.New("缺少系统权限")

// PermissionStatus 权限状态
type PermissionStatus struct {
	Accessibility   bool `json:"accessibility"`
	ScreenRecording bool `json:"screen_recording"`
}

// CheckPermissions 检查所需权限（不触发弹窗）
func CheckPermissions() PermissionStatus {
	accessibility, screenRecording := check()
	return PermissionStatus{
		Accessibility:   accessibility,
		ScreenRecording: screenRecording,
	}
}

// Require 检查本次运行需要的权限，capture 表示截屏，input 表示控制鼠标
func (s PermissionStatus) Require(capture, input bool) error {
	var missing []string
	if capture && !s.ScreenRecording {
		missing = append(missing, "屏幕录制")
	}
	if input && !s.Accessibility {
		missing = append(missing, "辅助功能")
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrPermissionDenied, strings.Join(missing, ", "))
}

// Instructions 获取权限说明，权限齐全时返回空字符串
func (s PermissionStatus) Instructions() string {
	if s.Accessibility && s.ScreenRecording {
		return ""
	}

	var b strings.Builder
	b.WriteString("需要授权以下权限才能正常工作:\n\n")
	if !s.ScreenRecording {
		b.WriteString("- 屏幕录制权限 (用于截屏和图像检测)\n")
		b.WriteString("  系统设置 > 隐私与安全性 > 屏幕录制\n\n")
	}
	if !s.Accessibility {
		b.WriteString("- 辅助功能权限 (用于点击检测到的位置)\n")
		b.WriteString("  系统设置 > 隐私与安全性 > 辅助功能\n\n")
	}
	b.WriteString("授权后需要重启应用才能生效。")
	return b.String()
}
