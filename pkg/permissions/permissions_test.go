package permissions

import (
	"errors"
	"strings"
	"testing"
)

func TestRequire(t *testing.T) {
	tests := []struct {
		name    string
		status  PermissionStatus
		capture bool
		input   bool
		wantErr bool
	}{
		{"all granted", PermissionStatus{true, true}, true, true, false},
		{"capture only, no accessibility", PermissionStatus{false, true}, true, false, false},
		{"capture denied", PermissionStatus{true, false}, true, false, true},
		{"input denied", PermissionStatus{false, true}, true, true, true},
		{"nothing required", PermissionStatus{}, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.status.Require(tt.capture, tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Require() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrPermissionDenied) {
				t.Errorf("应包装 ErrPermissionDenied, 实际 %v", err)
			}
		})
	}
}

func TestInstructions(t *testing.T) {
	if msg := (PermissionStatus{true, true}).Instructions(); msg != "" {
		t.Errorf("权限齐全时应为空, 实际 %q", msg)
	}

	msg := PermissionStatus{Accessibility: true}.Instructions()
	if !strings.Contains(msg, "屏幕录制") || strings.Contains(msg, "辅助功能权限") {
		t.Errorf("说明内容不正确: %q", msg)
	}
}

func TestCheckPermissions(t *testing.T) {
	status := CheckPermissions()
	t.Logf("权限状态: %+v", status)
}
