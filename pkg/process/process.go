// Package process 采样当前进程的资源占用
package process

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v4/process"
)

// Usage 进程资源占用
type Usage struct {
	PID        int     `json:"pid"`
	RSS        uint64  `json:"rss"`
	VMS        uint64  `json:"vms"`
	CPUPercent float64 `json:"cpu_percent"`
	NumThreads int32   `json:"num_threads"`
}

// String 以 MB 显示内存
func (u Usage) String() string {
	return fmt.Sprintf("pid=%d rss=%.1fMB vms=%.1fMB cpu=%.1f%% threads=%d",
		u.PID, float64(u.RSS)/(1<<20), float64(u.VMS)/(1<<20), u.CPUPercent, u.NumThreads)
}

// Sampler 进程采样器
type Sampler struct {
	proc *process.Process
}

// Self 创建当前进程的采样器
func Self() (*Sampler, error) {
	return NewSampler(os.Getpid())
}

// NewSampler 按 PID 创建采样器
func NewSampler(pid int) (*Sampler, error) {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, fmt.Errorf("进程不存在: PID=%d: %w", pid, err)
	}
	return &Sampler{proc: proc}, nil
}

// Sample 采样一次
//
// CPUPercent 是自进程启动以来的平均值。
func (s *Sampler) Sample() (Usage, error) {
	usage := Usage{PID: int(s.proc.Pid)}

	mem, err := s.proc.MemoryInfo()
	if err != nil {
		return usage, fmt.Errorf("读取内存信息失败: %w", err)
	}
	usage.RSS, usage.VMS = mem.RSS, mem.VMS

	// CPU 和线程数在部分平台上不可用，忽略错误
	usage.CPUPercent, _ = s.proc.CPUPercent()
	usage.NumThreads, _ = s.proc.NumThreads()
	return usage, nil
}
