// Package config 管理检测配置的持久化
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// 配置默认值，与 cv 包的检测质量范围保持一致
const (
	DefaultQuality      = 1200.0
	MinQuality          = 400.0
	MaxQuality          = 3216.0
	DefaultThreshold    = 10
	DefaultPollInterval = 200 * time.Millisecond
)

// DetectionConfig 检测配置
type DetectionConfig struct {
	// Quality 检测质量（缩小后的最大边长）
	Quality float64 `json:"quality"`
	// Threshold 允许的误差百分比 (0-100)
	Threshold int `json:"threshold"`
	// PollInterval 等待条件时的截图间隔
	PollInterval Duration `json:"poll_interval"`
	// LogLevel 日志级别
	LogLevel string `json:"log_level"`
	// LogFile 日志文件路径，空表示只输出到控制台
	LogFile string `json:"log_file"`
}

// Duration 以字符串形式 ("200ms") 序列化的时间间隔
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("时间间隔格式错误: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("时间间隔格式错误: %w", err)
	}
	*d = Duration(v)
	return nil
}

// DefaultDetectionConfig 默认检测配置
func DefaultDetectionConfig() *DetectionConfig {
	return &DetectionConfig{
		Quality:      DefaultQuality,
		Threshold:    DefaultThreshold,
		PollInterval: Duration(DefaultPollInterval),
		LogLevel:     "INFO",
		LogFile:      "",
	}
}

// Validate 将越界的值恢复为默认值
func (c *DetectionConfig) Validate() {
	if c.Quality < MinQuality || c.Quality > MaxQuality {
		c.Quality = DefaultQuality
	}
	if c.Threshold < 0 || c.Threshold > 100 {
		c.Threshold = DefaultThreshold
	}
	if c.PollInterval <= 0 {
		c.PollInterval = Duration(DefaultPollInterval)
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
}

// Manager 配置管理器
type Manager struct {
	configDir  string
	configFile string
	mu         sync.RWMutex
}

// NewManager 创建配置管理器
func NewManager() *Manager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return NewManagerWithDir(filepath.Join(homeDir, ".zoey-detect"))
}

// NewManagerWithDir 使用指定目录创建配置管理器
func NewManagerWithDir(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.json"),
	}
}

// Load 加载配置，文件不存在时返回默认配置
func (m *Manager) Load() (*DetectionConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := os.ReadFile(m.configFile)
	if os.IsNotExist(err) {
		return DefaultDetectionConfig(), nil
	}
	if err != nil {
		return DefaultDetectionConfig(), fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := DefaultDetectionConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return DefaultDetectionConfig(), fmt.Errorf("解析配置文件失败: %w", err)
	}
	config.Validate()

	return config, nil
}

// Save 保存配置
func (m *Manager) Save(config *DetectionConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	config.Validate()

	if err := os.MkdirAll(m.configDir, 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(m.configFile, data, 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

// Clear 清除配置
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := os.Remove(m.configFile)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// GetConfigDir 获取配置目录
func (m *Manager) GetConfigDir() string {
	return m.configDir
}

// GetConfigFile 获取配置文件路径
func (m *Manager) GetConfigFile() string {
	return m.configFile
}

// Exists 检查配置文件是否存在
func (m *Manager) Exists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, err := os.Stat(m.configFile)
	return err == nil
}

// 全局配置管理器
var defaultManager = NewManager()

// GetDefaultManager 获取默认配置管理器
func GetDefaultManager() *Manager {
	return defaultManager
}

// Load 使用默认管理器加载配置
func Load() (*DetectionConfig, error) {
	return defaultManager.Load()
}

// Save 使用默认管理器保存配置
func Save(config *DetectionConfig) error {
	return defaultManager.Save(config)
}
