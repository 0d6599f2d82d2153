package xlog

import (
	"fmt"

	"gopkg.in/natefinch/lumberjack.v2"
)

// 轮转默认配置值
const (
	// DefaultMaxSizeMB 默认单个日志文件最大大小（MB）
	DefaultMaxSizeMB = 100

	// DefaultMaxBackups 默认保留的备份文件数量
	DefaultMaxBackups = 7

	// DefaultMaxAgeDays 默认保留备份的天数
	DefaultMaxAgeDays = 30
)

// rotateConfig 基于文件大小的轮转配置
type rotateConfig struct {
	maxSizeMB  int
	maxBackups int
	maxAgeDays int
	compress   bool
}

// RotateOption 轮转配置选项
type RotateOption func(*rotateConfig)

// WithMaxSizeMB 设置单个日志文件最大大小（MB），必须 > 0
func WithMaxSizeMB(n int) RotateOption {
	return func(c *rotateConfig) { c.maxSizeMB = n }
}

// WithMaxBackups 设置保留的备份文件数量，0 表示不限制
func WithMaxBackups(n int) RotateOption {
	return func(c *rotateConfig) { c.maxBackups = n }
}

// WithMaxAgeDays 设置保留备份的天数，0 表示不按天数清理
func WithMaxAgeDays(n int) RotateOption {
	return func(c *rotateConfig) { c.maxAgeDays = n }
}

// WithCompress 设置是否 gzip 压缩备份文件
func WithCompress(enable bool) RotateOption {
	return func(c *rotateConfig) { c.compress = enable }
}

// newRotator 创建 lumberjack 轮转写入器
func newRotator(filename string, opts ...RotateOption) (*lumberjack.Logger, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}
	cfg := &rotateConfig{
		maxSizeMB:  DefaultMaxSizeMB,
		maxBackups: DefaultMaxBackups,
		maxAgeDays: DefaultMaxAgeDays,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.maxSizeMB <= 0 {
		return nil, fmt.Errorf("%w: max size must be positive, got %d", ErrInvalidRotation, cfg.maxSizeMB)
	}
	if cfg.maxBackups < 0 || cfg.maxAgeDays < 0 {
		return nil, fmt.Errorf("%w: backups and age must not be negative", ErrInvalidRotation)
	}
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    cfg.maxSizeMB,
		MaxBackups: cfg.maxBackups,
		MaxAge:     cfg.maxAgeDays,
		Compress:   cfg.compress,
	}, nil
}
