package xid

import "time"

type options struct {
	machineID        func() (uint16, error)
	checkMachineID   func(uint16) bool
	maxWaitDuration  time.Duration
	maxWaitSet       bool // 区分"未传入"与"显式传入 0"
	retryInterval    time.Duration
	retryIntervalSet bool
}

// Option 配置选项函数。nil Option 会被跳过。
type Option func(*options)

// WithMachineID 设置自定义机器 ID 函数，默认使用 [DefaultMachineID]。
func WithMachineID(fn func() (uint16, error)) Option {
	return func(c *options) {
		c.machineID = fn
	}
}

// WithCheckMachineID 设置机器 ID 校验函数，返回 false 时 NewGenerator 失败。
func WithCheckMachineID(fn func(uint16) bool) Option {
	return func(c *options) {
		c.checkMachineID = fn
	}
}

// WithMaxWaitDuration 设置时钟回拨时的最大等待时间，默认 500ms。
// 负值在 NewGenerator 中返回 [ErrInvalidConfig]；0 表示不等待。
func WithMaxWaitDuration(d time.Duration) Option {
	return func(c *options) {
		c.maxWaitDuration = d
		c.maxWaitSet = true
	}
}

// WithRetryInterval 设置时钟回拨时的重试间隔，默认 10ms（Sonyflake 时间精度）。
// 负值在 NewGenerator 中返回 [ErrInvalidConfig]。
func WithRetryInterval(d time.Duration) Option {
	return func(c *options) {
		c.retryInterval = d
		c.retryIntervalSet = true
	}
}
