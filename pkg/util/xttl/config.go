package xttl

import (
	"fmt"
	"time"
)

// Config 是 Store 的文件配置，字段标签同时支持 koanf 与 JSON。
type Config struct {
	// Name 存储名，用于日志和指标。
	Name string `koanf:"name" json:"name"`

	// Lifetime 默认生存时间，如 "30s"；0 表示永不过期。
	Lifetime time.Duration `koanf:"lifetime" json:"lifetime"`
}

// Validate 校验配置。
func (c Config) Validate() error {
	if c.Lifetime < 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidLifetime, c.Lifetime)
	}
	return nil
}

// NewFromConfig 按 cfg 创建 Store，opts 中的同名选项优先于 cfg。
func NewFromConfig[V any](cfg Config, opts ...Option[V]) (*Store[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base := []Option[V]{WithName[V](cfg.Name), WithLifetime[V](cfg.Lifetime)}
	return New(append(base, opts...)...)
}
