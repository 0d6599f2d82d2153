package xttl

import (
	"context"
	"time"

	"github.com/omeyang/xttl/pkg/observability/xlog"
	"github.com/omeyang/xttl/pkg/observability/xmetrics"
)

// Observer 在条目到期或被取消作用域清空时接收 (value, key)。
type Observer[V any] func(value V, key string)

type options[V any] struct {
	lifetime  time.Duration
	observer  Observer[V]
	ctx       context.Context
	scheduler Scheduler
	keyFunc   func() string
	name      string
	logger    xlog.Logger
	recorder  xmetrics.Recorder
}

// Option 定义 Store 的构造选项。nil Option 会被跳过。
type Option[V any] func(*options[V])

// WithLifetime 设置默认生存时间，0 表示永不过期，负值使 New 返回 [ErrInvalidLifetime]。
func WithLifetime[V any](d time.Duration) Option[V] {
	return func(o *options[V]) {
		o.lifetime = d
	}
}

// WithObserver 设置默认观察者。
func WithObserver[V any](fn func(value V, key string)) Option[V] {
	return func(o *options[V]) {
		o.observer = fn
	}
}

// WithContext 将 Store 绑定到 ctx：ctx 结束时调用 [Store.Flush]。nil ctx 会被忽略。
func WithContext[V any](ctx context.Context) Option[V] {
	return func(o *options[V]) {
		o.ctx = ctx
	}
}

// WithScheduler 替换定时调度器，主要用于测试。nil 会被忽略。
func WithScheduler[V any](s Scheduler) Option[V] {
	return func(o *options[V]) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// WithKeyFunc 设置 Push 使用的键生成器，默认 xid.UUID。nil 会被忽略。
//
// 键生成器在内部锁内调用，不得回调 Store 自身方法。
func WithKeyFunc[V any](fn func() string) Option[V] {
	return func(o *options[V]) {
		if fn != nil {
			o.keyFunc = fn
		}
	}
}

// WithName 设置存储名，用于日志和指标的 store 属性。
func WithName[V any](name string) Option[V] {
	return func(o *options[V]) {
		o.name = name
	}
}

// WithLogger 设置日志记录器，默认丢弃。nil 会被忽略。
func WithLogger[V any](l xlog.Logger) Option[V] {
	return func(o *options[V]) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder 设置指标记录器，默认空实现。nil 会被忽略。
func WithRecorder[V any](r xmetrics.Recorder) Option[V] {
	return func(o *options[V]) {
		if r != nil {
			o.recorder = r
		}
	}
}

type entryOptions[V any] struct {
	lifetime time.Duration
	observer Observer[V]
}

// EntryOption 定义单个条目的写入选项，覆盖存储级默认值。
type EntryOption[V any] func(*entryOptions[V])

// EntryLifetime 设置条目生存时间；<= 0 时使用存储默认值。
func EntryLifetime[V any](d time.Duration) EntryOption[V] {
	return func(o *entryOptions[V]) {
		o.lifetime = d
	}
}

// EntryObserver 设置条目级观察者，优先于存储默认观察者。
func EntryObserver[V any](fn func(value V, key string)) EntryOption[V] {
	return func(o *entryOptions[V]) {
		o.observer = fn
	}
}

func applyEntryOptions[V any](opts []EntryOption[V]) entryOptions[V] {
	var eo entryOptions[V]
	for _, opt := range opts {
		if opt != nil {
			opt(&eo)
		}
	}
	return eo
}
