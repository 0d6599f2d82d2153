package xid

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/google/uuid"
	"github.com/sony/sonyflake/v2"
)

const (
	// DefaultMaxWaitDuration 时钟回拨时的默认最大等待时间。
	DefaultMaxWaitDuration = 500 * time.Millisecond

	// DefaultRetryInterval 时钟回拨时的默认重试间隔。
	DefaultRetryInterval = 10 * time.Millisecond
)

// UUID 返回随机 UUIDv4 字符串，是 xttl 存储的默认键生成器。
func UUID() string {
	return uuid.NewString()
}

// Generator 基于 Sonyflake 的可排序 ID 生成器，所有方法并发安全。
type Generator struct {
	maxWaitDuration time.Duration
	retryInterval   time.Duration
	// generateID 默认为 sonyflake.NextID，测试中可替换。
	generateID func() (int64, error)
}

// NewGenerator 创建 ID 生成器。未指定 WithMachineID 时使用 [DefaultMachineID]。
func NewGenerator(opts ...Option) (*Generator, error) {
	cfg := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	if cfg.maxWaitDuration < 0 {
		return nil, fmt.Errorf("%w: max wait duration must be non-negative, got %s", ErrInvalidConfig, cfg.maxWaitDuration)
	}
	if cfg.retryInterval < 0 {
		return nil, fmt.Errorf("%w: retry interval must be non-negative, got %s", ErrInvalidConfig, cfg.retryInterval)
	}

	machineIDFn := cfg.machineID
	if machineIDFn == nil {
		machineIDFn = DefaultMachineID
	}
	settings := sonyflake.Settings{
		MachineID: func() (int, error) {
			id, err := machineIDFn()
			return int(id), err
		},
	}
	if cfg.checkMachineID != nil {
		settings.CheckMachineID = func(id int) bool {
			return cfg.checkMachineID(uint16(id))
		}
	}

	sf, err := sonyflake.New(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	g := &Generator{
		maxWaitDuration: DefaultMaxWaitDuration,
		retryInterval:   DefaultRetryInterval,
		generateID:      sf.NextID,
	}
	if cfg.maxWaitSet {
		g.maxWaitDuration = cfg.maxWaitDuration
	}
	if cfg.retryIntervalSet {
		g.retryInterval = cfg.retryInterval
	}
	return g, nil
}

func (g *Generator) validate() error {
	if g == nil || g.generateID == nil {
		return ErrNilGenerator
	}
	return nil
}

// New 生成新的 ID（int64 格式）。时间分量溢出时返回 [ErrOverTimeLimit]。
func (g *Generator) New() (int64, error) {
	if err := g.validate(); err != nil {
		return 0, err
	}
	id, err := g.generateID()
	if err != nil {
		return 0, mapOverTime(err)
	}
	return id, nil
}

// NewWithRetry 生成新的 ID，遇到可重试错误时以固定间隔重试。
//
// 等待超过 maxWaitDuration 仍失败时返回 [ErrClockBackwardTimeout]；
// ctx 取消时返回 ctx.Err()；时间分量溢出立即返回 [ErrOverTimeLimit]。
func (g *Generator) NewWithRetry(ctx context.Context) (int64, error) {
	if err := g.validate(); err != nil {
		return 0, err
	}
	if ctx == nil {
		return 0, ErrNilContext
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	id, err := retry.NewWithData[int64](
		retry.Context(ctx),
		retry.Attempts(g.attempts()),
		retry.Delay(g.retryInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, sonyflake.ErrOverTimeLimit)
		}),
	).Do(g.generateID)
	if err == nil {
		return id, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}
	if errors.Is(err, sonyflake.ErrOverTimeLimit) {
		return 0, mapOverTime(err)
	}
	return 0, fmt.Errorf("%w: %w", ErrClockBackwardTimeout, err)
}

// attempts 按 maxWaitDuration / retryInterval 推导总尝试次数（含首次）。
func (g *Generator) attempts() uint {
	if g.maxWaitDuration <= 0 {
		return 1
	}
	if g.retryInterval <= 0 {
		return 2
	}
	n := g.maxWaitDuration / g.retryInterval
	return uint(n) + 1
}

// NewString 生成新的 ID（base36 字符串格式）。
func (g *Generator) NewString() (string, error) {
	id, err := g.New()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 36), nil
}

// NewStringWithRetry 生成新的 ID（base36 字符串格式），详见 NewWithRetry。
func (g *Generator) NewStringWithRetry(ctx context.Context) (string, error) {
	id, err := g.NewWithRetry(ctx)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 36), nil
}

// KeyFunc 返回可用作 xttl.WithKeyFunc 的键生成函数。
//
// 生成失败（如时钟回拨超时）时回退到 [UUID]，保证总是返回非空键。
func (g *Generator) KeyFunc() func() string {
	return func() string {
		s, err := g.NewStringWithRetry(context.Background())
		if err != nil {
			return UUID()
		}
		return s
	}
}

// Parse 解析由 NewString 生成的 base36 字符串。
// 所有无效输入（语法错误、溢出、非正值）均返回 [ErrInvalidID]。
func Parse(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 36, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%w: value must be positive, got %d", ErrInvalidID, id)
	}
	return id, nil
}

func mapOverTime(err error) error {
	if errors.Is(err, sonyflake.ErrOverTimeLimit) {
		return fmt.Errorf("%w: %w", ErrOverTimeLimit, err)
	}
	return err
}
