package xrun

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSignals 返回默认监听的系统信号列表：SIGHUP、SIGINT、SIGTERM、SIGQUIT。
// 每次调用返回新的切片。
func DefaultSignals() []os.Signal {
	return []os.Signal{
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	}
}

// testSigChanKey 用于在测试中通过 context 注入信号通道。
type testSigChanKey struct{}

// testSigChan 从 context 中获取测试信号通道（生产环境返回 nil）。
func testSigChan(ctx context.Context) <-chan os.Signal {
	c, ok := ctx.Value(testSigChanKey{}).(<-chan os.Signal)
	if !ok {
		return nil
	}
	return c
}

// withTestSigChan 在 context 中注入测试信号通道。
func withTestSigChan(ctx context.Context, c <-chan os.Signal) context.Context {
	return context.WithValue(ctx, testSigChanKey{}, c)
}

// Ticker 返回周期性执行 fn 的任务函数。
//
// interval 必须为正数，否则任务返回 ErrInvalidInterval。
// immediate 为 true 时启动即执行一次。fn 返回错误时任务以该错误退出。
func Ticker(interval time.Duration, immediate bool, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}
		if fn == nil {
			return ErrNilFunc
		}

		if immediate {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := fn(ctx); err != nil {
				return err
			}
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := fn(ctx); err != nil {
					return err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Until 返回以 interval 轮询 cond 的任务函数，cond 为 true 时返回 nil。
//
// 任务正常返回不会取消 Group，调用方若需要"条件满足即整体退出"，
// 应在外层调用 Group.Cancel。
func Until(interval time.Duration, cond func() bool) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if cond == nil {
			return ErrNilFunc
		}
		if interval <= 0 {
			return ErrInvalidInterval
		}
		if cond() {
			return nil
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if cond() {
					return nil
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Cron 返回按 cron 表达式执行 fn 的任务函数。
//
// spec 支持标准五段式与 "@every 1s" 等描述符，解析失败时任务返回
// ErrInvalidSchedule。fn 的错误不会终止任务，单次执行失败由 onError 处理
// （为 nil 时忽略）。ctx 取消后等待正在执行的 fn 结束再返回。
func Cron(spec string, fn func(ctx context.Context) error, onError ...func(error)) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if fn == nil {
			return ErrNilFunc
		}
		c := cron.New()
		_, err := c.AddFunc(spec, func() {
			if ctx.Err() != nil {
				return
			}
			if err := fn(ctx); err != nil {
				for _, h := range onError {
					if h != nil {
						h(err)
					}
				}
			}
		})
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, spec, err)
		}
		c.Start()
		<-ctx.Done()
		<-c.Stop().Done()
		return ctx.Err()
	}
}
