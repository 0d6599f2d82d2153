// Package xrun 提供基于 errgroup + context 的进程生命周期管理。
//
// # 概述
//
// xrun 用于把若干长期运行的任务（存储演示、统计上报、配置监听）编排在同一个
// 进程生命周期内：
//   - 多任务并发运行和协调关闭
//   - 信号处理（SIGINT、SIGTERM 等）
//   - 周期任务（[Ticker]）与 cron 表达式任务（[Cron]）
//   - 基于条件的退出（[Until]）
//
// 任一任务返回错误或收到终止信号时，共享的 context 被取消，
// 其余任务应监听 ctx.Done() 并退出。
//
// # 快速开始
//
//	err := xrun.RunWithOptions(ctx, []xrun.Option{xrun.WithLogger(logger)},
//	    xrun.Cron("@every 10s", report),
//	    xrun.Until(time.Second, store.IsEmpty),
//	)
//	if errors.Is(err, xrun.ErrSignal) {
//	    // 信号退出
//	}
//
// # 退出原因
//
// [Group.Cancel] 传入的 cause 会由 [Group.Wait] 返回；信号退出时返回
// [*SignalError]，可用 errors.Is(err, ErrSignal) 判断。
package xrun
