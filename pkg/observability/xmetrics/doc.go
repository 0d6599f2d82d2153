// Package xmetrics 提供 xttl 存储的可观测性接口（metrics + tracing）。
//
// # 设计理念
//
// xmetrics 仅定义最小化接口：Recorder/Observer/Span/Attr，
// 存储代码只依赖接口；默认实现基于 OpenTelemetry。
//
// # 使用示例
//
//	rec, _ := xmetrics.NewOTelRecorder()
//	store, _ := xttl.New[string](xttl.WithRecorder[string](rec))
//
// # 指标命名
//
//   - xttl.entry.events：条目生命周期事件计数，属性 store / event
//   - xttl.entry.live：当前存活条目数（UpDownCounter），属性 store
//   - xttl.operation.total：批量操作次数，属性 component / operation / status
//   - xttl.operation.duration：批量操作耗时（秒）
//
// 事件名由调用方定义（xttl 使用 armed / expired / removed / flushed）。
package xmetrics
