package xttl

// 指标事件名，通过 xmetrics.Recorder.Event 上报。
const (
	// EventArmed 条目定时器已启动。
	EventArmed = "armed"
	// EventExpired 条目因到期被移除。
	EventExpired = "expired"
	// EventRemoved 条目被显式移除（Delete、Extract、Shift、Pop、Clear、Close）。
	EventRemoved = "removed"
	// EventFlushed 条目因取消作用域被清空。
	EventFlushed = "flushed"
)

// 批量操作名，用于 xmetrics 观测跨度。
const (
	opFlush = "flush"
	opClear = "clear"
)
