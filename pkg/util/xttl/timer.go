package xttl

import "time"

// Timer 是一次性定时任务的句柄。*time.Timer 满足此接口。
type Timer interface {
	// Stop 取消尚未触发的任务，对已触发或已取消的句柄调用是安全的。
	Stop() bool
}

// Scheduler 调度一次性延迟任务。
type Scheduler interface {
	// AfterFunc 在 d 之后于独立 goroutine 中执行 f。
	AfterFunc(d time.Duration, f func()) Timer
}

// SchedulerFunc 将普通函数适配为 Scheduler。
type SchedulerFunc func(d time.Duration, f func()) Timer

// AfterFunc 调用 fn(d, f)。
func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) Timer {
	return fn(d, f)
}

// systemScheduler 基于 time.AfterFunc，Go 定时器不会阻止进程退出。
type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// DefaultScheduler 返回基于 time.AfterFunc 的调度器。
func DefaultScheduler() Scheduler {
	return systemScheduler{}
}

// arm 为 lifetime > 0 的条目安排一次 onFire，否则返回 nil。
func arm(s Scheduler, lifetime time.Duration, onFire func()) Timer {
	if lifetime <= 0 {
		return nil
	}
	return s.AfterFunc(lifetime, onFire)
}

// disarm 停止定时器，nil 安全且幂等。
func disarm(t Timer) {
	if t != nil {
		t.Stop()
	}
}
