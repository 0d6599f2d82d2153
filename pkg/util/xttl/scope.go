package xttl

import (
	"context"
	"log/slog"

	"github.com/omeyang/xttl/pkg/observability/xmetrics"
)

// bind 在 ctx 结束时执行 Flush。ctx 已结束时 Flush 会立即异步执行。
func (s *Store[V]) bind(ctx context.Context) {
	s.stopScope = context.AfterFunc(ctx, s.Flush)
}

// Flush 同步清空集合，并按插入顺序逐个通知观察者。
//
// 持锁时取出全部条目、停止定时器并清空两个结构；释放锁后，
// 对每个条目调用其条目级观察者，否则调用当前默认观察者，二者皆无则跳过。
// 每个条目恰好被访问一次，观察者中修改 Store 不影响本次遍历。
// 空集合上调用不会触发任何通知。
func (s *Store[V]) Flush() {
	ctx, span := xmetrics.Start(s.ctx, s.recorder, xmetrics.SpanOptions{Component: s.name, Operation: opFlush})

	s.mu.Lock()
	drained := s.drainLocked()
	fallback := s.observer
	s.mu.Unlock()

	n := len(drained)
	defer span.End(xmetrics.Result{Attrs: []xmetrics.Attr{xmetrics.Int("entries", n)}})
	if n == 0 {
		return
	}

	s.removed(EventFlushed, n)
	s.logger.Debug(ctx, "store flushed", slog.Int("entries", n))
	for _, e := range drained {
		obs := e.observer
		if obs == nil {
			obs = fallback
		}
		if obs != nil {
			obs(e.value, e.key)
		}
	}
}

// Close 解除取消作用域绑定并清空集合，不通知观察者。
//
// Close 幂等，之后 Store 仍可继续使用，但不再响应原 context 的取消。
func (s *Store[V]) Close() {
	if s.stopScope != nil {
		s.stopScope()
	}
	s.Clear()
}
