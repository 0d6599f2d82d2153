package xttl

// View 是 Store 之上的序号访问门面，不持有独立状态。
// 嵌入的 *Store 使其余方法直接透传。
type View[V any] struct {
	*Store[V]
}

// NewView 返回 s 的序号视图。
func NewView[V any](s *Store[V]) View[V] {
	return View[V]{Store: s}
}

// View 返回 s 的序号视图。
func (s *Store[V]) View() View[V] {
	return NewView(s)
}

// Index 返回位置 i 的值，等价于 At(i)。
func (v View[V]) Index(i int) (V, bool) {
	return v.At(i)
}

// SetIndex 按序号写入 value。i 为负时返回 false。
//
// i 超出当前长度时，先以零值占位条目（自动生成键，按默认 lifetime 计时）
// 填充到长度 i，再追加 value。i 指向已有位置时，停止原条目定时器并原位
// 替换其值，保留原键；替换后的条目不再计时，也不保留条目级观察者。
// 整个写入在一次加锁内完成。
func (v View[V]) SetIndex(i int, value V) bool {
	if i < 0 {
		return false
	}
	s := v.Store

	s.mu.Lock()
	var t tally
	var zero V
	for s.order.Len() < i {
		t.add(s.setLocked(s.newKeyLocked(), zero, entryOptions[V]{}))
	}
	if i == s.order.Len() {
		t.add(s.setLocked(s.newKeyLocked(), value, entryOptions[V]{}))
	} else {
		s.replaceLocked(s.elementLocked(i), value)
	}
	s.mu.Unlock()

	s.report(t)
	return true
}
