package xttl

// derive 创建继承默认配置的空 Store，不继承取消作用域。
func (s *Store[V]) derive() *Store[V] {
	s.mu.Lock()
	lifetime, observer := s.lifetime, s.observer
	s.mu.Unlock()

	return newStore(&options[V]{
		lifetime:  lifetime,
		observer:  observer,
		scheduler: s.scheduler,
		keyFunc:   s.keyFunc,
		name:      s.name,
		logger:    s.baseLogger,
		recorder:  s.recorder,
	})
}

// fill 以原键写入 entries，条目按新 Store 的默认值重新计时。
func (s *Store[V]) fill(entries []Entry[V]) *Store[V] {
	for _, e := range entries {
		s.Set(e.Key, e.Value)
	}
	return s
}

// Filter 返回只包含满足 fn(value, index) 的条目的新 Store。
func (s *Store[V]) Filter(fn func(value V, index int) bool) *Store[V] {
	entries := s.snapshot()
	kept := entries[:0]
	for i, e := range entries {
		if fn(e.Value, i) {
			kept = append(kept, e)
		}
	}
	return s.derive().fill(kept)
}

// Slice 返回位置 [start, end) 的条目组成的新 Store。
// 负数下标从末尾计数，越界时截断到 [0, Len()]。
func (s *Store[V]) Slice(start, end int) *Store[V] {
	entries := s.snapshot()
	n := len(entries)
	start, end = clampIndex(start, n), clampIndex(end, n)
	if start >= end {
		return s.derive()
	}
	return s.derive().fill(entries[start:end])
}

// Concat 返回依次包含 s 与 others 全部条目的新 Store。
// 相同的键后写覆盖先写，位置保持首次出现处。nil 会被跳过。
func (s *Store[V]) Concat(others ...*Store[V]) *Store[V] {
	out := s.derive().fill(s.snapshot())
	for _, other := range others {
		if other != nil {
			out.fill(other.snapshot())
		}
	}
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	return max(0, min(i, n))
}
