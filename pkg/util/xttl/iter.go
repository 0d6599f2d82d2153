package xttl

import (
	"encoding/json"
	"fmt"
	"iter"
)

// Entry 是条目的只读快照。JSON 编码为 [key, value] 二元组。
type Entry[V any] struct {
	Key   string
	Value V
}

// MarshalJSON 将条目编码为 [key, value]。
func (e Entry[V]) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Key, e.Value})
}

// snapshot 按插入顺序复制全部条目。
func (s *Store[V]) snapshot() []Entry[V] {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry[V], 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry[V])
		out = append(out, Entry[V]{Key: e.key, Value: e.value})
	}
	return out
}

// Keys 按插入顺序返回键的快照。
func (s *Store[V]) Keys() []string {
	entries := s.snapshot()
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

// Values 按插入顺序返回值的快照。
func (s *Store[V]) Values() []V {
	entries := s.snapshot()
	values := make([]V, len(entries))
	for i, e := range entries {
		values[i] = e.Value
	}
	return values
}

// Entries 按插入顺序返回条目的快照。
func (s *Store[V]) Entries() []Entry[V] {
	return s.snapshot()
}

// All 返回按插入顺序遍历 (key, value) 的迭代器。
// 每次 range 都基于开始时的快照，可重复使用。
func (s *Store[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, e := range s.snapshot() {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// Iter 返回按插入顺序遍历条目的迭代器，语义同 All。
func (s *Store[V]) Iter() iter.Seq[Entry[V]] {
	return func(yield func(Entry[V]) bool) {
		for _, e := range s.snapshot() {
			if !yield(e) {
				return
			}
		}
	}
}

// ForEach 按插入顺序对每个条目调用 fn(value, key)。
func (s *Store[V]) ForEach(fn func(value V, key string)) {
	for _, e := range s.snapshot() {
		fn(e.Value, e.Key)
	}
}

// Find 返回第一个满足 fn(value, index) 的值。
func (s *Store[V]) Find(fn func(value V, index int) bool) (V, bool) {
	for i, e := range s.snapshot() {
		if fn(e.Value, i) {
			return e.Value, true
		}
	}
	var zero V
	return zero, false
}

// FindIndex 返回第一个满足 fn(value, index) 的位置，不存在时返回 -1。
func (s *Store[V]) FindIndex(fn func(value V, index int) bool) int {
	for i, e := range s.snapshot() {
		if fn(e.Value, i) {
			return i
		}
	}
	return -1
}

// Some 报告是否存在满足 fn 的条目。
func (s *Store[V]) Some(fn func(value V, index int) bool) bool {
	return s.FindIndex(fn) >= 0
}

// Every 报告是否所有条目都满足 fn，空集合返回 true。
func (s *Store[V]) Every(fn func(value V, index int) bool) bool {
	return s.FindIndex(func(v V, i int) bool { return !fn(v, i) }) < 0
}

// Map 按插入顺序对每个条目调用 fn(value, key)，返回结果切片。
func Map[V, U any](s *Store[V], fn func(value V, key string) U) []U {
	entries := s.snapshot()
	out := make([]U, len(entries))
	for i, e := range entries {
		out[i] = fn(e.Value, e.Key)
	}
	return out
}

// Reduce 按插入顺序以 init 为初值累积 fn(acc, value, index)。
func Reduce[V, A any](s *Store[V], fn func(acc A, value V, index int) A, init A) A {
	acc := init
	for i, e := range s.snapshot() {
		acc = fn(acc, e.Value, i)
	}
	return acc
}

// IndexOf 返回第一个等于 v 的位置，不存在时返回 -1。
func IndexOf[V comparable](s *Store[V], v V) int {
	return s.FindIndex(func(x V, _ int) bool { return x == v })
}

// Includes 报告是否存在等于 v 的值。
func Includes[V comparable](s *Store[V], v V) bool {
	return IndexOf(s, v) >= 0
}

// MarshalJSON 将集合编码为 [[key, value], ...]。
func (s *Store[V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.snapshot())
}

// String 返回 JSON 形式的条目列表，编码失败时返回错误描述。
func (s *Store[V]) String() string {
	data, err := s.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("xttl.Store(%s): %v", s.name, err)
	}
	return string(data)
}
