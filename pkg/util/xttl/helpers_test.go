package xttl

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeScheduler 是确定性的调度器：只有 Advance 才会推进时间并触发到期任务。
type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	s       *fakeScheduler
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{}
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &fakeTimer{s: s, at: s.now + d, seq: s.seq, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance 推进时间 d，并按到期时间顺序在锁外同步执行到期任务。
func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*fakeTimer
	pending := s.timers[:0]
	for _, t := range s.timers {
		switch {
		case t.stopped:
		case t.at <= s.now:
			t.fired = true
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	s.timers = pending
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		t.f()
	}
}

// Pending 返回尚未触发也未停止的任务数。
func (s *fakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// call 记录一次观察者调用。
type call[V any] struct {
	Value V
	Key   string
}

// calls 是并发安全的观察者调用记录。
type calls[V any] struct {
	mu   sync.Mutex
	list []call[V]
}

func (c *calls[V]) observe(value V, key string) {
	c.mu.Lock()
	c.list = append(c.list, call[V]{Value: value, Key: key})
	c.mu.Unlock()
}

func (c *calls[V]) get() []call[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]call[V](nil), c.list...)
}

func (c *calls[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.list)
}

func newTestStore[V any](t *testing.T, opts ...Option[V]) (*Store[V], *fakeScheduler) {
	t.Helper()
	sched := newFakeScheduler()
	s, err := New(append([]Option[V]{WithScheduler[V](sched)}, opts...)...)
	require.NoError(t, err)
	return s, sched
}

// checkInvariant 校验有序链表与键索引包含完全相同的键，且每个键只出现一次。
func checkInvariant[V any](t *testing.T, s *Store[V]) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	require.Equal(t, s.order.Len(), len(s.index), "list and index sizes differ")
	seen := make(map[string]bool, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry[V])
		require.False(t, seen[e.key], "duplicate key %q in list", e.key)
		seen[e.key] = true
		indexed, ok := s.index[e.key]
		require.True(t, ok, "key %q missing from index", e.key)
		require.Same(t, el, indexed, "index points to a different element for %q", e.key)
	}
}
