package xttl

import (
	"testing"
	"time"
)

// FuzzStoreOps 以字节序列驱动操作，验证任意操作组合后链表与索引保持一致。
func FuzzStoreOps(f *testing.F) {
	f.Add([]byte{0, 1, 2, 3, 4, 5, 6, 7})
	f.Add([]byte{5, 9, 5, 0, 7, 7, 1})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, ops []byte) {
		s, sched := newTestStore(t, WithLifetime[int](2*time.Millisecond))
		v := s.View()
		for i, op := range ops {
			key := string(rune('a' + op%5))
			switch op % 8 {
			case 0:
				s.Set(key, i)
			case 1:
				s.Delete(key)
			case 2:
				s.Push(i)
			case 3:
				s.Shift()
			case 4:
				s.Pop()
			case 5:
				v.SetIndex(int(op%6), i)
			case 6:
				sched.Advance(time.Millisecond)
			case 7:
				s.ExtractAt(int(op % 4))
			}
			checkInvariant(t, s)
		}
		if len(s.Keys()) != s.Len() {
			t.Fatalf("keys %d != len %d", len(s.Keys()), s.Len())
		}
		s.Flush()
		if !s.IsEmpty() || sched.Pending() != 0 {
			t.Fatal("flush left entries or timers behind")
		}
	})
}

// FuzzSlice 验证任意下标的 Slice 不会越界。
func FuzzSlice(f *testing.F) {
	f.Add(0, 3, 5)
	f.Add(-2, -1, 4)
	f.Add(10, -10, 0)

	f.Fuzz(func(t *testing.T, start, end, n int) {
		n = ((n % 32) + 32) % 32
		s, _ := newTestStore[int](t)
		for i := range n {
			s.Push(i)
		}
		out := s.Slice(start, end)
		if out.Len() > n {
			t.Fatalf("slice len %d > %d", out.Len(), n)
		}
	})
}
