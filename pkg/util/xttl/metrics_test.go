package xttl

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xttl/pkg/observability/xlog"
	"github.com/omeyang/xttl/pkg/observability/xmetrics"
)

// recordingRecorder 记录全部事件与存活数变化。
type recordingRecorder struct {
	xmetrics.NoopRecorder

	mu     sync.Mutex
	events map[string]int64
	live   int64
	ops    []string
}

func newRecordingRecorder() *recordingRecorder {
	return &recordingRecorder{events: make(map[string]int64)}
}

func (r *recordingRecorder) Event(_ context.Context, _ string, event string, n int64) {
	r.mu.Lock()
	r.events[event] += n
	r.mu.Unlock()
}

func (r *recordingRecorder) Live(_ context.Context, _ string, delta int64) {
	r.mu.Lock()
	r.live += delta
	r.mu.Unlock()
}

func (r *recordingRecorder) Start(ctx context.Context, opts xmetrics.SpanOptions) (context.Context, xmetrics.Span) {
	r.mu.Lock()
	r.ops = append(r.ops, opts.Operation)
	r.mu.Unlock()
	return ctx, xmetrics.NoopSpan{}
}

func (r *recordingRecorder) snapshot() (map[string]int64, int64, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make(map[string]int64, len(r.events))
	for k, v := range r.events {
		events[k] = v
	}
	return events, r.live, append([]string(nil), r.ops...)
}

func TestStore_Metrics(t *testing.T) {
	rec := newRecordingRecorder()
	s, sched := newTestStore(t, WithLifetime[int](10*time.Millisecond), WithRecorder[int](rec))

	s.Push(1)
	s.Push(2)
	s.Set("a", 3)
	s.Set("a", 4) // 替换不改变存活数，但重新计时
	s.Set("fallback", 5, EntryLifetime[int](0)) // 回退到默认 lifetime
	s.Delete("a")

	sched.Advance(10 * time.Millisecond) // 1、2、fallback 到期
	s.Push(6)
	s.Push(7)
	s.Flush()
	s.Push(8)
	s.Clear()

	events, live, ops := rec.snapshot()
	assert.Equal(t, int64(8), events[EventArmed])
	assert.Equal(t, int64(3), events[EventExpired])
	assert.Equal(t, int64(2), events[EventRemoved])
	assert.Equal(t, int64(2), events[EventFlushed])
	assert.Zero(t, live)
	assert.Equal(t, []string{opFlush, opClear}, ops)
}

func TestStore_Metrics_SetIndex(t *testing.T) {
	rec := newRecordingRecorder()
	s, _ := newTestStore(t, WithLifetime[int](time.Second), WithRecorder[int](rec))

	s.View().SetIndex(2, 1)
	s.View().SetIndex(0, 9)

	events, live, _ := rec.snapshot()
	assert.Equal(t, int64(3), events[EventArmed])
	assert.Equal(t, int64(3), live)
}

func TestStore_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().
		SetOutput(&buf).
		SetLevel(xlog.LevelDebug).
		SetFormat("json").
		Build()
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	s, sched := newTestStore(t, WithLifetime[string](time.Millisecond), WithLogger[string](logger), WithName[string]("sessions"))
	k := s.Push("v")
	sched.Advance(time.Millisecond)
	s.Push("w")
	s.Flush()

	out := buf.String()
	assert.Contains(t, out, `"msg":"entry expired"`)
	assert.Contains(t, out, `"key":"`+k+`"`)
	assert.Contains(t, out, `"store":"sessions"`)
	assert.Contains(t, out, `"msg":"store flushed"`)
}
