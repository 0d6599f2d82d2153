package xrun

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xttl/pkg/observability/xlog"
)

// safeBuffer 供并发写日志使用。
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestGroup_Empty(t *testing.T) {
	g, _ := NewGroup(context.Background())
	assert.NoError(t, g.Wait())
}

func TestGroup_NilContextAndOption(t *testing.T) {
	//nolint:staticcheck // 验证 nil context 的归一化
	g, ctx := NewGroup(nil, nil, WithName(""))
	require.NotNil(t, ctx)
	assert.Equal(t, "xrun", g.opts.name)
	assert.NoError(t, g.Wait())
}

func TestGroup_ServiceError(t *testing.T) {
	want := errors.New("boom")
	var stopped atomic.Bool

	g, ctx := NewGroup(context.Background())
	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		stopped.Store(true)
		return ctx.Err()
	})
	g.Go(func(context.Context) error { return want })

	assert.ErrorIs(t, g.Wait(), want)
	assert.True(t, stopped.Load())
	assert.Error(t, ctx.Err())
}

func TestGroup_NilFunc(t *testing.T) {
	g, _ := NewGroup(context.Background())
	g.Go(nil)
	assert.ErrorIs(t, g.Wait(), ErrNilFunc)

	g, _ = NewGroup(context.Background())
	g.GoWithName("nil", nil)
	assert.ErrorIs(t, g.Wait(), ErrNilFunc)
}

func TestGroup_CancelCause(t *testing.T) {
	cause := errors.New("drained")

	g, _ := NewGroup(context.Background())
	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	g.Cancel(cause)
	assert.ErrorIs(t, g.Wait(), cause)
}

func TestGroup_CancelCauseWithNilReturns(t *testing.T) {
	cause := errors.New("drained")

	g, _ := NewGroup(context.Background())
	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	g.Cancel(cause)
	assert.ErrorIs(t, g.Wait(), cause)
}

func TestGroup_CancelNil(t *testing.T) {
	g, _ := NewGroup(context.Background())
	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	g.Cancel(nil)
	assert.NoError(t, g.Wait())
}

func TestGroup_InternalCanceledNotFiltered(t *testing.T) {
	g, _ := NewGroup(context.Background())
	g.Go(func(context.Context) error { return context.Canceled })
	assert.ErrorIs(t, g.Wait(), context.Canceled)
}

func TestGroup_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	g, _ := NewGroup(parent)
	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	cancel()
	assert.NoError(t, g.Wait())
}

func TestGroup_GoWithNameLogs(t *testing.T) {
	var buf safeBuffer
	logger, _, err := xlog.New().SetOutput(&buf).SetFormat("json").SetLevel(xlog.LevelDebug).Build()
	require.NoError(t, err)

	g, _ := NewGroup(context.Background(), WithLogger(logger), WithName("demo"))
	g.GoWithName("ok", func(context.Context) error { return nil })
	g.GoWithName("bad", func(context.Context) error { return errors.New("bad") })
	require.Error(t, g.Wait())

	out := buf.String()
	assert.Contains(t, out, `"group":"demo"`)
	assert.Contains(t, out, "service exited with error")
	assert.Contains(t, out, `"service":"bad"`)
	assert.Contains(t, out, "service stopped")
}

func TestRun_Signal(t *testing.T) {
	sigc := make(chan os.Signal, 1)
	ctx := withTestSigChan(context.Background(), sigc)

	started := make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		errc <- Run(ctx, func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		})
	}()

	<-started
	sigc <- syscall.SIGTERM

	err := <-errc
	require.ErrorIs(t, err, ErrSignal)
	var sigErr *SignalError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, syscall.SIGTERM, sigErr.Signal)
	assert.Equal(t, "received signal terminated", err.Error())
}

func TestRunWithOptions_WithoutSignalHandler(t *testing.T) {
	err := RunWithOptions(context.Background(), []Option{WithoutSignalHandler()},
		func(context.Context) error { return nil },
	)
	assert.NoError(t, err)
}

func TestRunWithOptions_CustomSignals(t *testing.T) {
	sigc := make(chan os.Signal, 1)
	ctx := withTestSigChan(context.Background(), sigc)
	sigc <- syscall.SIGINT

	err := RunWithOptions(ctx, []Option{WithSignals([]os.Signal{syscall.SIGINT})},
		func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		},
	)
	var sigErr *SignalError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, syscall.SIGINT, sigErr.Signal)
}

func TestRun_ServiceErrorStopsSignalWatcher(t *testing.T) {
	want := errors.New("fail")
	err := Run(context.Background(), func(context.Context) error { return want })
	assert.ErrorIs(t, err, want)
}

func TestSignalError(t *testing.T) {
	var e SignalError
	assert.Equal(t, "received signal <nil>", e.Error())
	assert.True(t, errors.Is(&e, ErrSignal))
	assert.Equal(t, ErrSignal, e.Unwrap())
}

func TestDefaultSignals_Copy(t *testing.T) {
	a := DefaultSignals()
	a[0] = syscall.SIGUSR1
	assert.Equal(t, syscall.SIGHUP, DefaultSignals()[0])
}

func TestWithSignals_CopiesInput(t *testing.T) {
	in := []os.Signal{syscall.SIGINT}
	opt := WithSignals(in)
	in[0] = syscall.SIGUSR1

	o := defaultOptions()
	opt(o)
	assert.Equal(t, []os.Signal{syscall.SIGINT}, o.signals)
}

func TestTestSigChan_Missing(t *testing.T) {
	assert.Nil(t, testSigChan(context.Background()))
}

