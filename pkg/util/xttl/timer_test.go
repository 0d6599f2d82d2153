package xttl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestArm(t *testing.T) {
	ctrl := gomock.NewController(t)
	sched := NewMockScheduler(ctrl)

	// lifetime <= 0 不调度
	assert.Nil(t, arm(sched, 0, func() {}))
	assert.Nil(t, arm(sched, -time.Second, func() {}))

	timer := NewMockTimer(ctrl)
	sched.EXPECT().AfterFunc(time.Second, gomock.Any()).Return(timer)
	assert.Same(t, timer, arm(sched, time.Second, func() {}))
}

func TestDisarm(t *testing.T) {
	disarm(nil)

	ctrl := gomock.NewController(t)
	timer := NewMockTimer(ctrl)
	timer.EXPECT().Stop().Return(true)
	timer.EXPECT().Stop().Return(false)
	disarm(timer)
	disarm(timer)
}

func TestDefaultScheduler(t *testing.T) {
	fired := make(chan struct{})
	timer := DefaultScheduler().AfterFunc(time.Millisecond, func() { close(fired) })
	require.NotNil(t, timer)

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
	assert.False(t, timer.Stop(), "stopping a fired timer is safe")
}

func TestDefaultScheduler_Stop(t *testing.T) {
	timer := DefaultScheduler().AfterFunc(time.Hour, func() { t.Error("must not fire") })
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
}

func TestSchedulerFunc(t *testing.T) {
	var got time.Duration
	s := SchedulerFunc(func(d time.Duration, f func()) Timer {
		got = d
		return time.AfterFunc(time.Hour, f)
	})
	timer := s.AfterFunc(3*time.Second, func() {})
	defer timer.Stop()
	assert.Equal(t, 3*time.Second, got)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.NoError(t, Config{Lifetime: time.Second}.Validate())
	assert.ErrorIs(t, Config{Lifetime: -1}.Validate(), ErrInvalidLifetime)
}
