package sweep

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingAccruer struct {
	calls atomic.Int64
	err   error
}

func (c *countingAccruer) Accrue() error {
	c.calls.Add(1)
	return c.err
}

func TestSweeperAccruesRegisteredTargets(t *testing.T) {
	s := New(5*time.Millisecond, nil)
	a := &countingAccruer{}
	s.Register("uusdc", a)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	require.Eventually(t, func() bool { return a.calls.Load() >= 2 }, time.Second, time.Millisecond)
}

func TestSweeperDeregisterStopsFutureAccrual(t *testing.T) {
	s := New(5*time.Millisecond, nil)
	a := &countingAccruer{}
	s.Register("uusdc", a)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	require.Eventually(t, func() bool { return a.calls.Load() >= 1 }, time.Second, time.Millisecond)
	s.Deregister("uusdc")
	snapshot := a.calls.Load()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, snapshot, a.calls.Load())

	s.Stop()
}

func TestSweeperStartIsIdempotent(t *testing.T) {
	s := New(time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	require.True(t, s.IsRunning())
	s.Start(ctx)
	require.True(t, s.IsRunning())
	s.Stop()
	require.False(t, s.IsRunning())
}

func TestSweeperLogsButContinuesOnAccrueError(t *testing.T) {
	s := New(5*time.Millisecond, nil)
	a := &countingAccruer{err: errors.New("boom")}
	s.Register("uatom", a)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	require.Eventually(t, func() bool { return a.calls.Load() >= 3 }, time.Second, time.Millisecond)
}
