// Package sweep runs a background loop that keeps every registered market's interest
// accrual current even when no user operation touches it (SPEC_FULL.md §4, supplementing
// spec.md: the distilled spec only accrues lazily inside deposit/withdraw/borrow/repay).
package sweep

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Accruer is the minimal surface a market exposes to the sweeper: market.Market's
// Sudo() group satisfies this directly via its Accrue method.
type Accruer interface {
	Accrue() error
}

// Sweeper periodically accrues every registered market, grounded on pkg/base.Strategy's
// atomic.Bool running flag and context.CancelFunc shutdown, generalized from a single
// trading loop into a registry of independent accrual targets.
type Sweeper struct {
	mu       sync.RWMutex
	targets  map[string]Accruer
	interval time.Duration
	logger   *zap.Logger

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a Sweeper that ticks every interval. A nil logger installs a no-op one.
func New(interval time.Duration, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		targets:  make(map[string]Accruer),
		interval: interval,
		logger:   logger,
	}
}

// Register adds or replaces the accrual target for marketToken.
func (s *Sweeper) Register(marketToken string, target Accruer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets[marketToken] = target
}

// Deregister removes marketToken from the sweep set, e.g. once a market is retired.
func (s *Sweeper) Deregister(marketToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.targets, marketToken)
}

// IsRunning reports whether the background loop is active.
func (s *Sweeper) IsRunning() bool {
	return s.running.Load()
}

// Start launches the background loop. A second call while already running is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	if s.running.Load() {
		return
	}
	s.running.Store(true)

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(loopCtx)
}

// Stop cancels the background loop and waits for it to exit.
func (s *Sweeper) Stop() {
	if !s.running.Load() {
		return
	}
	s.running.Store(false)
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Sweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

func (s *Sweeper) sweepOnce() {
	s.mu.RLock()
	targets := make(map[string]Accruer, len(s.targets))
	for token, target := range s.targets {
		targets[token] = target
	}
	s.mu.RUnlock()

	for token, target := range targets {
		if err := target.Accrue(); err != nil {
			s.logger.Error("sweep accrue failed", zap.String("market_token", token), zap.Error(err))
		}
	}
}
