// Package govern provides an adaptive rate governor for outbound API calls.
//
// The governor enforces three limits at once: a per-second rate that adapts
// to observed outcomes, a per-minute cap, and a per-hour cap. Callers block
// in Acquire until all three allow another request, then report the outcome
// so the per-second rate can tune itself.
package govern

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/company-pipeline/internal/config"
)

// Governor coordinates request pacing across concurrent workers.
type Governor struct {
	limiter *rate.Limiter

	mu          sync.Mutex
	currentRate float64
	minRate     float64
	maxRate     float64
	perMinute   int
	perHour     int
	increase    float64
	decrease    float64
	interval    time.Duration

	window     []time.Time
	successes  int
	errors     int
	lastAdjust time.Time

	now func() time.Time
}

// New builds a governor from configuration.
func New(cfg config.GovernorConfig) *Governor {
	return &Governor{
		limiter:     rate.NewLimiter(rate.Limit(cfg.BaseRate), 1),
		currentRate: cfg.BaseRate,
		minRate:     cfg.MinRate,
		maxRate:     cfg.MaxRate,
		perMinute:   cfg.PerMinute,
		perHour:     cfg.PerHour,
		increase:    cfg.IncreaseFactor,
		decrease:    cfg.DecreaseFactor,
		interval:    cfg.AdjustmentInterval,
		lastAdjust:  time.Now(),
		now:         time.Now,
	}
}

// Acquire blocks until the per-second, per-minute, and per-hour limits all
// permit another request, or the context is cancelled. The request timestamp
// is recorded on success.
func (g *Governor) Acquire(ctx context.Context) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}
	for {
		wait := g.capDelay()
		if wait == 0 {
			return nil
		}
		zap.L().Debug("governor: window cap reached",
			zap.Duration("wait", wait),
		)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// capDelay records the request and returns zero when the sliding windows
// have room, otherwise the duration until the binding window frees a slot.
func (g *Governor) capDelay() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.prune(now)

	var wait time.Duration
	if n := g.countSince(now.Add(-time.Minute)); n >= g.perMinute {
		oldest := g.window[len(g.window)-n]
		wait = oldest.Add(time.Minute).Sub(now)
	}
	if len(g.window) >= g.perHour {
		oldest := g.window[0]
		if d := oldest.Add(time.Hour).Sub(now); d > wait {
			wait = d
		}
	}
	if wait > 0 {
		return wait
	}
	g.window = append(g.window, now)
	return 0
}

func (g *Governor) prune(now time.Time) {
	cutoff := now.Add(-time.Hour)
	i := 0
	for i < len(g.window) && g.window[i].Before(cutoff) {
		i++
	}
	g.window = g.window[i:]
}

// countSince assumes the window is sorted, which holds because timestamps
// are appended under the lock.
func (g *Governor) countSince(cutoff time.Time) int {
	n := 0
	for i := len(g.window) - 1; i >= 0; i-- {
		if g.window[i].Before(cutoff) {
			break
		}
		n++
	}
	return n
}

// ReportSuccess records a successful request.
func (g *Governor) ReportSuccess() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.successes++
	g.maybeAdjust()
}

// ReportError records a failed request.
func (g *Governor) ReportError() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errors++
	g.maybeAdjust()
}

// ReportRateLimited halves the rate immediately, outside the normal
// adjustment cycle. The event also counts as an error.
func (g *Governor) ReportRateLimited() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errors++
	g.setRate(g.currentRate * 0.5)
	zap.L().Warn("governor: rate limited upstream, halving rate",
		zap.Float64("rate", g.currentRate),
	)
}

// maybeAdjust applies the periodic tuning rule. Caller holds the lock.
func (g *Governor) maybeAdjust() {
	now := g.now()
	if now.Sub(g.lastAdjust) < g.interval {
		return
	}
	total := g.successes + g.errors
	if total > 0 {
		ratio := float64(g.successes) / float64(total)
		switch {
		case ratio > 0.95:
			g.setRate(g.currentRate * g.increase)
		case ratio < 0.8:
			g.setRate(g.currentRate * g.decrease)
		}
		zap.L().Debug("governor: adjustment cycle",
			zap.Float64("success_ratio", ratio),
			zap.Float64("rate", g.currentRate),
		)
	}
	g.successes = 0
	g.errors = 0
	g.lastAdjust = now
}

// setRate clamps and applies a new per-second rate. Caller holds the lock.
func (g *Governor) setRate(r float64) {
	if r > g.maxRate {
		r = g.maxRate
	}
	if r < g.minRate {
		r = g.minRate
	}
	g.currentRate = r
	g.limiter.SetLimit(rate.Limit(r))
}

// Rate returns the current per-second rate.
func (g *Governor) Rate() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentRate
}
