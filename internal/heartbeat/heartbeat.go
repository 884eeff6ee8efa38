// Package heartbeat drives registered bodies through the health heartbeat
// and keeps their wounds flushed to storage.
package heartbeat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mudhealth/internal/game/body"
)

// Options configures a Manager.
type Options struct {
	// Interval is the wall-clock period between ticks.
	Interval time.Duration
	// FlushEvery is the number of ticks between store flushes. Defaults to 1.
	FlushEvery int
	// Rate scales every healing tick. Defaults to 1.
	Rate float64
	// Offline enables reconnect catch-up from the stored session.
	Offline bool
	Wounds  body.Store
	// Sessions may be nil, in which case blood and last-seen are not kept.
	Sessions body.SessionStore
	// Clock defaults to time.Now.
	Clock  func() time.Time
	Logger *zap.Logger
}

type entry struct {
	mu   sync.Mutex
	body *body.Body
}

// Manager runs the heartbeat for every registered body. Each body is
// ticked sequentially; With serializes outside access against the tick.
//
// Invariant: each registered body is ticked at most once per interval.
type Manager struct {
	opts   Options
	logger *zap.Logger

	running atomic.Bool

	mu     sync.Mutex
	bodies map[string]*entry
	ticks  int
}

// New returns a Manager.
//
// Precondition: opts.Interval must be > 0; opts.Wounds and opts.Logger must be non-nil.
func New(opts Options) *Manager {
	if opts.Interval <= 0 {
		panic("heartbeat.New: interval must be > 0")
	}
	if opts.Wounds == nil || opts.Logger == nil {
		panic("heartbeat.New: Wounds and Logger are required")
	}
	if opts.FlushEvery < 1 {
		opts.FlushEvery = 1
	}
	if opts.Rate == 0 {
		opts.Rate = 1
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Manager{
		opts:   opts,
		logger: opts.Logger.Named("heartbeat"),
		bodies: make(map[string]*entry),
	}
}

// Register loads b's wounds and session and adds it to the heartbeat. With
// offline catch-up enabled the time since the session was last seen is
// healed in one step. Replaces any body already registered under b.ID().
func (m *Manager) Register(ctx context.Context, b *body.Body) error {
	if err := b.Load(ctx, m.opts.Wounds); err != nil {
		return fmt.Errorf("registering %s: %w", b.ID(), err)
	}
	if m.opts.Sessions != nil {
		s, err := m.opts.Sessions.Get(ctx, b.ID())
		switch {
		case errors.Is(err, body.ErrNoSession):
		case err != nil:
			return fmt.Errorf("registering %s: %w", b.ID(), err)
		default:
			b.SetBlood(s.Blood)
			if elapsed := m.opts.Clock().Sub(s.LastSeen); m.opts.Offline && elapsed > 0 {
				removed := b.CatchUp(elapsed, m.opts.Rate, 0)
				m.logger.Info("offline catch-up",
					zap.String("body", b.ID()),
					zap.Duration("elapsed", elapsed),
					zap.Int("removed", removed),
				)
			}
		}
	}

	m.mu.Lock()
	m.bodies[b.ID()] = &entry{body: b}
	m.mu.Unlock()
	m.logger.Debug("body registered", zap.String("body", b.ID()), zap.Int("wounds", len(b.Wounds())))
	return nil
}

// Unregister flushes the body and stores its session before removing it.
// Unknown ids are a no-op. The body is removed even when the flush fails.
func (m *Manager) Unregister(ctx context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.bodies[id]
	delete(m.bodies, id)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return m.persist(ctx, e.body)
}

// With runs fn against the registered body id while no tick touches it.
// Reports whether the body was found.
func (m *Manager) With(id string, fn func(b *body.Body)) bool {
	m.mu.Lock()
	e, ok := m.bodies[id]
	m.mu.Unlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.body)
	return true
}

// IDs returns the registered body ids in sorted order.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.bodies))
	for id := range m.bodies {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (m *Manager) snapshot() []*entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.bodies))
	for id := range m.bodies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*entry, len(ids))
	for i, id := range ids {
		out[i] = m.bodies[id]
	}
	return out
}

// TickOnce advances every registered body by one heartbeat and flushes
// when the flush period comes round. Flush failures are logged; the wounds
// stay dirty for the next flush.
func (m *Manager) TickOnce(ctx context.Context) {
	start := time.Now()
	m.mu.Lock()
	m.ticks++
	flush := m.ticks%m.opts.FlushEvery == 0
	m.mu.Unlock()

	var leaked float64
	removed := 0
	for _, e := range m.snapshot() {
		e.mu.Lock()
		rep := e.body.Tick(m.opts.Rate, 0)
		leaked += rep.Leaked
		removed += rep.Removed
		if flush {
			if err := m.persist(ctx, e.body); err != nil {
				m.logger.Warn("flush failed", zap.String("body", e.body.ID()), zap.Error(err))
			}
		}
		e.mu.Unlock()
	}
	m.logger.Debug("heartbeat",
		zap.Float64("leaked", leaked),
		zap.Int("removed", removed),
		zap.Bool("flushed", flush),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func (m *Manager) persist(ctx context.Context, b *body.Body) error {
	err := b.Flush(ctx, m.opts.Wounds)
	if m.opts.Sessions != nil {
		err = errors.Join(err, m.opts.Sessions.Save(ctx, b.Session(m.opts.Clock())))
	}
	return err
}

// Start runs the tick loop until ctx is cancelled.
//
// Postcondition: Returns ctx.Err().
func (m *Manager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()
	m.running.Store(true)
	defer m.running.Store(false)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.TickOnce(ctx)
		}
	}
}

// Running reports whether the tick loop is live.
func (m *Manager) Running() bool { return m.running.Load() }

// Stop flushes every registered body.
func (m *Manager) Stop(ctx context.Context) error {
	var errs []error
	for _, e := range m.snapshot() {
		e.mu.Lock()
		if err := m.persist(ctx, e.body); err != nil {
			errs = append(errs, fmt.Errorf("flushing %s: %w", e.body.ID(), err))
		}
		e.mu.Unlock()
	}
	return errors.Join(errs...)
}
