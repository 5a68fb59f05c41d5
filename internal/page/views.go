package page

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Zachkp/dev-portfolio/internal/content"
	"github.com/Zachkp/dev-portfolio/internal/reveal"
	"github.com/Zachkp/dev-portfolio/internal/theme"
)

// Source hands out the portfolio new views are built from.
type Source interface {
	Portfolio() *content.Portfolio
}

// Live is a Source whose portfolio can be swapped at runtime.
type Live struct {
	p atomic.Pointer[content.Portfolio]
}

func NewLive(p *content.Portfolio) *Live {
	l := &Live{}
	l.p.Store(p)
	return l
}

func (l *Live) Portfolio() *content.Portfolio { return l.p.Load() }

// Set replaces the portfolio for views opened from now on.
func (l *Live) Set(p *content.Portfolio) { l.p.Store(p) }

// Views is the registry of mounted page views.
type Views struct {
	src      Source
	log      *zap.Logger
	onReveal RevealFunc
	now      func() time.Time
	limit    int

	mu    sync.Mutex
	views map[string]*View
}

type Option func(*Views)

// WithRevealHook is called for every first reveal in every view.
func WithRevealHook(fn RevealFunc) Option {
	return func(vs *Views) { vs.onReveal = fn }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(vs *Views) { vs.now = now }
}

// WithLimit caps the number of live views. Opening one more closes the view
// that has been idle the longest. Zero means no cap.
func WithLimit(n int) Option {
	return func(vs *Views) { vs.limit = n }
}

func NewViews(src Source, log *zap.Logger, opts ...Option) *Views {
	vs := &Views{
		src:   src,
		log:   log,
		now:   time.Now,
		views: make(map[string]*View),
	}
	for _, opt := range opts {
		opt(vs)
	}
	return vs
}

// Open mounts a new view with the given initial theme.
func (vs *Views) Open(mode theme.Mode) *View {
	v := New(uuid.NewString(), vs.src.Portfolio(), mode, vs.onReveal)
	v.touch(vs.now())

	vs.mu.Lock()
	var evicted *View
	if vs.limit > 0 && len(vs.views) >= vs.limit {
		evicted = vs.oldestLocked()
		delete(vs.views, evicted.ID)
	}
	vs.views[v.ID] = v
	vs.mu.Unlock()

	if evicted != nil {
		evicted.Close()
		vs.log.Debug("view evicted", zap.String("view", evicted.ID), zap.Int("limit", vs.limit))
	}
	vs.log.Debug("view opened", zap.String("view", v.ID), zap.Int("watches", v.Watching()))
	return v
}

func (vs *Views) oldestLocked() *View {
	var oldest *View
	var seen time.Time
	for _, v := range vs.views {
		if t := v.idleSince(); oldest == nil || t.Before(seen) {
			oldest, seen = v, t
		}
	}
	return oldest
}

// Revealed builds target in its revealed state from a throwaway view of the
// current content. It answers reveal reports for views that were swept,
// evicted or closed, so their content still shows.
func (vs *Views) Revealed(id, target string) (Component, bool) {
	v := New(id, vs.src.Portfolio(), theme.Light, nil)
	defer v.Close()
	c, ok := v.Dispatch(reveal.Entry{Target: target, Ratio: 1})
	if !ok {
		return nil, false
	}
	return c, c.Visible()
}

// Get returns a live view and marks it as recently used.
func (vs *Views) Get(id string) (*View, bool) {
	vs.mu.Lock()
	v, ok := vs.views[id]
	vs.mu.Unlock()
	if !ok {
		return nil, false
	}
	v.touch(vs.now())
	return v, true
}

// Close unmounts and forgets a view. It reports whether the view existed.
func (vs *Views) Close(id string) bool {
	vs.mu.Lock()
	v, ok := vs.views[id]
	delete(vs.views, id)
	vs.mu.Unlock()
	if !ok {
		return false
	}
	v.Close()
	vs.log.Debug("view closed", zap.String("view", id))
	return true
}

// Sweep closes views idle for longer than idle and returns how many it closed.
func (vs *Views) Sweep(idle time.Duration) int {
	cutoff := vs.now().Add(-idle)

	vs.mu.Lock()
	var stale []*View
	for id, v := range vs.views {
		if v.idleSince().Before(cutoff) {
			stale = append(stale, v)
			delete(vs.views, id)
		}
	}
	vs.mu.Unlock()

	for _, v := range stale {
		v.Close()
	}
	if len(stale) > 0 {
		vs.log.Info("swept idle views", zap.Int("closed", len(stale)))
	}
	return len(stale)
}

// Len returns the number of live views.
func (vs *Views) Len() int {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return len(vs.views)
}

// Run sweeps idle views every interval until ctx is done, then closes every
// remaining view.
func (vs *Views) Run(ctx context.Context, interval, idle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			vs.closeAll()
			return nil
		case <-ticker.C:
			vs.Sweep(idle)
		}
	}
}

func (vs *Views) closeAll() {
	vs.mu.Lock()
	all := vs.views
	vs.views = make(map[string]*View)
	vs.mu.Unlock()
	for _, v := range all {
		v.Close()
	}
}
