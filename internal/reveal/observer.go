// Package reveal holds the scroll-triggered reveal mechanism: viewport watches
// keyed by DOM id, the one-shot hidden/revealed state and the animation
// parameters derived from it.
package reveal

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Margin grows or shrinks the viewport used for intersection, in CSS pixels.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// ParseMargin reads a CSS-style margin with one to four pixel values,
// e.g. "0px 0px -50px 0px".
func ParseMargin(s string) (Margin, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 4 {
		return Margin{}, fmt.Errorf("root margin %q: want 1 to 4 values", s)
	}
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSuffix(f, "px"), 64)
		if err != nil {
			return Margin{}, fmt.Errorf("root margin %q: %w", s, err)
		}
		vals[i] = v
	}
	switch len(vals) {
	case 1:
		return Margin{vals[0], vals[0], vals[0], vals[0]}, nil
	case 2:
		return Margin{vals[0], vals[1], vals[0], vals[1]}, nil
	case 3:
		return Margin{vals[0], vals[1], vals[2], vals[1]}, nil
	}
	return Margin{vals[0], vals[1], vals[2], vals[3]}, nil
}

// MustMargin is ParseMargin for literals.
func MustMargin(s string) Margin {
	m, err := ParseMargin(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Margin) String() string {
	return fmt.Sprintf("%spx %spx %spx %spx", num(m.Top), num(m.Right), num(m.Bottom), num(m.Left))
}

// Options configure a single watch.
type Options struct {
	Threshold  float64
	RootMargin Margin
}

func (o Options) Validate() error {
	if o.Threshold < 0 || o.Threshold > 1 {
		return fmt.Errorf("threshold %v outside [0,1]", o.Threshold)
	}
	return nil
}

// Entry is one intersection report for a target.
type Entry struct {
	Target string
	// Ratio is the visible fraction of the target, in [0,1].
	Ratio float64
	// Intersecting is set by the observer: true when the crossing went inward.
	Intersecting bool
}

type watch struct {
	target string
	opts   Options
	once   bool
	fn     func(Entry)
	inside bool // guarded by Observer.mu

	// mu is held while fn runs, so removal waits out a callback in flight.
	mu   sync.Mutex
	live bool
}

// crossed reports whether ratio puts the watch on the other side of its
// threshold. A zero threshold counts any visible pixel as inside.
func (w *watch) crossed(ratio float64) bool {
	inside := ratio >= w.opts.Threshold
	if w.opts.Threshold == 0 {
		inside = ratio > 0
	}
	if inside == w.inside {
		return false
	}
	w.inside = inside
	return true
}

// Observer tracks watches for many targets. One Observer belongs to one page
// view.
type Observer struct {
	mu      sync.Mutex
	watches map[string][]*watch
	closed  bool
}

func NewObserver() *Observer {
	return &Observer{watches: make(map[string][]*watch)}
}

// Observe registers fn for threshold crossings of target. An empty target or a
// disconnected observer registers nothing. The returned release func is
// idempotent; once it returns fn is not running and is never called again.
//
// fn runs with its watch held and must not call its own release.
func (o *Observer) Observe(target string, opts Options, fn func(Entry)) (release func()) {
	release, _ = o.observe(target, opts, fn, false)
	return release
}

// observe registers a watch and reports whether one was created. A once
// watch drops itself right before delivering its first inward crossing.
func (o *Observer) observe(target string, opts Options, fn func(Entry), once bool) (func(), bool) {
	if target == "" || fn == nil {
		return func() {}, false
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return func() {}, false
	}

	w := &watch{target: target, opts: opts, once: once, fn: fn, live: true}
	o.watches[target] = append(o.watches[target], w)

	var released sync.Once
	return func() {
		released.Do(func() { o.remove(w) })
	}, true
}

func (o *Observer) remove(w *watch) {
	w.mu.Lock()
	w.live = false
	w.mu.Unlock()
	o.drop(w)
}

func (o *Observer) drop(w *watch) {
	o.mu.Lock()
	defer o.mu.Unlock()
	list := o.watches[w.target]
	for i, cur := range list {
		if cur == w {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(o.watches, w.target)
		return
	}
	o.watches[w.target] = list
}

// Dispatch feeds an intersection report to every watch on e.Target and returns
// how many callbacks ran.
func (o *Observer) Dispatch(e Entry) int {
	type call struct {
		w *watch
		e Entry
	}

	o.mu.Lock()
	var calls []call
	for _, w := range o.watches[e.Target] {
		if !w.crossed(e.Ratio) {
			continue
		}
		ce := e
		ce.Intersecting = w.inside
		calls = append(calls, call{w, ce})
	}
	o.mu.Unlock()

	n := 0
	for _, c := range calls {
		if o.fire(c.w, c.e) {
			n++
		}
	}
	return n
}

// fire runs the callback unless the watch was released after Dispatch picked
// it up.
func (o *Observer) fire(w *watch, e Entry) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.live {
		return false
	}
	if w.once && e.Intersecting {
		w.live = false
		o.drop(w)
	}
	w.fn(e)
	return true
}

// Len returns the number of live watches.
func (o *Observer) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, list := range o.watches {
		n += len(list)
	}
	return n
}

// Disconnect drops every watch. Later Observe calls are no-ops. Callbacks
// already running finish before Disconnect returns.
func (o *Observer) Disconnect() {
	o.mu.Lock()
	all := o.watches
	o.watches = make(map[string][]*watch)
	o.closed = true
	o.mu.Unlock()

	for _, list := range all {
		for _, w := range list {
			w.mu.Lock()
			w.live = false
			w.mu.Unlock()
		}
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
