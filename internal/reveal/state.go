package reveal

import "sync"

// Phase of a reveal. The only transition is Hidden -> Revealed.
type Phase int

const (
	Hidden Phase = iota
	Revealed
)

func (p Phase) String() string {
	if p == Revealed {
		return "revealed"
	}
	return "hidden"
}

// State is the per-instance visibility flag. The zero value is Hidden.
type State struct {
	mu    sync.Mutex
	phase Phase
}

func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *State) Visible() bool {
	return s.Phase() == Revealed
}

// Reveal moves the state to Revealed and reports whether this call made the
// transition.
func (s *State) Reveal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == Revealed {
		return false
	}
	s.phase = Revealed
	return true
}

// Reveal couples a State with a single watch on an Observer.
type Reveal struct {
	opts  Options
	state State

	mu      sync.Mutex
	target  string
	release func()
	onShow  func()
}

// New returns a hidden reveal. It panics if opts fail Validate; options are
// meant to be literals, like MustMargin.
func New(opts Options) *Reveal {
	if err := opts.Validate(); err != nil {
		panic(err)
	}
	return &Reveal{opts: opts}
}

// OnReveal sets a hook that runs once, right after the transition.
func (r *Reveal) OnReveal(fn func()) {
	r.mu.Lock()
	r.onShow = fn
	r.mu.Unlock()
}

// Attach watches target on o. Attaching again releases the previous watch. An
// empty target leaves the reveal unwatched, so it never reveals.
func (r *Reveal) Attach(o *Observer, target string) {
	r.mu.Lock()
	prev := r.release
	r.target = target
	r.release = nil
	r.mu.Unlock()
	if prev != nil {
		prev()
	}
	if o == nil || target == "" || r.state.Visible() {
		return
	}

	release, ok := o.observe(target, r.opts, r.Handle, true)
	if !ok {
		return
	}
	r.mu.Lock()
	r.release = release
	r.mu.Unlock()
}

// Detach releases the watch. Safe to call more than once. Once it returns the
// reveal can no longer change state through the observer.
func (r *Reveal) Detach() {
	r.mu.Lock()
	release := r.release
	r.release = nil
	r.mu.Unlock()
	if release != nil {
		release()
	}
}

// Handle reacts to an intersection entry. Only inward crossings count. The
// observer drops the watch itself before the first inward crossing arrives.
func (r *Reveal) Handle(e Entry) {
	if !e.Intersecting {
		return
	}
	if !r.state.Reveal() {
		return
	}

	r.mu.Lock()
	fn := r.onShow
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (r *Reveal) Visible() bool { return r.state.Visible() }

func (r *Reveal) Phase() Phase { return r.state.Phase() }

func (r *Reveal) Options() Options { return r.opts }

func (r *Reveal) Target() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target
}

// Watching reports whether the reveal still waits on a registration.
func (r *Reveal) Watching() bool {
	r.mu.Lock()
	attached := r.release != nil
	r.mu.Unlock()
	return attached && !r.state.Visible()
}
