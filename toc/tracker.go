package toc

import "sync"

const (
	// DefaultLookahead is how far below the scroll offset a heading may start
	// and still count as the active section.
	DefaultLookahead = 100
	// HeaderClearance keeps a scrolled-to heading clear of the sticky header.
	HeaderClearance = 100
)

// State is the lifecycle of a Tracker.
type State int

const (
	Idle State = iota
	Tracking
)

func (s State) String() string {
	if s == Tracking {
		return "tracking"
	}
	return "idle"
}

// Layout resolves a heading id to the vertical offset of its rendered element.
// ok is false when the element is not (or no longer) in the document.
type Layout interface {
	OffsetTop(id string) (top float64, ok bool)
}

// ScrollSource delivers scroll offsets to subscribers.
type ScrollSource interface {
	Position() float64
	Subscribe(fn func(scrollY float64)) (unsubscribe func())
}

// Tracker follows which heading is in view. It is driven from a single event
// loop and is not safe for concurrent use.
type Tracker struct {
	lookahead float64
	headings  []Heading
	activeID  string

	src         ScrollSource
	layout      Layout
	unsubscribe func()
}

// NewTracker returns an idle tracker. A lookahead <= 0 uses DefaultLookahead.
func NewTracker(lookahead float64) *Tracker {
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}
	return &Tracker{lookahead: lookahead}
}

// State reports whether the tracker has headings to follow.
func (t *Tracker) State() State {
	if len(t.headings) == 0 {
		return Idle
	}
	return Tracking
}

// Active returns the id of the heading in view, or "".
func (t *Tracker) Active() string { return t.activeID }

// SetHeadings replaces the heading list and forgets the active id. When the
// tracker is attached it re-subscribes for the new list and runs a mount tick.
func (t *Tracker) SetHeadings(items []Heading) {
	t.headings = append([]Heading(nil), items...)
	t.activeID = ""
	if t.src != nil {
		t.subscribe()
	}
}

// Update runs one scroll tick and returns the active id. The last heading (in
// document order) whose top is at or above scrollY plus the lookahead wins.
// Headings missing from the layout are skipped; when none qualifies the
// previous active id is kept.
func (t *Tracker) Update(scrollY float64, layout Layout) string {
	if layout == nil {
		return t.activeID
	}
	threshold := scrollY + t.lookahead
	for i := len(t.headings) - 1; i >= 0; i-- {
		top, ok := layout.OffsetTop(t.headings[i].ID)
		if ok && top <= threshold {
			t.activeID = t.headings[i].ID
			break
		}
	}
	return t.activeID
}

// ScrollTarget is the scroll offset that brings heading id into view below
// the header.
func (t *Tracker) ScrollTarget(id string, layout Layout) (float64, bool) {
	if layout == nil {
		return 0, false
	}
	top, ok := layout.OffsetTop(id)
	if !ok {
		return 0, false
	}
	return top - HeaderClearance, true
}

// Attach starts following src, resolving headings through layout. Any earlier
// subscription is dropped first.
func (t *Tracker) Attach(src ScrollSource, layout Layout) {
	t.Detach()
	t.src = src
	t.layout = layout
	t.subscribe()
}

// Detach stops following the scroll source.
func (t *Tracker) Detach() {
	if t.unsubscribe != nil {
		t.unsubscribe()
		t.unsubscribe = nil
	}
	t.src = nil
	t.layout = nil
}

func (t *Tracker) subscribe() {
	if t.unsubscribe != nil {
		t.unsubscribe()
		t.unsubscribe = nil
	}
	if t.State() == Idle {
		return
	}
	layout := t.layout
	t.unsubscribe = t.src.Subscribe(func(y float64) {
		t.Update(y, layout)
	})
	t.Update(t.src.Position(), layout)
}

// ScrollFeed is an in-process ScrollSource. Scroll dispatches synchronously
// to the listeners registered at the time of the call.
type ScrollFeed struct {
	mu        sync.Mutex
	y         float64
	nextID    int
	listeners []feedListener
}

type feedListener struct {
	id int
	fn func(float64)
}

// Position returns the last offset passed to Scroll.
func (f *ScrollFeed) Position() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.y
}

// Subscribe registers fn. The returned func removes it and may be called more
// than once.
func (f *ScrollFeed) Subscribe(fn func(float64)) func() {
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.listeners = append(f.listeners, feedListener{id: id, fn: fn})
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, l := range f.listeners {
			if l.id == id {
				f.listeners = append(f.listeners[:i], f.listeners[i+1:]...)
				return
			}
		}
	}
}

// Scroll records y and notifies listeners.
func (f *ScrollFeed) Scroll(y float64) {
	f.mu.Lock()
	f.y = y
	fns := make([]func(float64), len(f.listeners))
	for i, l := range f.listeners {
		fns[i] = l.fn
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(y)
	}
}

// Listeners returns the number of active subscriptions.
func (f *ScrollFeed) Listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// Offsets is a Layout backed by a map of heading id to top offset.
type Offsets map[string]float64

// OffsetTop implements Layout.
func (o Offsets) OffsetTop(id string) (float64, bool) {
	top, ok := o[id]
	return top, ok
}
