package toc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var trackedHeadings = []Heading{h(2, "a"), h(2, "b"), h(2, "c")}

func TestTracker_Update(t *testing.T) {
	layout := Offsets{"a": 0, "b": 500, "c": 1000}
	tests := []struct {
		name    string
		scrollY float64
		want    string
	}{
		{"top of page", 0, "a"},
		{"threshold past second heading", 450, "b"},
		{"just short of second heading", 399, "a"},
		{"threshold exactly on heading", 400, "b"},
		{"bottom", 1000, "c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(DefaultLookahead)
			tr.SetHeadings(trackedHeadings)
			assert.Equal(t, tt.want, tr.Update(tt.scrollY, layout))
		})
	}
}

func TestTracker_SkipsUnresolvedHeadings(t *testing.T) {
	tr := NewTracker(0)
	tr.SetHeadings(trackedHeadings)

	assert.Equal(t, "a", tr.Update(450, Offsets{"a": 0, "c": 1000}))
}

func TestTracker_AboveAllHeadings(t *testing.T) {
	tr := NewTracker(100)
	tr.SetHeadings(trackedHeadings)

	assert.Equal(t, "", tr.Update(0, Offsets{"a": 500, "b": 900}))
	assert.Equal(t, "a", tr.Update(450, Offsets{"a": 500, "b": 900}))
	// Scrolling back above every heading keeps the last hit.
	assert.Equal(t, "a", tr.Update(0, Offsets{"a": 500, "b": 900}))
	assert.Equal(t, "a", tr.Update(0, nil))
}

func TestTracker_SetHeadingsResets(t *testing.T) {
	tr := NewTracker(0)
	assert.Equal(t, Idle, tr.State())

	tr.SetHeadings(trackedHeadings)
	tr.Update(1000, Offsets{"a": 0, "b": 500, "c": 1000})
	assert.Equal(t, Tracking, tr.State())
	assert.Equal(t, "c", tr.Active())

	tr.SetHeadings(nil)
	assert.Equal(t, Idle, tr.State())
	assert.Equal(t, "", tr.Active())
}

func TestTracker_AttachLifecycle(t *testing.T) {
	feed := &ScrollFeed{}
	layout := Offsets{"a": 0, "b": 500, "c": 1000, "x": 200, "y": 2000}
	feed.Scroll(450)

	tr := NewTracker(0)
	tr.SetHeadings(trackedHeadings)
	tr.Attach(feed, layout)
	assert.Equal(t, 1, feed.Listeners())
	assert.Equal(t, "b", tr.Active(), "mount tick")

	feed.Scroll(1000)
	assert.Equal(t, "c", tr.Active())

	tr.SetHeadings([]Heading{h(2, "x"), h(2, "y")})
	assert.Equal(t, 1, feed.Listeners(), "re-subscribed, not stacked")
	assert.Equal(t, "x", tr.Active())

	tr.Detach()
	assert.Equal(t, 0, feed.Listeners())
	feed.Scroll(5000)
	assert.Equal(t, "x", tr.Active())
}

func TestTracker_AttachWhileIdle(t *testing.T) {
	feed := &ScrollFeed{}
	tr := NewTracker(0)
	tr.Attach(feed, Offsets{"a": 0})
	assert.Equal(t, 0, feed.Listeners())

	tr.SetHeadings([]Heading{h(2, "a")})
	assert.Equal(t, 1, feed.Listeners())
	assert.Equal(t, "a", tr.Active())
}

func TestTracker_ScrollTarget(t *testing.T) {
	tr := NewTracker(0)
	top, ok := tr.ScrollTarget("b", Offsets{"b": 500})
	assert.True(t, ok)
	assert.Equal(t, float64(400), top)

	_, ok = tr.ScrollTarget("missing", Offsets{})
	assert.False(t, ok)
}

func TestScrollFeed_UnsubscribeTwice(t *testing.T) {
	feed := &ScrollFeed{}
	calls := 0
	unsub := feed.Subscribe(func(float64) { calls++ })
	other := feed.Subscribe(func(float64) {})

	unsub()
	unsub()
	feed.Scroll(10)

	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, feed.Listeners())
	other()
	assert.Equal(t, 0, feed.Listeners())
	assert.Equal(t, float64(10), feed.Position())
}
