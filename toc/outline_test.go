package toc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutline_MarksActiveChild(t *testing.T) {
	o := NewOutline([]Heading{h(2, "intro"), h(3, "intro-a"), h(5, "deep"), h(2, "usage")}, "intro-a")

	assert.Equal(t, 4, o.Count)
	require.Len(t, o.Sections, 2)

	first := o.Sections[0]
	require.NotNil(t, first.Parent)
	assert.False(t, first.Parent.Active)
	assert.True(t, first.Expanded)
	require.Len(t, first.Children, 2)
	assert.True(t, first.Children[0].Active)
	assert.Equal(t, 2, first.Children[0].Indent)
	assert.Equal(t, 6, first.Children[1].Indent)

	assert.False(t, o.Sections[1].Expanded)
}

func TestNewOutline_ActiveParent(t *testing.T) {
	o := NewOutline([]Heading{h(2, "intro"), h(3, "intro-a")}, "intro")

	require.Len(t, o.Sections, 1)
	assert.True(t, o.Sections[0].Parent.Active)
	assert.False(t, o.Sections[0].Expanded)
}

func TestNewOutline_Empty(t *testing.T) {
	o := NewOutline(nil, "")
	assert.True(t, o.Empty())
	assert.Empty(t, o.Sections)
}
