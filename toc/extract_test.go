package toc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_CollidingHeadings(t *testing.T) {
	got := Extract(`<h2>Setup</h2><p>x</p><h2>Setup</h2>`, HeaderConfig{H2: true})

	assert.Equal(t, []Heading{
		{ID: "setup", Text: "Setup", Level: 2},
		{ID: "setup-1", Text: "Setup", Level: 2},
	}, got.Headings)
	assert.Equal(t, `<h2 id="setup">Setup</h2><p>x</p><h2 id="setup-1">Setup</h2>`, got.HTML)
}

func TestExtract_LevelFiltering(t *testing.T) {
	got := Extract(`<h1>Title</h1><h2>Intro</h2><h3>Detail</h3>`, HeaderConfig{H2: true})

	assert.Equal(t, []Heading{{ID: "intro", Text: "Intro", Level: 2}}, got.Headings)
	assert.Equal(t, `<h1>Title</h1><h2 id="intro">Intro</h2><h3>Detail</h3>`, got.HTML)
}

func TestExtract_DocumentOrderAcrossNesting(t *testing.T) {
	in := `<section><h2>Goals</h2><div><h3>Energy</h3></div></section><h4>Water</h4><h2>Results</h2>`
	got := Extract(in, AllLevels())

	ids := make([]string, len(got.Headings))
	for i, h := range got.Headings {
		ids[i] = h.ID
	}
	assert.Equal(t, []string{"goals", "energy", "water", "results"}, ids)
	assert.Equal(t, []int{2, 3, 4, 2}, []int{
		got.Headings[0].Level, got.Headings[1].Level, got.Headings[2].Level, got.Headings[3].Level,
	})
}

func TestExtract_TextStripsMarkup(t *testing.T) {
	got := Extract(`<div class="post"><h3>Hello <em>big</em> &amp; bold</h3></div>`, AllLevels())

	require.Len(t, got.Headings, 1)
	assert.Equal(t, "Hello big & bold", got.Headings[0].Text)
	assert.Equal(t, "hello-big-bold", got.Headings[0].ID)
	assert.Equal(t, `<div class="post"><h3 id="hello-big-bold">Hello <em>big</em> &amp; bold</h3></div>`, got.HTML)
}

func TestExtract_KeepsAttributesVerbatim(t *testing.T) {
	got := Extract(`<h2 class="title" data-x='1'>Über Café</h2>`, AllLevels())

	assert.Equal(t, `<h2 id="uber-cafe" class="title" data-x='1'>Über Café</h2>`, got.HTML)
}

func TestExtract_ReplacesExistingID(t *testing.T) {
	got := Extract(`<h2 id="old">New Name</h2>`, AllLevels())

	assert.Equal(t, `<h2 id="new-name">New Name</h2>`, got.HTML)
	assert.Equal(t, "new-name", got.Headings[0].ID)
}

func TestExtract_ReplacesExistingIDInPlace(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`<h2 id="old" data-x='1' class=a>New</h2>`, `<h2 id="new" data-x='1' class=a>New</h2>`},
		{`<h2 class=a ID='old'>New</h2>`, `<h2 class=a ID='new'>New</h2>`},
		{`<h2 data-id="x" id=old>New</h2>`, `<h2 data-id="x" id="new">New</h2>`},
		{`<h2 title="a > b" id = "old" >New</h2>`, `<h2 title="a > b" id = "new" >New</h2>`},
		{`<h2 id class="a">New</h2>`, `<h2 id="new" class="a">New</h2>`},
	}
	for _, tt := range tests {
		got := Extract(tt.input, AllLevels())
		assert.Equal(t, tt.want, got.HTML, "Extract(%q)", tt.input)
	}
}

func TestExtract_FoldsLettersWithoutMarks(t *testing.T) {
	got := Extract(`<h2>Łódź Straße Ørsted</h2>`, AllLevels())

	assert.Equal(t, `<h2 id="lodz-strasse-orsted">Łódź Straße Ørsted</h2>`, got.HTML)
}

func TestExtract_Idempotent(t *testing.T) {
	in := `<h1>Report</h1><h2>Setup</h2><p>a</p><h2>Setup</h2><h3>Café &lt;3</h3><h2></h2>`
	first := Extract(in, AllLevels())
	second := Extract(first.HTML, AllLevels())

	assert.Equal(t, first.Headings, second.Headings)
	assert.Equal(t, first.HTML, second.HTML)
}

func TestExtract_IDsAreUnique(t *testing.T) {
	got := Extract(`<h2>A</h2><h2>A</h2><h2>A 1</h2><h2></h2><h2>?!</h2>`, AllLevels())

	seen := make(map[string]bool)
	for _, h := range got.Headings {
		assert.False(t, seen[h.ID], "duplicate id %q", h.ID)
		seen[h.ID] = true
	}
	assert.Equal(t, []string{"a", "a-1", "a-1-1", "", "-1"}, []string{
		got.Headings[0].ID, got.Headings[1].ID, got.Headings[2].ID, got.Headings[3].ID, got.Headings[4].ID,
	})
}

func TestExtract_MalformedMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ids  []string
		html string
	}{
		{
			name: "unclosed inline inside heading",
			in:   `<h2>Open <b>bold</h2><p>after`,
			ids:  []string{"open-bold"},
			html: `<h2 id="open-bold">Open <b>bold</h2><p>after`,
		},
		{
			name: "stray end tag",
			in:   `</div><h2>A</h2>`,
			ids:  []string{"a"},
			html: `</div><h2 id="a">A</h2>`,
		},
		{
			name: "heading opened inside heading",
			in:   `<h2>One<h3>Two</h3>`,
			ids:  []string{"one", "two"},
			html: `<h2 id="one">One<h3 id="two">Two</h3>`,
		},
		{
			name: "uppercase tags",
			in:   `<H2>Caps</H2>`,
			ids:  []string{"caps"},
			html: `<H2 id="caps">Caps</H2>`,
		},
		{
			name: "script and comment content",
			in:   `<script>var s = "<h2>x</h2>";</script><!-- <h2>no</h2> --><h2>Real</h2>`,
			ids:  []string{"real"},
			html: `<script>var s = "<h2>x</h2>";</script><!-- <h2>no</h2> --><h2 id="real">Real</h2>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.in, AllLevels())
			ids := []string{}
			for _, h := range got.Headings {
				ids = append(ids, h.ID)
			}
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, tt.html, got.HTML)
		})
	}
}

func TestExtract_Empty(t *testing.T) {
	got := Extract("", AllLevels())
	assert.Empty(t, got.Headings)
	assert.Equal(t, "", got.HTML)

	got = Extract(`<h2>Hidden</h2>`, HeaderConfig{})
	assert.Empty(t, got.Headings)
	assert.Equal(t, `<h2>Hidden</h2>`, got.HTML)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello, World!", "hello-world"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Crème brûlée", "creme-brulee"},
		{"Step 2: Install", "step-2-install"},
		{"naïve--approach", "naive-approach"},
		{"Łódź Straße Ørsted", "lodz-strasse-orsted"},
		{"Æsir Œuvre Þing Đakovo", "aesir-oeuvre-thing-dakovo"},
		{"___", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.input), "Slugify(%q)", tt.input)
	}
}
