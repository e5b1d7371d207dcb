// Package toc builds tables of contents for CMS post bodies: it anchors the
// headings of an HTML fragment, groups them into outline sections, and tracks
// which section is in view while a reader scrolls.
package toc

// Heading is one entry of a table of contents.
type Heading struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// HeaderConfig selects which heading levels take part in the outline.
// Disabled levels are left untouched in the HTML.
type HeaderConfig struct {
	H1 bool `json:"h1" toml:"h1"`
	H2 bool `json:"h2" toml:"h2"`
	H3 bool `json:"h3" toml:"h3"`
	H4 bool `json:"h4" toml:"h4"`
	H5 bool `json:"h5" toml:"h5"`
	H6 bool `json:"h6" toml:"h6"`
}

// AllLevels enables h1 through h6.
func AllLevels() HeaderConfig {
	return HeaderConfig{H1: true, H2: true, H3: true, H4: true, H5: true, H6: true}
}

// Enabled reports whether headings of the given level are included.
func (c HeaderConfig) Enabled(level int) bool {
	switch level {
	case 1:
		return c.H1
	case 2:
		return c.H2
	case 3:
		return c.H3
	case 4:
		return c.H4
	case 5:
		return c.H5
	case 6:
		return c.H6
	}
	return false
}

// Processed is the result of Extract.
type Processed struct {
	// HTML is the input with id attributes set on every included heading.
	// All other bytes are unchanged.
	HTML     string
	Headings []Heading
}

// Extract anchors the headings of rawHTML enabled by cfg and lists them in
// document order. Ids are slugs of the heading text, suffixed -1, -2, ... on
// collision. Malformed markup is recovered leniently; Extract never fails and
// is safe for concurrent use.
func Extract(rawHTML string, cfg HeaderConfig) Processed {
	t := parseTree(rawHTML)
	used := make(map[string]struct{})
	headings := []Heading{}
	for _, idx := range t.headings {
		level := headingLevel(t.nodes[idx].tag)
		if !cfg.Enabled(level) {
			continue
		}
		text := t.textContent(idx)
		id := uniqueID(Slugify(text), used)
		t.setID(idx, id)
		headings = append(headings, Heading{ID: id, Text: text, Level: level})
	}
	return Processed{HTML: t.render(), Headings: headings}
}
