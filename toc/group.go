package toc

// Section is one top-level outline entry: an h2 and the deeper headings that
// follow it. Parent is nil for a leading run of deep headings that precede the
// first h2.
type Section struct {
	Parent   *Heading  `json:"parent"`
	Children []Heading `json:"children"`
}

// Group folds a flat heading list into sections in a single pass.
//
// An h1 seen after the first section has started matches no rule and is left
// out of the result. Existing outlines depend on that shape, so it is kept.
func Group(items []Heading) []Section {
	sections := []Section{}
	for _, item := range items {
		switch {
		case item.Level == 2:
			parent := item
			sections = append(sections, Section{Parent: &parent, Children: []Heading{}})
		case item.Level > 2 && len(sections) > 0:
			last := &sections[len(sections)-1]
			last.Children = append(last.Children, item)
		case len(sections) == 0:
			sections = append(sections, Section{Children: []Heading{item}})
		}
	}
	return sections
}
