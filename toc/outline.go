package toc

// OutlineEntry is a heading as shown in the outline widget.
type OutlineEntry struct {
	Heading
	Active bool
	// Indent is the extra nesting step for children: (level-2)*2, capped at 6.
	Indent int
}

// OutlineSection is a Section decorated with active state.
type OutlineSection struct {
	Parent   *OutlineEntry
	Children []OutlineEntry
	// Expanded is set when one of the children is active.
	Expanded bool
}

// Outline is the view model of the table-of-contents widget.
type Outline struct {
	Count    int
	Sections []OutlineSection
}

// Empty reports whether there is nothing to show.
func (o Outline) Empty() bool { return o.Count == 0 }

// NewOutline groups items and marks the entry whose id is activeID.
func NewOutline(items []Heading, activeID string) Outline {
	out := Outline{Count: len(items)}
	for _, s := range Group(items) {
		sec := OutlineSection{}
		if s.Parent != nil {
			sec.Parent = &OutlineEntry{Heading: *s.Parent, Active: activeID != "" && s.Parent.ID == activeID}
		}
		for _, c := range s.Children {
			active := activeID != "" && c.ID == activeID
			sec.Children = append(sec.Children, OutlineEntry{
				Heading: c,
				Active:  active,
				Indent:  min(max(c.Level-2, 0)*2, 6),
			})
			if active {
				sec.Expanded = true
			}
		}
		out.Sections = append(out.Sections, sec)
	}
	return out
}
