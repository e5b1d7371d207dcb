package toc

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// node is one entry in the document arena. Element nodes keep the raw bytes of
// their start and end tags; every other token (text, comments, doctypes, stray
// end tags) is a leaf that keeps its raw bytes verbatim.
type node struct {
	element  bool
	tag      string
	tokType  html.TokenType
	start    []byte
	end      []byte // nil when the element was closed implicitly
	text     string // decoded text, text tokens only
	attrs    []html.Attribute
	parent   int
	children []int

	// id is the anchor assigned by Extract; rewrite is set when start must be
	// re-rendered instead of copied.
	id      string
	rewrite bool
}

// tree is an arena of nodes. nodes[0] is the document root.
type tree struct {
	nodes    []node
	headings []int // heading element indices in document order
}

func parseTree(raw string) *tree {
	t := &tree{nodes: []node{{element: true, parent: -1}}}
	open := []int{0}

	z := html.NewTokenizer(strings.NewReader(raw))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF, or input the tokenizer cannot continue past. Either way
			// the arena holds everything recovered so far.
			break
		}
		// Raw must be copied before TagName/Text, which rewrite the buffer.
		rawTok := append([]byte(nil), z.Raw()...)
		cur := open[len(open)-1]

		switch tt {
		case html.TextToken:
			t.add(cur, node{tokType: tt, start: rawTok, text: string(z.Text())})

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			n := node{element: true, tag: string(name), tokType: tt, start: rawTok}
			if headingLevel(n.tag) > 0 {
				for hasAttr {
					var key, val []byte
					key, val, hasAttr = z.TagAttr()
					n.attrs = append(n.attrs, html.Attribute{Key: string(key), Val: string(val)})
				}
				// A heading never nests inside another heading.
				if headingLevel(t.nodes[cur].tag) > 0 {
					open = open[:len(open)-1]
					cur = open[len(open)-1]
				}
			}
			idx := t.add(cur, n)
			if headingLevel(n.tag) > 0 {
				t.headings = append(t.headings, idx)
			}
			if tt == html.StartTagToken && !isVoid(n.tag) {
				open = append(open, idx)
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if i := matchOpen(t, open, string(name)); i > 0 {
				t.nodes[open[i]].end = rawTok
				open = open[:i]
				continue
			}
			t.add(cur, node{tokType: tt, start: rawTok})

		default:
			t.add(cur, node{tokType: tt, start: rawTok})
		}
	}
	return t
}

func (t *tree) add(parent int, n node) int {
	n.parent = parent
	t.nodes = append(t.nodes, n)
	idx := len(t.nodes) - 1
	t.nodes[parent].children = append(t.nodes[parent].children, idx)
	return idx
}

// matchOpen returns the stack position of the innermost open element closed by
// an end tag called name, or 0 if the end tag closes nothing. Any heading end
// tag closes whichever heading is open.
func matchOpen(t *tree, open []int, name string) int {
	heading := headingLevel(name) > 0
	for i := len(open) - 1; i > 0; i-- {
		tag := t.nodes[open[i]].tag
		if tag == name || (heading && headingLevel(tag) > 0) {
			return i
		}
	}
	return 0
}

// textContent concatenates the decoded text beneath idx in document order.
func (t *tree) textContent(idx int) string {
	var b strings.Builder
	var walk func(int)
	walk = func(i int) {
		n := &t.nodes[i]
		if n.tokType == html.TextToken {
			b.WriteString(n.text)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(idx)
	return b.String()
}

// setID records id on the element at idx. The start tag is rewritten only
// when the id actually changes, so already-annotated input round-trips.
func (t *tree) setID(idx int, id string) {
	n := &t.nodes[idx]
	n.id = id
	for _, a := range n.attrs {
		if a.Namespace == "" && a.Key == "id" && a.Val == id {
			return
		}
	}
	n.rewrite = true
}

func (t *tree) render() string {
	var buf bytes.Buffer
	var walk func(int)
	walk = func(i int) {
		n := &t.nodes[i]
		if n.rewrite {
			buf.WriteString(n.startTagWithID())
		} else {
			buf.Write(n.start)
		}
		for _, c := range n.children {
			walk(c)
		}
		buf.Write(n.end)
	}
	walk(0)
	return buf.String()
}

func (n *node) startTagWithID() string {
	val := html.EscapeString(n.id)
	from, to, quote, hasValue, ok := idValueSpan(n.start, len(n.tag))
	switch {
	case !ok:
		// Splice the attribute in right after the tag name so the rest of the
		// tag is kept as written.
		cut := 1 + len(n.tag)
		return string(n.start[:cut]) + ` id="` + val + `"` + string(n.start[cut:])
	case !hasValue:
		return string(n.start[:from]) + `="` + val + `"` + string(n.start[from:])
	case quote == 0:
		return string(n.start[:from]) + `"` + val + `"` + string(n.start[to:])
	}
	return string(n.start[:from]) + val + string(n.start[to:])
}

// idValueSpan finds the first id attribute in a raw start tag. from:to is its
// value without quotes; an attribute written without a value reports
// hasValue false and from at the end of its name. Attributes are scanned the
// way the tokenizer reads them.
func idValueSpan(raw []byte, tagLen int) (from, to int, quote byte, hasValue, ok bool) {
	i := 1 + tagLen
	for i < len(raw) && raw[i] != '>' {
		if isTagSpace(raw[i]) || raw[i] == '/' {
			i++
			continue
		}
		nameStart := i
		for i < len(raw) && !isTagSpace(raw[i]) && raw[i] != '=' && raw[i] != '>' && raw[i] != '/' {
			i++
		}
		isID := bytes.EqualFold(raw[nameStart:i], []byte("id"))
		nameEnd := i

		j := i
		for j < len(raw) && isTagSpace(raw[j]) {
			j++
		}
		if j >= len(raw) || raw[j] != '=' {
			if isID {
				return nameEnd, nameEnd, 0, false, true
			}
			continue
		}
		j++
		for j < len(raw) && isTagSpace(raw[j]) {
			j++
		}
		var q byte
		if j < len(raw) && (raw[j] == '"' || raw[j] == '\'') {
			q = raw[j]
			j++
		}
		start := j
		for j < len(raw) {
			if q != 0 && raw[j] == q {
				break
			}
			if q == 0 && (isTagSpace(raw[j]) || raw[j] == '>') {
				break
			}
			j++
		}
		if isID {
			return start, j, q, true, true
		}
		if q != 0 && j < len(raw) {
			j++
		}
		i = j
	}
	return 0, 0, 0, false, false
}

func isTagSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func headingLevel(tag string) int {
	switch atom.Lookup([]byte(tag)) {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

func isVoid(tag string) bool {
	switch atom.Lookup([]byte(tag)) {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img,
		atom.Input, atom.Link, atom.Meta, atom.Param, atom.Source, atom.Track, atom.Wbr:
		return true
	}
	return false
}
