// Package markdown renders reader comments from Markdown to HTML as templ
// components. Raw HTML in comments is dropped and dangerous link targets are
// blanked.
package markdown

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// linkRel is set on every link in a comment.
const linkRel = "nofollow ugc noopener"

var md = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
	goldmark.WithParserOptions(
		parser.WithASTTransformers(util.Prioritized(ugcLinks{}, 500)),
	),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// ugcLinks marks links as user-generated content.
type ugcLinks struct{}

func (ugcLinks) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.Link, *ast.AutoLink:
			n.SetAttributeString("rel", []byte(linkRel))
		}
		return ast.WalkContinue, nil
	})
}

// Render writes the HTML of the Markdown source src to w.
func Render(w io.Writer, src string) error {
	return md.Convert([]byte(src), w)
}

// Comment returns a templ.Component that renders content as HTML.
func Comment(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := Render(&buf, content); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}
