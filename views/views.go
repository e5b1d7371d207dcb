// Package views is the default, unstyled template set used by "greensite
// serve". Sites that want their own look pass their own ViewFuncs instead.
package views

import (
	"context"
	"embed"
	"html/template"
	"time"

	"github.com/a-h/templ"

	"github.com/greenusek/greensite"
)

//go:embed templates/*.html
var files embed.FS

var pageNames = []string{"home", "blogs", "category", "post", "categories", "notfound", "servererror"}

// document is the data every full page template receives.
type document struct {
	Site string
	Page any
}

type set struct {
	site     string
	partials *template.Template
	pages    map[string]*template.Template
}

var funcs = template.FuncMap{
	"categoryPath": greensite.CategoryPath,
	"postPath":     greensite.PostPath,
	"render": func(c templ.Component) (template.HTML, error) {
		if c == nil {
			return "", nil
		}
		return templ.ToGoHTML(context.Background(), c)
	},
	"date": func(t time.Time) string {
		return t.Format("January 2, 2006")
	},
	"isoDate": func(t time.Time) string {
		return t.Format(time.RFC3339)
	},
}

func parse(site string) *set {
	base := template.Must(template.New("").Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/partials.html"))
	s := &set{site: site, pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		s.pages[name] = template.Must(template.Must(base.Clone()).ParseFS(files, "templates/"+name+".html"))
	}
	s.partials = base
	return s
}

func (s *set) page(name string, data any) templ.Component {
	return templ.FromGoHTML(s.pages[name].Lookup("layout"), document{Site: s.site, Page: data})
}

func (s *set) partial(name string, data any) templ.Component {
	return templ.FromGoHTML(s.partials.Lookup(name), data)
}

// Default returns the built-in views for a site called siteName.
func Default(siteName string) greensite.ViewFuncs {
	s := parse(siteName)
	return greensite.ViewFuncs{
		Home:     func(p greensite.ListingPage) templ.Component { return s.page("home", p) },
		Blogs:    func(p greensite.ListingPage) templ.Component { return s.page("blogs", p) },
		Category: func(p greensite.ListingPage) templ.Component { return s.page("category", p) },
		PostList: func(p greensite.ListingPage) templ.Component { return s.partial("postlist", p) },
		Post:     func(p greensite.PostPage) templ.Component { return s.page("post", p) },
		Categories: func(p greensite.CategoriesPage) templ.Component {
			return s.page("categories", p)
		},
		Comments: func(c greensite.CommentsSection) templ.Component {
			return s.partial("comments", c)
		},
		CommentForm: func(f greensite.CommentForm) templ.Component {
			return s.partial("commentform", f)
		},
		NotFound:    func() templ.Component { return s.page("notfound", nil) },
		ServerError: func() templ.Component { return s.page("servererror", nil) },
	}
}
