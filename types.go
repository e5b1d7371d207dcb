package greensite

import (
	"github.com/a-h/templ"

	"github.com/greenusek/greensite/cms"
	"github.com/greenusek/greensite/toc"
)

// PostCard is a post as it appears in listings.
type PostCard struct {
	cms.Post
	Link        string
	ReadingTime int // minutes, estimated from the description
}

// ListingPage is a paginated list of posts: the home page, the blog index
// and the category pages.
type ListingPage struct {
	Title       string
	Description string
	Path        string // listing path without query, e.g. "/category/energy/"
	Tag         string // set on category pages
	Query       string
	Featured    *PostCard // first post of the blog index, page 1 only
	Posts       []PostCard
	TotalPosts  int
	Pager       Pager
}

// PostPage is a single post with its table of contents.
type PostPage struct {
	Post        cms.Post
	URL         string
	Body        templ.Component // post HTML with heading anchors
	Headings    []toc.Heading
	Outline     toc.Outline
	ReadingTime int
	WordCount   int
	Related     []PostCard
}

// CategoryInfo is a tag with its display metadata and post count.
type CategoryInfo struct {
	Tag         string
	Label       string
	Description string
	PostCount   int
	Link        string
}

// CategoriesPage lists every tag, the most used first.
type CategoriesPage struct {
	Popular []CategoryInfo
	Others  []CategoryInfo
	All     []CategoryInfo
}

// CommentView is a published comment ready for rendering.
type CommentView struct {
	cms.Comment
	Initials string
	Body     templ.Component
}

// CommentsSection is the comment thread and form under a post.
type CommentsSection struct {
	Slug     string
	Comments []CommentView
	Total    int
	Config   cms.CommentConfig
	Form     CommentForm
}

// CommentForm is the state of the comment form. Errors maps a field name
// (author, email, url, content) to its message; Message holds errors that
// belong to no single field.
type CommentForm struct {
	Slug            string
	Author          string
	Email           string
	URL             string
	Content         string
	AllowEmailUsage bool
	AllowURLs       bool
	Errors          map[string]string
	Message         string
	Submitted       bool
	CSRFToken       string
}

// Valid reports whether the form has no errors.
func (f CommentForm) Valid() bool {
	return len(f.Errors) == 0 && f.Message == ""
}

// Action is the form's submit path.
func (f CommentForm) Action() string {
	return PostPath(f.Slug) + "comments/"
}
