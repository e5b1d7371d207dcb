package greensite

import (
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/greenusek/greensite/cms"
	"github.com/greenusek/greensite/markdown"
)

const commenterSession = "commenter"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateComment checks a submitted form and fills in f.Errors.
func ValidateComment(f *CommentForm) {
	f.Errors = make(map[string]string)
	f.Author = strings.TrimSpace(f.Author)
	f.Email = strings.TrimSpace(f.Email)
	f.URL = strings.TrimSpace(f.URL)
	f.Content = strings.TrimSpace(f.Content)

	if f.Author == "" {
		f.Errors["author"] = "Name is required"
	}
	if !emailPattern.MatchString(f.Email) {
		f.Errors["email"] = "Invalid email address"
	}
	if f.AllowURLs && f.URL != "" && !isWebURL(f.URL) {
		f.Errors["url"] = "Invalid URL"
	}
	if f.Content == "" {
		f.Errors["content"] = "Comment is required"
	}
}

func isWebURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// rememberCommenter stores the commenter's details for the next form.
func rememberCommenter(c echo.Context, f CommentForm) error {
	sess, err := session.Get(commenterSession, c)
	if err != nil {
		return err
	}
	sess.Values["author"] = f.Author
	sess.Values["email"] = f.Email
	sess.Values["url"] = f.URL
	return sess.Save(c.Request(), c.Response())
}

// commenterForm returns an empty form prefilled from the session.
func commenterForm(c echo.Context, slug string, cfg cms.CommentConfig) CommentForm {
	f := CommentForm{Slug: slug, AllowURLs: cfg.AllowURLs, CSRFToken: CsrfToken(c)}
	sess, err := session.Get(commenterSession, c)
	if err != nil {
		return f
	}
	f.Author, _ = sess.Values["author"].(string)
	f.Email, _ = sess.Values["email"].(string)
	if cfg.AllowURLs {
		f.URL, _ = sess.Values["url"].(string)
	}
	return f
}

func commentViews(comments []cms.Comment) []CommentView {
	views := make([]CommentView, 0, len(comments))
	for _, cm := range comments {
		views = append(views, CommentView{
			Comment:  cm,
			Initials: Initials(cm.Author),
			Body:     markdown.Comment(cm.Content),
		})
	}
	return views
}

func (a *App) handleComments(c echo.Context) error {
	slug := c.Param("slug")
	res, err := a.source.GetComments(c.Request().Context(), slug, 1, 0)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	if !res.Config.Enabled {
		return c.NoContent(http.StatusNoContent)
	}
	return Render(c, a.Views.Comments(CommentsSection{
		Slug:     slug,
		Comments: commentViews(res.Comments),
		Total:    res.Pagination.TotalComments,
		Config:   res.Config,
		Form:     commenterForm(c, slug, res.Config),
	}))
}

func (a *App) handleCommentSubmit(c echo.Context) error {
	slug := c.Param("slug")
	ctx := c.Request().Context()

	res, err := a.source.GetComments(ctx, slug, 1, 1)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	if !res.Config.Enabled {
		return echo.NewHTTPError(http.StatusForbidden, "comments are disabled")
	}

	f := CommentForm{
		Slug:            slug,
		Author:          c.FormValue("author"),
		Email:           c.FormValue("email"),
		URL:             c.FormValue("url"),
		Content:         c.FormValue("content"),
		AllowEmailUsage: c.FormValue("allowEmailUsage") != "",
		AllowURLs:       res.Config.AllowURLs,
		CSRFToken:       CsrfToken(c),
	}
	if !f.AllowURLs {
		f.URL = ""
	}

	ip := c.RealIP()
	if !a.commentLimiter.Check(ip) {
		f.Message = "Too many comments. Please try again later."
		return RenderStatus(c, http.StatusTooManyRequests, a.Views.CommentForm(f))
	}

	ValidateComment(&f)
	if !f.Valid() {
		return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.CommentForm(f))
	}

	a.commentLimiter.Record(ip)
	err = a.source.CreateComment(ctx, cms.CreateCommentInput{
		Slug:            slug,
		Author:          f.Author,
		Email:           f.Email,
		URL:             f.URL,
		Content:         f.Content,
		AllowEmailUsage: f.AllowEmailUsage,
	})
	var apiErr *cms.APIError
	if errors.As(err, &apiErr) {
		f.Message = apiErr.Message
		return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.CommentForm(f))
	}
	if err != nil {
		return err
	}

	if err := rememberCommenter(c, f); err != nil {
		c.Logger().Warnf("save commenter session: %v", err)
	}
	c.Logger().Infof("comment submitted on %s by %s", slug, ip)
	f.Submitted = true
	f.Content = ""
	return Render(c, a.Views.CommentForm(f))
}
