package greensite

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/greenusek/greensite/cms"
	"github.com/greenusek/greensite/toc"
)

const (
	homePageSize      = 6
	blogsPageSize     = 4
	categoryPageSize  = 6
	relatedLimit      = 4
	feedSize          = 20
	popularCategories = 6
	tagCountWorkers   = 4
)

func postCards(posts []cms.Post) []PostCard {
	cards := make([]PostCard, 0, len(posts))
	for _, p := range posts {
		cards = append(cards, PostCard{
			Post:        p,
			Link:        PostPath(p.Slug),
			ReadingTime: EstimateReadTime(p.Description),
		})
	}
	return cards
}

func listingQuery(c echo.Context, limit int) cms.PostsQuery {
	return cms.PostsQuery{
		Page:  parsePage(c),
		Limit: limit,
		Query: strings.TrimSpace(c.QueryParam("query")),
	}
}

func (a *App) listing(c echo.Context, q cms.PostsQuery, path string) (ListingPage, error) {
	res, err := a.Cache.ListPosts(c.Request().Context(), q)
	if err != nil {
		return ListingPage{}, err
	}
	return ListingPage{
		Path:       path,
		Query:      q.Query,
		Posts:      postCards(res.Posts),
		TotalPosts: res.Pagination.TotalPosts,
		Pager:      NewPager(res.Pagination, path, q.Query),
	}, nil
}

// renderListing serves the list partial to htmx requests asking for it.
func (a *App) renderListing(c echo.Context, page ListingPage, full func(ListingPage) templ.Component) error {
	if isHTMX(c) && c.QueryParam("partial") == "list" {
		return Render(c, a.Views.PostList(page))
	}
	return Render(c, full(page))
}

func (a *App) handleHome(c echo.Context) error {
	page, err := a.listing(c, listingQuery(c, homePageSize), "/")
	if err != nil {
		return err
	}
	page.Title = a.Config.Name
	page.Description = a.Config.Description
	return a.renderListing(c, page, a.Views.Home)
}

func (a *App) handleBlogs(c echo.Context) error {
	q := listingQuery(c, blogsPageSize)
	featured := q.Page == 1 && q.Query == ""
	if featured {
		q.Limit++
	}
	page, err := a.listing(c, q, "/blogs/")
	if err != nil {
		return err
	}
	if featured && len(page.Posts) > 0 {
		first := page.Posts[0]
		page.Featured = &first
		page.Posts = page.Posts[1:]
	}
	page.Title = "Blogs"
	page.Description = a.Config.Description
	return a.renderListing(c, page, a.Views.Blogs)
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	ctx := c.Request().Context()
	post, err := a.Cache.GetPost(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	related, err := a.Cache.RelatedPosts(ctx, slug, relatedLimit)
	if err != nil {
		c.Logger().Warnf("related posts %s: %v", slug, err)
	}

	processed := toc.Extract(post.Content, toc.AllLevels())
	return Render(c, a.Views.Post(PostPage{
		Post:        *post,
		URL:         BuildURL(a.Config.URL, "post", slug),
		Body:        templ.Raw(processed.HTML),
		Headings:    processed.Headings,
		Outline:     toc.NewOutline(processed.Headings, ""),
		ReadingTime: ReadingTime(post.Content),
		WordCount:   WordCount(post.Content),
		Related:     postCards(related),
	}))
}

type tocResponse struct {
	Headings []toc.Heading `json:"headings"`
	Sections []toc.Section `json:"sections"`
}

func (a *App) handleTOC(c echo.Context) error {
	post, err := a.Cache.GetPost(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return err
	}
	processed := toc.Extract(post.Content, toc.AllLevels())
	return c.JSON(http.StatusOK, tocResponse{
		Headings: processed.Headings,
		Sections: toc.Group(processed.Headings),
	})
}

func (a *App) categoryInfo(tag string) CategoryInfo {
	label, desc, _ := a.Config.category(tag)
	if label == "" {
		label = tag
	}
	if desc == "" {
		desc = "Posts tagged with " + label
	}
	return CategoryInfo{Tag: tag, Label: label, Description: desc, Link: CategoryPath(tag)}
}

func (a *App) handleCategories(c echo.Context) error {
	ctx := c.Request().Context()
	tags, err := a.Cache.ListTags(ctx)
	if err != nil {
		return err
	}

	infos := make([]CategoryInfo, len(tags))
	var g errgroup.Group
	g.SetLimit(tagCountWorkers)
	for i, t := range tags {
		infos[i] = a.categoryInfo(t.Name)
		g.Go(func() error {
			res, err := a.Cache.ListPosts(ctx, cms.PostsQuery{Tags: []string{t.Name}, Limit: 1})
			if err != nil {
				c.Logger().Warnf("count posts tagged %s: %v", t.Name, err)
				return nil
			}
			infos[i].PostCount = res.Pagination.TotalPosts
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(infos, func(i, j int) bool { return infos[i].PostCount > infos[j].PostCount })
	page := CategoriesPage{All: infos}
	for _, info := range infos {
		if info.PostCount > 0 && len(page.Popular) < popularCategories {
			page.Popular = append(page.Popular, info)
		} else {
			page.Others = append(page.Others, info)
		}
	}
	return Render(c, a.Views.Categories(page))
}

func (a *App) handleCategory(c echo.Context) error {
	tag := c.Param("tag")
	q := listingQuery(c, categoryPageSize)
	q.Tags = []string{tag}
	page, err := a.listing(c, q, CategoryPath(tag))
	if err != nil {
		return err
	}
	page.Tag = tag
	label, desc, ok := a.Config.category(tag)
	if !ok || label == "" {
		label = "#" + tag
	}
	if desc == "" {
		desc = "Blog posts tagged with #" + tag
	}
	page.Title = label
	page.Description = desc
	return a.renderListing(c, page, a.Views.Category)
}

func (a *App) handleFeed(c echo.Context) error {
	res, err := a.Cache.ListPosts(c.Request().Context(), cms.PostsQuery{Page: 1, Limit: feedSize})
	if err != nil {
		return err
	}
	return a.renderRSS(c, res.Posts)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(a.staticDir + "/robots.txt")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound && !strings.HasPrefix(c.Request().URL.Path, "/api/") {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		if strings.HasPrefix(c.Request().URL.Path, "/api/") {
			_ = c.JSON(code, map[string]string{"message": http.StatusText(code)})
			return
		}
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
