// Package greensite serves a sustainability blog whose posts live in the Wisp
// headless CMS. It provides post listings, search, categories, post pages with
// a generated table of contents, reader comments and an RSS feed.
//
// Sites provide their own templ templates via the ViewFuncs struct, and
// greensite handles the handler logic, middleware, caching and CMS access.
package greensite

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/greenusek/greensite/cms"
)

// ViewFuncs holds site-provided templ components that the framework calls
// when rendering pages. This is the inversion-of-control mechanism that
// lets sites own and customize all templates.
type ViewFuncs struct {
	Home        func(page ListingPage) templ.Component
	Blogs       func(page ListingPage) templ.Component
	Category    func(page ListingPage) templ.Component
	PostList    func(page ListingPage) templ.Component // htmx partial for any listing
	Post        func(page PostPage) templ.Component
	Categories  func(page CategoriesPage) templ.Component
	Comments    func(section CommentsSection) templ.Component
	CommentForm func(form CommentForm) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central greensite application. It wires together the CMS client,
// cache, snapshot store, handlers, middleware, and site templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	CMS    *cms.Client
	Store  *Store
	Cache  *ContentCache
	Views  ViewFuncs

	source         ContentSource
	commentLimiter *CommentLimiter
	customRoutes   []func(*App)
	staticDir      string
}

// New creates a new greensite App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}
	a.Echo.HideBanner = true
	a.Echo.Logger.SetLevel(cfg.logLevel())

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init connects the CMS, opens the snapshot store, and registers middleware
// and routes. Start calls it; tests may call it directly and drive a.Echo.
func (a *App) Init() error {
	if err := a.Config.validate(); err != nil {
		return err
	}

	if a.source == nil {
		a.CMS = cms.NewClient(a.Config.CMSBaseURL, a.Config.BlogID)
		a.source = a.CMS
	}

	if a.Config.SnapshotPath != "" {
		store, err := NewStore(a.Config.SnapshotPath)
		if err != nil {
			return fmt.Errorf("greensite: init snapshot store: %w", err)
		}
		a.Store = store
	}

	a.Cache = NewContentCache(a.source, a.Store, a.Config.CacheTTL, a.Echo.Logger)
	a.commentLimiter = NewCommentLimiter(a.Config.CommentLimit, a.Config.CommentWindow)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and starts the server.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Echo.Logger.Infof("greensite: serving blog %s on %s", a.Config.BlogID, a.Config.Addr)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Site static assets
	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Pages
	e.GET("/", a.handleHome)
	e.GET("/blogs/", a.handleBlogs)
	e.GET("/post/:slug/", a.handlePost)
	e.GET("/category/", a.handleCategories)
	e.GET("/category/:tag/", a.handleCategory)
	e.GET("/feed.xml", a.handleFeed)

	// Comments
	e.GET("/post/:slug/comments/", a.handleComments)
	e.POST("/post/:slug/comments/", a.handleCommentSubmit)

	// JSON
	e.GET("/api/posts/:slug/toc", a.handleTOC)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.commentLimiter != nil {
		a.commentLimiter.Stop()
	}
	if a.CMS != nil {
		a.CMS.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("greensite: required environment variable %s is not set", key)
	}
	return v
}
