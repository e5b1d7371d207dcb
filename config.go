package greensite

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/pelletier/go-toml/v2"
)

// SiteConfig holds all configuration for a greensite deployment.
type SiteConfig struct {
	Name        string `toml:"name"`        // Site name (default "Green USEK")
	URL         string `toml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `toml:"description"` // Site description for listings and the feed

	Addr     string `toml:"addr"`      // Listen address (default ":3000")
	LogLevel string `toml:"log_level"` // debug, info, warn, error (default "info")

	CMSBaseURL string `toml:"cms_base_url"` // Wisp API host (default cms.DefaultBaseURL)
	BlogID     string `toml:"blog_id"`      // Required: Wisp blog id

	SnapshotPath string `toml:"snapshot_path"` // SQLite path for stale-if-error snapshots (default "data/snapshots.db")

	SessionSecret string `toml:"-"` // Required: session encryption secret
	CookieSecure  bool   `toml:"cookie_secure"`

	CacheTTL time.Duration `toml:"-"` // CMS response cache TTL (default 1min)

	CommentLimit  int           `toml:"comment_limit"` // Comments per IP per window (default 5)
	CommentWindow time.Duration `toml:"-"`             // (default 10min)

	// Categories give friendly labels to CMS tags on the category pages.
	Categories []Category `toml:"categories"`
}

// Category is the display metadata of a CMS tag.
type Category struct {
	Tag         string `toml:"tag"`
	Label       string `toml:"label"`
	Description string `toml:"description"`
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Green USEK"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.SnapshotPath == "" {
		c.SnapshotPath = "data/snapshots.db"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = time.Minute
	}
	if c.CommentLimit == 0 {
		c.CommentLimit = 5
	}
	if c.CommentWindow == 0 {
		c.CommentWindow = 10 * time.Minute
	}
}

func (c SiteConfig) validate() error {
	if c.BlogID == "" {
		return fmt.Errorf("greensite: BlogID is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("greensite: SessionSecret is required")
	}
	return nil
}

// category returns the configured metadata for tag, falling back to the tag
// name itself.
func (c SiteConfig) category(tag string) (label, description string, ok bool) {
	for _, cat := range c.Categories {
		if strings.EqualFold(cat.Tag, tag) {
			return cat.Label, cat.Description, true
		}
	}
	return tag, "", false
}

// logLevel maps LogLevel onto echo's logger levels.
func (c SiteConfig) logLevel() log.Lvl {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// fileConfig is the on-disk form of SiteConfig. Durations are written as
// strings such as "90s" or "10m".
type fileConfig struct {
	SiteConfig
	CacheTTL      string `toml:"cache_ttl"`
	CommentWindow string `toml:"comment_window"`
}

// LoadConfigFile reads a TOML site file into cfg. Fields absent from the file
// keep their current values.
func LoadConfigFile(path string, cfg *SiteConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("greensite: read config: %w", err)
	}
	fc := fileConfig{SiteConfig: *cfg}
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("greensite: parse config %s: %w", path, err)
	}
	*cfg = fc.SiteConfig
	if fc.CacheTTL != "" {
		if cfg.CacheTTL, err = time.ParseDuration(fc.CacheTTL); err != nil {
			return fmt.Errorf("greensite: cache_ttl: %w", err)
		}
	}
	if fc.CommentWindow != "" {
		if cfg.CommentWindow, err = time.ParseDuration(fc.CommentWindow); err != nil {
			return fmt.Errorf("greensite: comment_window: %w", err)
		}
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for site-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithContentSource replaces the Wisp client, e.g. with a fixture source.
func WithContentSource(src ContentSource) Option {
	return func(a *App) {
		a.source = src
	}
}
