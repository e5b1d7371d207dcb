package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/greenusek/greensite"
	"github.com/greenusek/greensite/views"
)

var (
	serveConfig string
	serveEnv    string
	serveStatic string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the blog server",
	Long: `Runs the HTTP server. Settings come from the TOML site file, then the
environment (a .env file is loaded first if present):

  BLOG_ID          Wisp blog id (required)
  SESSION_SECRET   session cookie secret (required)
  SITE_URL         canonical site URL
  ADDR             listen address
  CMS_BASE_URL     Wisp API host
  SNAPSHOT_PATH    SQLite snapshot database
  COOKIE_SECURE    "true" behind HTTPS
  LOG_LEVEL        debug, info, warn or error`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "site.toml", "TOML site file (skipped if missing)")
	serveCmd.Flags().StringVar(&serveEnv, "env-file", ".env", "dotenv file (skipped if missing)")
	serveCmd.Flags().StringVar(&serveStatic, "static", "public", "static assets directory")
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() (greensite.SiteConfig, error) {
	if err := godotenv.Load(serveEnv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return greensite.SiteConfig{}, fmt.Errorf("load %s: %w", serveEnv, err)
	}

	var cfg greensite.SiteConfig
	if err := greensite.LoadConfigFile(serveConfig, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}

	cfg.BlogID = greensite.EnvOr("BLOG_ID", cfg.BlogID)
	cfg.SessionSecret = greensite.EnvOr("SESSION_SECRET", cfg.SessionSecret)
	cfg.URL = greensite.EnvOr("SITE_URL", cfg.URL)
	cfg.Addr = greensite.EnvOr("ADDR", cfg.Addr)
	cfg.CMSBaseURL = greensite.EnvOr("CMS_BASE_URL", cfg.CMSBaseURL)
	cfg.SnapshotPath = greensite.EnvOr("SNAPSHOT_PATH", cfg.SnapshotPath)
	cfg.LogLevel = greensite.EnvOr("LOG_LEVEL", cfg.LogLevel)
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		cfg.CookieSecure = secure
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app := greensite.New(cfg, views.Default(cfg.Name), greensite.WithStaticDir(serveStatic))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	select {
	case err := <-errCh:
		app.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
