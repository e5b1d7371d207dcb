package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenusek/greensite"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	tocLevels = []int{1, 2, 3, 4, 5, 6}
	tocHTML, tocOffsets, tocScroll = false, "", nil
	initName, initURL, initBlogID = "", "http://localhost:3000", ""

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute(t, "version")
	assert.NoError(t, err)
	assert.Contains(t, out, "greensite test-version-1.0.0")
}

const postBody = `<h2>Intro</h2><p>Hi.</p><h3>Setup</h3><h2>Usage</h2>`

func TestTOCCmd_PrintsOutline(t *testing.T) {
	path := writeFile(t, "post.html", postBody)

	out, err := execute(t, "toc", path)
	require.NoError(t, err)

	var got tocOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Headings, 3)
	assert.Equal(t, "intro", got.Headings[0].ID)
	require.Len(t, got.Sections, 2)
	assert.Equal(t, "setup", got.Sections[0].Children[0].ID)
	assert.Empty(t, got.Replay)
}

func TestTOCCmd_Levels(t *testing.T) {
	path := writeFile(t, "post.html", postBody)

	out, err := execute(t, "toc", "--levels", "2", path)
	require.NoError(t, err)

	var got tocOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Headings, 2)

	_, err = execute(t, "toc", "--levels", "7", path)
	assert.ErrorContains(t, err, "invalid heading level 7")
}

func TestTOCCmd_HTML(t *testing.T) {
	path := writeFile(t, "post.html", postBody)

	out, err := execute(t, "toc", "--html", path)
	require.NoError(t, err)
	assert.Equal(t, `<h2 id="intro">Intro</h2><p>Hi.</p><h3 id="setup">Setup</h3><h2 id="usage">Usage</h2>`, out)
}

func TestTOCCmd_Replay(t *testing.T) {
	path := writeFile(t, "post.html", postBody)
	offsets := writeFile(t, "offsets.json", `{"intro": 0, "setup": 500, "usage": 1000}`)

	out, err := execute(t, "toc", "--offsets", offsets, "--scroll", "0,450,950,20", path)
	require.NoError(t, err)

	var got tocOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	var active []string
	for _, s := range got.Replay {
		active = append(active, s.Active)
	}
	assert.Equal(t, []string{"intro", "setup", "usage", "intro"}, active)

	_, err = execute(t, "toc", "--scroll", "10", path)
	assert.ErrorContains(t, err, "--scroll requires --offsets")
}

func TestInitCmd_WritesStarterSite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "green-usek")

	out, err := execute(t, "init", "--blog-id", "blog-123", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "created")

	var cfg greensite.SiteConfig
	require.NoError(t, greensite.LoadConfigFile(filepath.Join(dir, "site.toml"), &cfg))
	assert.Equal(t, "Green Usek", cfg.Name)
	assert.Equal(t, "blog-123", cfg.BlogID)
	assert.Len(t, cfg.Categories, 2)

	env, err := os.ReadFile(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(env), "BLOG_ID=blog-123"))
	assert.FileExists(t, filepath.Join(dir, "public", "robots.txt"))

	_, err = execute(t, "init", dir)
	assert.ErrorContains(t, err, "already exists")
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	serveConfig = writeFile(t, "site.toml", `blog_id = "from-file"`+"\n"+`addr = ":4000"`)
	serveEnv = filepath.Join(t.TempDir(), "missing.env")
	t.Setenv("BLOG_ID", "from-env")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.BlogID)
	assert.Equal(t, ":4000", cfg.Addr)
	assert.True(t, cfg.CookieSecure)
}
