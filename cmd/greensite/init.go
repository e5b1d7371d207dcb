package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/greenusek/greensite/scaffold"
)

var (
	initName   string
	initURL    string
	initBlogID string
)

var initCmd = &cobra.Command{
	Use:   "init DIR",
	Short: "Write a starter site.toml, .env and public/ into DIR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd, args[0])
	},
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "site name (default: derived from DIR)")
	initCmd.Flags().StringVar(&initURL, "url", "http://localhost:3000", "canonical site URL")
	initCmd.Flags().StringVar(&initBlogID, "blog-id", "", "Wisp blog id")
	rootCmd.AddCommand(initCmd)
}

// scaffoldData holds the template variables passed to every scaffold template.
type scaffoldData struct {
	SiteName string
	SiteURL  string
	BlogID   string
}

func runInit(cmd *cobra.Command, dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}

	data := scaffoldData{
		SiteName: initName,
		SiteURL:  strings.TrimSuffix(initURL, "/"),
		BlogID:   initBlogID,
	}
	if data.SiteName == "" {
		data.SiteName = toTitle(filepath.Base(dir))
	}

	root := "templates"
	err := fs.WalkDir(scaffold.Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		outPath := strings.TrimSuffix(filepath.Join(dir, relPath), ".tmpl")
		if filepath.Base(outPath) == "dotenv" {
			outPath = filepath.Join(filepath.Dir(outPath), ".env")
		}

		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		content, err := scaffold.Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		tmpl, err := template.New(filepath.Base(path)).Parse(string(content))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()

		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("execute template %s: %w", path, err)
		}
		cmd.Printf("  created %s\n", outPath)
		return nil
	})
	if err != nil {
		return err
	}

	cmd.Println()
	cmd.Println("Done! Next steps:")
	cmd.Printf("  cd %s\n", dir)
	cmd.Println("  edit .env (BLOG_ID, SESSION_SECRET)")
	cmd.Println("  greensite serve")
	return nil
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "green-usek" -> "Green Usek"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
