package greensite

import (
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/greenusek/greensite/cms"
)

// Store keeps the last good copy of every post the site has served, so pages
// can still be rendered while the CMS is unreachable.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the request path read while a snapshot write is in flight.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT PRIMARY KEY,
    id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    content TEXT NOT NULL,
    image TEXT NOT NULL,
    author_name TEXT NOT NULL,
    author_image TEXT NOT NULL,
    tags TEXT NOT NULL,
    published_at TEXT NOT NULL,
    fetched_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS posts_published_at ON posts (published_at DESC);
`)
	return err
}

const postColumns = `slug, id, title, description, content, image, author_name, author_image, tags, published_at`

// SavePost upserts the snapshot of p.
func (s *Store) SavePost(p cms.Post) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO posts (`+postColumns+`, fetched_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Slug, p.ID, p.Title, p.Description, p.Content, p.Image, p.Author.Name, p.Author.Image,
		JoinTags(p.TagNames()), p.Date().UTC().Format(time.RFC3339), time.Now().UTC().Format(time.RFC3339))
	return err
}

// GetPost returns the snapshot of slug, or sql.ErrNoRows.
func (s *Store) GetPost(slug string) (cms.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)
	return scanPost(row)
}

// DeletePost removes the snapshot of slug.
func (s *Store) DeletePost(slug string) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE slug = ?`, slug)
	return err
}

// ListPosts pages through snapshots newest first, filtered the same way the
// CMS filters: by any of q.Tags, and by q.Query in the title or description.
func (s *Store) ListPosts(q cms.PostsQuery) (*cms.PostsResult, error) {
	var where []string
	var args []any
	if tags := FilterEmpty(q.Tags); len(tags) > 0 {
		var or []string
		for _, t := range tags {
			or = append(or, `instr(lower(tags), ',' || ? || ',') > 0`)
			args = append(args, normalizeTag(t))
		}
		where = append(where, "("+strings.Join(or, " OR ")+")")
	}
	if query := strings.TrimSpace(q.Query); query != "" {
		where = append(where, `(instr(lower(title), ?) > 0 OR instr(lower(description), ?) > 0)`)
		query = strings.ToLower(query)
		args = append(args, query, query)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM posts`+cond, args...).Scan(&total); err != nil {
		return nil, err
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	rows, err := s.db.Query(`SELECT `+postColumns+` FROM posts`+cond+` ORDER BY published_at DESC LIMIT ? OFFSET ?`,
		append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []cms.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &cms.PostsResult{Posts: posts, Pagination: paginate(page, limit, total)}, nil
}

// ListTags returns every tag that appears on a snapshot, sorted.
func (s *Store) ListTags() ([]cms.Tag, error) {
	rows, err := s.db.Query(`SELECT tags FROM posts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]string)
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			if _, ok := set[normalizeTag(t)]; !ok {
				set[normalizeTag(t)] = t
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result := make([]cms.Tag, 0, len(set))
	for _, name := range set {
		result = append(result, cms.Tag{Name: name})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (cms.Post, error) {
	var p cms.Post
	var tags, published string
	err := row.Scan(&p.Slug, &p.ID, &p.Title, &p.Description, &p.Content, &p.Image,
		&p.Author.Name, &p.Author.Image, &tags, &published)
	if err != nil {
		return cms.Post{}, err
	}
	for _, t := range ParseTags(tags) {
		p.Tags = append(p.Tags, cms.Tag{Name: t})
	}
	if ts, err := time.Parse(time.RFC3339, published); err == nil {
		p.CreatedAt = ts
		p.PublishedAt = &ts
	}
	return p, nil
}

// paginate computes the CMS pagination block for a result of total items.
func paginate(page, limit, total int) cms.Pagination {
	pages := (total + limit - 1) / limit
	p := cms.Pagination{Page: page, Limit: limit, TotalPages: pages, TotalPosts: total}
	if page < pages {
		p.NextPage = page + 1
	}
	if page > 1 {
		p.PrevPage = page - 1
	}
	return p
}

// JoinTags encodes tags as the comma-delimited column form (",a,b,").
func JoinTags(tags []string) string {
	tags = FilterEmpty(tags)
	if len(tags) == 0 {
		return ""
	}
	return "," + strings.Join(tags, ",") + ","
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
