// Package cms is a client for the Wisp headless CMS public API, which stores
// the site's posts, tags and comments.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the hosted Wisp API.
const DefaultBaseURL = "https://www.wisp.blog"

// ErrNotFound is returned when a post does not exist or is not published.
var ErrNotFound = errors.New("cms: not found")

// APIError is a non-2xx response from the CMS.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cms: status %d: %s", e.Status, e.Message)
}

// Client communicates with the Wisp API for one blog.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for blogID. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL, blogID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/") + "/api/v1/" + url.PathEscape(blogID),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetPosts returns one page of published posts, newest first.
func (c *Client) GetPosts(ctx context.Context, q PostsQuery) (*PostsResult, error) {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Query != "" {
		params.Set("query", q.Query)
	}
	for _, t := range q.Tags {
		params.Add("tags", t)
	}
	var result PostsResult
	if err := c.getJSON(ctx, "/posts", params, &result); err != nil {
		return nil, fmt.Errorf("cms: get posts: %w", err)
	}
	result.Pagination.Limit = q.Limit
	return &result, nil
}

// GetPost returns the post with the given slug or ErrNotFound.
func (c *Client) GetPost(ctx context.Context, slug string) (*Post, error) {
	var result struct {
		Post *Post `json:"post"`
	}
	err := c.getJSON(ctx, "/posts/"+url.PathEscape(slug), nil, &result)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cms: get post %s: %w", slug, err)
	}
	if result.Post == nil {
		return nil, ErrNotFound
	}
	return result.Post, nil
}

// GetRelatedPosts returns up to limit posts related to slug.
func (c *Client) GetRelatedPosts(ctx context.Context, slug string, limit int) ([]Post, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var result struct {
		Posts []Post `json:"posts"`
	}
	if err := c.getJSON(ctx, "/posts/"+url.PathEscape(slug)+"/related", params, &result); err != nil {
		return nil, fmt.Errorf("cms: get related posts %s: %w", slug, err)
	}
	return result.Posts, nil
}

// GetTags returns every tag of the blog.
func (c *Client) GetTags(ctx context.Context) ([]Tag, error) {
	params := url.Values{"limit": {"all"}}
	var result struct {
		Tags []Tag `json:"tags"`
	}
	if err := c.getJSON(ctx, "/tags", params, &result); err != nil {
		return nil, fmt.Errorf("cms: get tags: %w", err)
	}
	return result.Tags, nil
}

// GetComments returns a page of comments on slug. limit <= 0 returns all.
func (c *Client) GetComments(ctx context.Context, slug string, page, limit int) (*CommentsResult, error) {
	if page <= 0 {
		page = 1
	}
	params := url.Values{"page": {strconv.Itoa(page)}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	} else {
		params.Set("limit", "all")
	}
	var result CommentsResult
	if err := c.getJSON(ctx, "/comments/"+url.PathEscape(slug), params, &result); err != nil {
		return nil, fmt.Errorf("cms: get comments %s: %w", slug, err)
	}
	return &result, nil
}

// CreateComment submits a comment for moderation.
func (c *Client) CreateComment(ctx context.Context, in CreateCommentInput) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("cms: marshal comment: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/comments", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("cms: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cms: create comment: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return readAPIError(resp)
	}

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("cms: decode comment response: %w", err)
	}
	if !result.Success {
		return &APIError{Status: resp.StatusCode, Message: "comment was not accepted"}
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// readAPIError turns an error response into *APIError, preferring the
// {"error":{"message":...}} body the CMS sends for validation failures.
func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil && payload.Error.Message != "" {
		msg = payload.Error.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
