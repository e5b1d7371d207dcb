package cms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "blog-1")
}

func TestGetPosts_QueryParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/blog-1/posts", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "6", q.Get("limit"))
		assert.Equal(t, "solar", q.Get("query"))
		assert.Equal(t, []string{"energy", "campus"}, q["tags"])
		w.Write([]byte(`{"posts":[{"slug":"a","title":"A","tags":[{"id":"1","name":"energy"}]}],
			"pagination":{"page":2,"limit":6,"totalPages":3,"totalPosts":14,"nextPage":3,"prevPage":1}}`))
	})

	res, err := c.GetPosts(context.Background(), PostsQuery{Page: 2, Limit: 6, Query: "solar", Tags: []string{"energy", "campus"}})
	require.NoError(t, err)
	require.Len(t, res.Posts, 1)
	assert.Equal(t, []string{"energy"}, res.Posts[0].TagNames())
	assert.Equal(t, Pagination{Page: 2, Limit: 6, TotalPages: 3, TotalPosts: 14, NextPage: 3, PrevPage: 1}, res.Pagination)
}

func TestGetPosts_NullPageLinks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"posts":[],"pagination":{"page":1,"limit":"all","totalPages":1,"totalPosts":0,"nextPage":null,"prevPage":null}}`))
	})

	res, err := c.GetPosts(context.Background(), PostsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Pagination.NextPage)
	assert.Equal(t, 0, res.Pagination.PrevPage)
}

func TestGetPost_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"null post", http.StatusOK, `{"post":null}`},
		{"404", http.StatusNotFound, `{"error":{"message":"Post not found"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.GetPost(context.Background(), "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestGetPost_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.GetPost(context.Background(), "x")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Message)
}

func TestGetComments_DefaultsToAll(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/blog-1/comments/my-post", r.URL.Path)
		assert.Equal(t, "all", r.URL.Query().Get("limit"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		w.Write([]byte(`{"comments":[{"id":"c1","author":"Rita","content":"Nice"}],
			"pagination":{"page":1,"totalPages":1,"totalComments":1},
			"config":{"enabled":true,"allowUrls":true,"allowNested":false,"signUpMessage":null}}`))
	})

	res, err := c.GetComments(context.Background(), "my-post", 0, 0)
	require.NoError(t, err)
	assert.True(t, res.Config.Enabled)
	assert.True(t, res.Config.AllowURLs)
	assert.Equal(t, 1, res.Pagination.TotalComments)
	assert.Equal(t, "Rita", res.Comments[0].Author)
}

func TestCreateComment(t *testing.T) {
	var got CreateCommentInput
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/blog-1/comments", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success":true}`))
	})

	in := CreateCommentInput{Slug: "p", Author: "Rita", Email: "rita@example.com", Content: "Hi"}
	require.NoError(t, c.CreateComment(context.Background(), in))
	assert.Equal(t, in, got)
}

func TestCreateComment_ValidationMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Comment contains blocked words"}}`))
	})

	err := c.CreateComment(context.Background(), CreateCommentInput{Slug: "p"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Comment contains blocked words", apiErr.Message)
}
