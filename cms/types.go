package cms

import "time"

// Author is the writer of a post.
type Author struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Tag labels posts; the site calls tags categories.
type Tag struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Post is a blog post. Content is HTML.
type Post struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	Image       string     `json:"image"`
	AuthorID    string     `json:"authorId"`
	Author      Author     `json:"author"`
	Tags        []Tag      `json:"tags"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt"`
}

// Date is the publish date, falling back to creation for drafts.
func (p Post) Date() time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}

// TagNames returns the names of the post's tags.
func (p Post) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}
	return names
}

// Pagination describes one page of a post listing. NextPage and PrevPage are
// 0 when there is no such page.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"-"`
	TotalPages int `json:"totalPages"`
	TotalPosts int `json:"totalPosts"`
	NextPage   int `json:"nextPage"`
	PrevPage   int `json:"prevPage"`
}

// PostsQuery selects a page of posts. Limit <= 0 lets the CMS choose.
type PostsQuery struct {
	Page  int
	Limit int
	Query string
	Tags  []string
}

// PostsResult is one page of posts.
type PostsResult struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

// Comment is a published reader comment. Parent is set for replies.
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
	Parent    *Comment  `json:"parent"`
}

// CommentConfig is the blog's comment moderation settings.
type CommentConfig struct {
	Enabled       bool   `json:"enabled"`
	AllowURLs     bool   `json:"allowUrls"`
	AllowNested   bool   `json:"allowNested"`
	SignUpMessage string `json:"signUpMessage"`
}

// CommentPagination describes one page of comments.
type CommentPagination struct {
	Page          int `json:"page"`
	TotalPages    int `json:"totalPages"`
	TotalComments int `json:"totalComments"`
}

// CommentsResult is the comment thread of a post.
type CommentsResult struct {
	Comments   []Comment         `json:"comments"`
	Pagination CommentPagination `json:"pagination"`
	Config     CommentConfig     `json:"config"`
}

// CreateCommentInput is a new comment. The CMS emails the author a
// verification link before publishing it.
type CreateCommentInput struct {
	Slug            string `json:"slug"`
	Author          string `json:"author"`
	Email           string `json:"email"`
	URL             string `json:"url,omitempty"`
	Content         string `json:"content"`
	AllowEmailUsage bool   `json:"allowEmailUsage"`
	ParentID        string `json:"parentId,omitempty"`
}
