package greensite

import "testing"

func TestValidateComment(t *testing.T) {
	tests := []struct {
		name       string
		form       CommentForm
		wantErrors []string
	}{
		{
			name: "valid",
			form: CommentForm{Author: "Maya", Email: "maya@example.com", Content: "Nice"},
		},
		{
			name:       "missing fields",
			form:       CommentForm{Author: "  ", Email: "", Content: "\n"},
			wantErrors: []string{"author", "email", "content"},
		},
		{
			name:       "email without domain dot",
			form:       CommentForm{Author: "Maya", Email: "maya@example", Content: "Nice"},
			wantErrors: []string{"email"},
		},
		{
			name:       "email with spaces",
			form:       CommentForm{Author: "Maya", Email: "maya @example.com", Content: "Nice"},
			wantErrors: []string{"email"},
		},
		{
			name: "url ignored when not allowed",
			form: CommentForm{Author: "Maya", Email: "maya@example.com", Content: "Nice", URL: "nonsense"},
		},
		{
			name: "https url",
			form: CommentForm{Author: "Maya", Email: "maya@example.com", Content: "Nice", URL: "https://maya.example.com/blog", AllowURLs: true},
		},
		{
			name:       "relative url",
			form:       CommentForm{Author: "Maya", Email: "maya@example.com", Content: "Nice", URL: "/about", AllowURLs: true},
			wantErrors: []string{"url"},
		},
		{
			name:       "javascript url",
			form:       CommentForm{Author: "Maya", Email: "maya@example.com", Content: "Nice", URL: "javascript:alert(1)", AllowURLs: true},
			wantErrors: []string{"url"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.form
			ValidateComment(&f)
			if len(f.Errors) != len(tt.wantErrors) {
				t.Fatalf("Errors = %v, want fields %v", f.Errors, tt.wantErrors)
			}
			for _, field := range tt.wantErrors {
				if _, ok := f.Errors[field]; !ok {
					t.Errorf("missing error for %s: %v", field, f.Errors)
				}
			}
			if f.Valid() != (len(tt.wantErrors) == 0) {
				t.Errorf("Valid() = %v", f.Valid())
			}
		})
	}
}

func TestCommentFormAction(t *testing.T) {
	f := CommentForm{Slug: "solar-roofs"}
	if got := f.Action(); got != "/post/solar-roofs/comments/" {
		t.Errorf("Action() = %q", got)
	}
}
