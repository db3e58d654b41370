package wp

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Post is the subset of a WordPress post the pipeline reads back.
type Post struct {
	ID      int    `json:"id"`
	Link    string `json:"link"`
	Status  string `json:"status"`
	Title   string `json:"-"`
	Content string `json:"-"`
}

type rendered struct {
	Rendered string `json:"rendered"`
}

type postResponse struct {
	ID      int      `json:"id"`
	Link    string   `json:"link"`
	Status  string   `json:"status"`
	Title   rendered `json:"title"`
	Content rendered `json:"content"`
}

func (p postResponse) post() *Post {
	return &Post{ID: p.ID, Link: p.Link, Status: p.Status, Title: p.Title.Rendered, Content: p.Content.Rendered}
}

// CreatePostParams carries everything a new post needs. Publish selects
// between immediate publication and a draft.
type CreatePostParams struct {
	Title           string
	Content         string
	Keyword         string
	MetaDescription string
	SEOTitle        string
	Categories      []int
	FeaturedMediaID int
	Publish         bool
}

// CreatePost creates a post with the slug derived from the focus keyword
// and Rank Math SEO meta filled in.
func (c *Client) CreatePost(ctx context.Context, params CreatePostParams) (*Post, error) {
	status := "draft"
	if params.Publish {
		status = "publish"
	}

	body := map[string]any{
		"title":   params.Title,
		"content": params.Content,
		"status":  status,
		"slug":    Slugify(params.Keyword),
		"excerpt": params.MetaDescription,
		"meta": map[string]string{
			"rank_math_focus_keyword": params.Keyword,
			"rank_math_title":         params.SEOTitle,
			"rank_math_description":   params.MetaDescription,
		},
	}
	if len(params.Categories) > 0 {
		body["categories"] = params.Categories
	}
	if params.FeaturedMediaID > 0 {
		body["featured_media"] = params.FeaturedMediaID
	}
	if c.authorID > 0 {
		body["author"] = c.authorID
	}

	var resp postResponse
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("/posts"), body, &resp); err != nil {
		return nil, err
	}
	return resp.post(), nil
}

// GetPost fetches a post with its raw content rendered.
func (c *Client) GetPost(ctx context.Context, id int) (*Post, error) {
	var resp postResponse
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("%s/%d", c.endpoint("/posts"), id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.post(), nil
}

// UpdatePostContent replaces a post's body.
func (c *Client) UpdatePostContent(ctx context.Context, id int, content string) (*Post, error) {
	var resp postResponse
	body := map[string]any{"content": content}
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/%d", c.endpoint("/posts"), id), body, &resp); err != nil {
		return nil, err
	}
	return resp.post(), nil
}

// PublishDraft flips a draft post to published and returns it with its
// public link populated.
func (c *Client) PublishDraft(ctx context.Context, id int) (*Post, error) {
	var resp postResponse
	body := map[string]any{"status": "publish"}
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/%d", c.endpoint("/posts"), id), body, &resp); err != nil {
		return nil, err
	}
	return resp.post(), nil
}

// Category is one site category as listed by the API.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Categories lists the site's categories, first page of 100.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var cats []Category
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("/categories?per_page=100"), nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

var (
	postIDRe   = regexp.MustCompile(`post=(\d+)`)
	slugStrip  = regexp.MustCompile(`[^a-z0-9]+`)
	slugDashes = regexp.MustCompile(`-{2,}`)
)

// ExtractPostID pulls the numeric post id out of a wp-admin edit URL.
// Returns an empty string when the URL carries no post parameter.
func ExtractPostID(editURL string) string {
	if m := postIDRe.FindStringSubmatch(editURL); m != nil {
		return m[1]
	}
	return ""
}

// EditURL builds the wp-admin edit link for a post.
func (c *Client) EditURL(id int) string {
	return fmt.Sprintf("%s/wp-admin/post.php?post=%d&action=edit", c.baseURL, id)
}

// Slugify lowercases a keyword and collapses everything non-alphanumeric
// into single dashes.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStrip.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
