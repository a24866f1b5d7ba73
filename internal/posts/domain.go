package posts

import "time"

// Post represents a blog post owned by its author.
type Post struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	AuthorID    int64     `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Summary is the abbreviated projection returned by list endpoints.
type Summary struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	AuthorName  string    `json:"author_name"`
	CreatedAt   time.Time `json:"created_at"`
	IsPublished bool      `json:"is_published"`
}
