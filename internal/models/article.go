package models

import "time"

// Article is a published content record owned by a user.
type Article struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	AuthorID    int        `json:"user_id"`
	AuthorName  string     `json:"author_name,omitempty"` // joined from users, not stored
	ImageURL    string     `json:"image_url,omitempty"`
	IsPublished bool       `json:"is_published"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// PageMeta describes one page of a paginated article listing.
type PageMeta struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	TotalPages  int `json:"total_pages"`
	Total       int `json:"total"`
}
