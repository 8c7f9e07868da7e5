package types

import "time"

// Post represents a published blog post.
// A post is owned exclusively by its author; only the author may
// mutate or delete it.
type Post struct {
	// ID is the unique identifier of the post.
	ID int `json:"id" db:"id"`

	// Title is the post headline.
	Title string `json:"title" db:"title"`

	// Content is the post body (rich text, stored as-is).
	Content string `json:"content" db:"content"`

	// Summary is an optional short teaser shown in listings.
	Summary *string `json:"summary" db:"summary"`

	// Thumbnail is an optional path reference to the post's cover image.
	Thumbnail *string `json:"thumbnail" db:"thumbnail"`

	// AuthorID is the id of the owning user.
	AuthorID int `json:"authorId" db:"author_id"`

	// Author is the embedded author summary, populated on reads.
	Author *UserSummary `json:"author,omitempty"`

	// CreatedAt is the timestamp when the post was published.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent edit.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
