package types

import "time"

// Comment represents a reader comment on a post. Comments are owned by
// their author and are removed together with the parent post.
type Comment struct {
	// ID is the unique identifier of the comment.
	ID int `json:"id" db:"id"`

	// Content is the comment text.
	Content string `json:"content" db:"content"`

	// PostID is the id of the commented post.
	PostID int `json:"postId" db:"post_id"`

	// UserID is the id of the authoring user.
	UserID int `json:"userId" db:"user_id"`

	// User is the embedded author summary, populated on reads.
	User *UserSummary `json:"user,omitempty"`

	// CreatedAt is the timestamp when the comment was written.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
