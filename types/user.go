package types

import "time"

// User represents an account in the system.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// FirstName and LastName are the user's real name parts.
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`

	// Username is the unique handle chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the user's unique email address, used for login.
	Email string `json:"email" db:"email"`

	// Bio is an optional short self-description.
	Bio *string `json:"bio" db:"bio"`

	// Avatar is an optional path reference to the user's avatar image.
	// Only the reference is stored; the bytes live in object storage.
	Avatar *string `json:"avatar" db:"avatar"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent account update.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// UserSummary is the author/commenter subset embedded in post and
// comment responses.
type UserSummary struct {
	ID        int     `json:"id" db:"id"`
	FirstName string  `json:"firstName" db:"first_name"`
	LastName  string  `json:"lastName" db:"last_name"`
	Username  string  `json:"username" db:"username"`
	Avatar    *string `json:"avatar" db:"avatar"`
}

// UserRef is a bare user id, used for follower/following lists.
type UserRef struct {
	ID int `json:"id"`
}

// Profile is a user enriched with one-hop follow information.
// Email is omitted on public profiles.
type Profile struct {
	ID        int       `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Bio       *string   `json:"bio"`
	Avatar    *string   `json:"avatar"`
	Followers []UserRef `json:"followers"`
	Following []UserRef `json:"following"`
}
