package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered jokester. Only the bcrypt digest of the password is kept.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Joke is a short text joke owned by the user who created it.
// Ownership (JokesterID) never changes after creation.
type Joke struct {
	ID         uuid.UUID
	JokesterID uuid.UUID
	Slug       string
	Name       string
	Content    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OwnedBy reports whether userID is the owner of the joke.
func (j *Joke) OwnedBy(userID uuid.UUID) bool {
	return j != nil && userID != uuid.Nil && j.JokesterID == userID
}

// JokeSummary is the projection used by the jokes sidebar.
type JokeSummary struct {
	Slug string
	Name string
}

// FeedEntry is a joke joined with its jokester's username, used by the RSS feed.
type FeedEntry struct {
	Joke
	Username string
}

// Session is the payload carried by the signed session cookie.
// It holds nothing but the authenticated user's identifier.
type Session struct {
	UserID uuid.UUID
}
