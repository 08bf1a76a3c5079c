package domain

import "time"

// Thought is a user-authored feed post. Immutable after creation except for
// RelatableCount, which always mirrors the number of distinct reaction rows.
type Thought struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	AuthorName     string    `json:"authorName"`
	AuthorAvatar   *string   `json:"authorAvatar"`
	Content        string    `json:"content"`
	ImageURL       *string   `json:"imageUrl"`
	RelatableCount int64     `json:"relatableCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Reaction marks a single user finding a single thought relatable.
// At most one row exists per (ThoughtID, UserID) pair.
type Reaction struct {
	ID        int64     `json:"id"`
	ThoughtID string    `json:"thoughtId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
