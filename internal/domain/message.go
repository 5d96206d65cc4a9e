package domain

import "time"

// Message is one entry in a ticket thread. Messages are immutable once
// created and are never edited or removed.
type Message struct {
	ID                string    `json:"id"`
	AuthorID          string    `json:"authorId"`
	AuthorDisplayName string    `json:"authorDisplayName"`
	Content           string    `json:"content"`
	CreatedAt         time.Time `json:"createdAt"`
}
