package domain

import "time"

// Book is a catalog entry. Books are registered out of band; the tracker only
// needs enough to label sessions and shelves and to honour private ownership.
type Book struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	CoverURL  string    `json:"coverUrl,omitempty"`
	OwnerID   string    `json:"ownerId,omitempty"`
	IsPrivate bool      `json:"isPrivate"`
}

// ReadableBy reports whether userID may read the book.
func (b *Book) ReadableBy(userID string) bool {
	return !b.IsPrivate || b.OwnerID == userID
}

// Summary returns the display fields attached to sessions and shelf entries.
func (b *Book) Summary() *BookSummary {
	return &BookSummary{ID: b.ID, Title: b.Title, Author: b.Author, CoverURL: b.CoverURL}
}

// BookSummary is the book as populated into sessions and shelf entries.
type BookSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	CoverURL string `json:"coverUrl,omitempty"`
}
