package model

import "time"

// Document is an owner-scoped note with a markdown body.
type Document struct {
	ID        int64
	OwnerID   int64
	Title     string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
