package models

import (
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/document"
)

// Document is one stored document. Every document belongs to exactly one
// owner; queries never cross owners.
type Document struct {
	ID        string
	OwnerID   string
	Kind      string
	Payload   document.Payload
	CreatedAt time.Time
	UpdatedAt time.Time
}
