package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is a text document held in a named collection of the document store.
// Research notes and reports are both documents; (Collection, Key) identifies one.
type Document struct {
	Id         uuid.UUID
	Collection string
	Key        string
	Content    string
	Metadata   map[string]string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
