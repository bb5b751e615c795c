// Package ports declares the collaborators the application layer needs:
// a document store, a text to graph generator and an event sink.
package ports

import (
	"context"
	"time"

	"github.com/ndstyle/mindflow2/domain/core/aggregates"
	"github.com/ndstyle/mindflow2/domain/events"
)

// StoredMindMap is a loaded document with its store bookkeeping.
type StoredMindMap struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	MindMap     *aggregates.MindMap
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Summary is one row of a user's document list.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MindMapStore persists mind maps as exchange documents.
//
// Save inserts a new document when m has no id and otherwise replaces the
// document with that id, returning FORBIDDEN if ownerID does not own it.
// Load returns NOT_FOUND for unknown ids. List is ordered by UpdatedAt,
// newest first. Delete returns FORBIDDEN when ownerID is not the owner.
type MindMapStore interface {
	Save(ctx context.Context, ownerID string, m *aggregates.MindMap, title, description string) (string, error)
	Load(ctx context.Context, id string) (*StoredMindMap, error)
	List(ctx context.Context, ownerID string) ([]Summary, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// Generator turns free-form notes into text that should contain an exchange
// document. The text is untrusted and may not parse.
type Generator interface {
	Generate(ctx context.Context, notes string) (string, error)
}

// EventPublisher forwards domain events to interested parties.
type EventPublisher interface {
	Publish(ctx context.Context, evts ...events.DomainEvent) error
}
