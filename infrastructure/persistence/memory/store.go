package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ndstyle/mindflow2/application/ports"
	"github.com/ndstyle/mindflow2/domain/core/aggregates"
	domain "github.com/ndstyle/mindflow2/domain/services"
	"github.com/ndstyle/mindflow2/infrastructure/export"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

type record struct {
	id          string
	ownerID     string
	title       string
	description string
	document    string
	createdAt   time.Time
	updatedAt   time.Time
}

// Store is a MindMapStore kept in process memory. Documents are held in
// exchange JSON form so a loaded map never aliases a saved one.
type Store struct {
	mu         sync.RWMutex
	records    map[string]*record
	normalizer *domain.Normalizer
	logger     *zap.Logger
	now        func() time.Time
}

func NewStore(logger *zap.Logger) *Store {
	return &Store{
		records:    make(map[string]*record),
		normalizer: domain.NewNormalizer(),
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Store) Save(ctx context.Context, ownerID string, m *aggregates.MindMap, title, description string) (string, error) {
	doc, err := export.ToJSON(m)
	if err != nil {
		return "", pkgerrors.NewInternalError("failed to encode mind map").WithCause(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id := m.ID()
	if id == "" {
		id = uuid.New().String()
		s.records[id] = &record{id: id, ownerID: ownerID, createdAt: now}
	}
	rec, ok := s.records[id]
	if !ok {
		return "", pkgerrors.NewNotFoundError("mind map")
	}
	if rec.ownerID != ownerID {
		return "", pkgerrors.NewForbiddenError("mind map belongs to another user")
	}

	rec.title = title
	rec.description = description
	rec.document = doc
	rec.updatedAt = now

	s.logger.Debug("Stored mind map in memory", zap.String("mindmap_id", id), zap.Int("bytes", len(doc)))
	return id, nil
}

func (s *Store) Load(ctx context.Context, id string) (*ports.StoredMindMap, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	var copied record
	if ok {
		copied = *rec
	}
	s.mu.RUnlock()
	if !ok {
		return nil, pkgerrors.NewNotFoundError("mind map")
	}

	m, _, err := s.normalizer.NormalizeJSON([]byte(copied.document))
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored mind map is corrupt").WithCause(err)
	}
	m.AssignID(copied.id)
	return &ports.StoredMindMap{
		ID:          copied.id,
		OwnerID:     copied.ownerID,
		Title:       copied.title,
		Description: copied.description,
		MindMap:     m,
		CreatedAt:   copied.createdAt,
		UpdatedAt:   copied.updatedAt,
	}, nil
}

func (s *Store) List(ctx context.Context, ownerID string) ([]ports.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ports.Summary, 0)
	for _, rec := range s.records {
		if rec.ownerID == ownerID {
			out = append(out, ports.Summary{ID: rec.id, Title: rec.title, UpdatedAt: rec.updatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return pkgerrors.NewNotFoundError("mind map")
	}
	if rec.ownerID != ownerID {
		return pkgerrors.NewForbiddenError("mind map belongs to another user")
	}
	delete(s.records, id)
	return nil
}

// Ping always succeeds; it lets the memory store serve readiness checks.
func (s *Store) Ping(ctx context.Context) error { return nil }
