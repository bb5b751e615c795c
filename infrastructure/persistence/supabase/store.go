package supabase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/supabase-community/postgrest-go"
	"go.uber.org/zap"

	"github.com/ndstyle/mindflow2/application/ports"
	"github.com/ndstyle/mindflow2/domain/core/aggregates"
	"github.com/ndstyle/mindflow2/domain/exchange"
	domain "github.com/ndstyle/mindflow2/domain/services"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

// TableName is the PostgREST table holding mind maps.
const TableName = "mind_maps"

// Querier opens a query on a table. Both *supabase.Client and
// *postgrest.Client satisfy it.
type Querier interface {
	From(table string) *postgrest.QueryBuilder
}

type mindMapRow struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Nodes       json.RawMessage `json:"nodes"`
	Edges       json.RawMessage `json:"edges"`
	Metadata    json.RawMessage `json:"metadata"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// writeRow leaves id and created_at to the database.
type writeRow struct {
	UserID      string             `json:"user_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Nodes       []exchange.NodeDoc `json:"nodes"`
	Edges       []exchange.EdgeDoc `json:"edges"`
	Metadata    exchange.Metadata  `json:"metadata"`
	UpdatedAt   *time.Time         `json:"updated_at,omitempty"`
}

type ownerRow struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

// Store is a MindMapStore backed by the Supabase mind_maps table.
type Store struct {
	client     Querier
	normalizer *domain.Normalizer
	logger     *zap.Logger
	now        func() time.Time
}

func NewStore(client Querier, logger *zap.Logger) *Store {
	return &Store{
		client:     client,
		normalizer: domain.NewNormalizer(),
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Store) Save(ctx context.Context, ownerID string, m *aggregates.MindMap, title, description string) (string, error) {
	doc := exchange.FromMindMap(m)
	row := writeRow{
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Nodes:       doc.Nodes,
		Edges:       doc.Edges,
		Metadata:    doc.Metadata,
	}

	if m.ID() == "" {
		var inserted []mindMapRow
		if _, err := s.client.From(TableName).
			Insert(row, false, "", "representation", "").
			ExecuteTo(&inserted); err != nil {
			s.logger.Error("Failed to insert mind map", zap.String("user_id", ownerID), zap.Error(err))
			return "", pkgerrors.NewDatabaseError("insert mind map", err)
		}
		if len(inserted) == 0 {
			return "", pkgerrors.NewDatabaseError("insert mind map", nil)
		}
		return inserted[0].ID, nil
	}

	if err := s.checkOwner(m.ID(), ownerID); err != nil {
		return "", err
	}
	now := s.now().UTC()
	row.UpdatedAt = &now
	if _, _, err := s.client.From(TableName).
		Update(row, "minimal", "").
		Eq("id", m.ID()).
		Eq("user_id", ownerID).
		Execute(); err != nil {
		s.logger.Error("Failed to update mind map", zap.String("mindmap_id", m.ID()), zap.Error(err))
		return "", pkgerrors.NewDatabaseError("update mind map", err)
	}
	return m.ID(), nil
}

func (s *Store) Load(ctx context.Context, id string) (*ports.StoredMindMap, error) {
	var rows []mindMapRow
	if _, err := s.client.From(TableName).
		Select("*", "", false).
		Eq("id", id).
		ExecuteTo(&rows); err != nil {
		return nil, pkgerrors.NewDatabaseError("load mind map", err)
	}
	if len(rows) == 0 {
		return nil, pkgerrors.NewNotFoundError("mind map")
	}
	return s.fromRow(rows[0])
}

func (s *Store) List(ctx context.Context, ownerID string) ([]ports.Summary, error) {
	var rows []mindMapRow
	if _, err := s.client.From(TableName).
		Select("id,title,updated_at", "", false).
		Eq("user_id", ownerID).
		Order("updated_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows); err != nil {
		return nil, pkgerrors.NewDatabaseError("list mind maps", err)
	}

	out := make([]ports.Summary, 0, len(rows))
	for _, r := range rows {
		out = append(out, ports.Summary{ID: r.ID, Title: r.Title, UpdatedAt: r.UpdatedAt})
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id, ownerID string) error {
	if err := s.checkOwner(id, ownerID); err != nil {
		return err
	}
	if _, _, err := s.client.From(TableName).
		Delete("minimal", "").
		Eq("id", id).
		Eq("user_id", ownerID).
		Execute(); err != nil {
		return pkgerrors.NewDatabaseError("delete mind map", err)
	}
	return nil
}

// Ping issues a cheap query for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	var rows []ownerRow
	if _, err := s.client.From(TableName).Select("id", "", false).Limit(1, "").ExecuteTo(&rows); err != nil {
		return pkgerrors.NewDatabaseError("ping", err)
	}
	return nil
}

func (s *Store) checkOwner(id, ownerID string) error {
	var rows []ownerRow
	if _, err := s.client.From(TableName).
		Select("id,user_id", "", false).
		Eq("id", id).
		ExecuteTo(&rows); err != nil {
		return pkgerrors.NewDatabaseError("load mind map owner", err)
	}
	if len(rows) == 0 {
		return pkgerrors.NewNotFoundError("mind map")
	}
	if rows[0].UserID != ownerID {
		return pkgerrors.NewForbiddenError("mind map belongs to another user")
	}
	return nil
}

// fromRow rebuilds the map through the normalizer; rows written by older
// clients may not be well formed.
func (s *Store) fromRow(r mindMapRow) (*ports.StoredMindMap, error) {
	payload, err := json.Marshal(map[string]json.RawMessage{
		"nodes":    orEmpty(r.Nodes, "[]"),
		"edges":    orEmpty(r.Edges, "[]"),
		"metadata": orEmpty(r.Metadata, "{}"),
	})
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to decode stored mind map").WithCause(err)
	}
	m, report, err := s.normalizer.NormalizeJSON(payload)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored mind map is corrupt").WithCause(err)
	}
	if report.Repaired() {
		s.logger.Warn("Repaired stored mind map on load",
			zap.String("mindmap_id", r.ID),
			zap.Int("dropped_edges", report.DroppedEdges),
			zap.Int("synthesized_node_ids", report.SynthesizedNodeIDs),
		)
	}
	m.AssignID(r.ID)
	return &ports.StoredMindMap{
		ID:          r.ID,
		OwnerID:     r.UserID,
		Title:       r.Title,
		Description: r.Description,
		MindMap:     m,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

func orEmpty(raw json.RawMessage, empty string) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return json.RawMessage(empty)
	}
	return raw
}
