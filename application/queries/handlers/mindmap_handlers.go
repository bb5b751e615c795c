package handlers

import (
	"context"

	"github.com/ndstyle/mindflow2/application/queries"
	"github.com/ndstyle/mindflow2/application/queries/bus"
	"github.com/ndstyle/mindflow2/application/services"
)

// MindMapQueryHandler answers the read side.
type MindMapQueryHandler struct {
	service *services.MindMapService
}

func NewMindMapQueryHandler(service *services.MindMapService) *MindMapQueryHandler {
	return &MindMapQueryHandler{service: service}
}

// Register adds a handler for every mind map query to b.
func (h *MindMapQueryHandler) Register(b *bus.QueryBus) error {
	if err := b.Register(queries.GetMindMapQuery{}, bus.QueryHandlerFunc(h.get)); err != nil {
		return err
	}
	if err := b.Register(queries.ListMindMapsQuery{}, bus.QueryHandlerFunc(h.list)); err != nil {
		return err
	}
	return b.Register(queries.AnalyzeMindMapQuery{}, bus.QueryHandlerFunc(h.analyze))
}

func (h *MindMapQueryHandler) get(ctx context.Context, q bus.Query) (interface{}, error) {
	query := q.(queries.GetMindMapQuery)
	return h.service.Get(ctx, query.Session, query.MindMapID)
}

func (h *MindMapQueryHandler) list(ctx context.Context, q bus.Query) (interface{}, error) {
	query := q.(queries.ListMindMapsQuery)
	return h.service.List(ctx, query.Session)
}

func (h *MindMapQueryHandler) analyze(ctx context.Context, q bus.Query) (interface{}, error) {
	query := q.(queries.AnalyzeMindMapQuery)
	doc, err := h.service.Get(ctx, query.Session, query.MindMapID)
	if err != nil {
		return nil, err
	}
	return h.service.Analyze(doc.MindMap), nil
}
