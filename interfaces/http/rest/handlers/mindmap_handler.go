package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ndstyle/mindflow2/application/commands"
	"github.com/ndstyle/mindflow2/application/commands/bus"
	"github.com/ndstyle/mindflow2/application/ports"
	"github.com/ndstyle/mindflow2/application/queries"
	querybus "github.com/ndstyle/mindflow2/application/queries/bus"
	"github.com/ndstyle/mindflow2/application/services"
	"github.com/ndstyle/mindflow2/domain/core/aggregates"
	"github.com/ndstyle/mindflow2/domain/exchange"
	domain "github.com/ndstyle/mindflow2/domain/services"
	"github.com/ndstyle/mindflow2/pkg/auth"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

// MindMapHandler serves the mind map API. Writes go through the command
// bus, stored reads through the query bus, and stateless transforms
// (generate, analyze, export of an unsaved map) straight to the service.
type MindMapHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	service    *services.MindMapService
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

func NewMindMapHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	service *services.MindMapService,
	errHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *MindMapHandler {
	return &MindMapHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		service:    service,
		errors:     errHandler,
		logger:     logger,
	}
}

// GenerateRequest is the body of POST /mindmaps/generate.
type GenerateRequest struct {
	Notes string `json:"notes"`
}

// GenerateResponse carries the generated document. Fallback is true when
// the generator output could not be used.
type GenerateResponse struct {
	exchange.Document
	Fallback bool `json:"fallback"`
}

// Generate handles POST /mindmaps/generate
func (h *MindMapHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.service.Generate(r.Context(), req.Notes)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, GenerateResponse{
		Document: exchange.FromMindMap(result.MindMap),
		Fallback: result.Fallback,
	})
}

// Analyze handles POST /mindmaps/analyze with a raw graph document.
func (h *MindMapHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.service.AnalyzeJSON(r.Context(), data)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}

// SaveRequest is the body of POST /mindmaps and PUT /mindmaps/{id}.
type SaveRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Document    json.RawMessage `json:"document"`
}

// Create handles POST /mindmaps
func (h *MindMapHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "", http.StatusCreated)
}

// Update handles PUT /mindmaps/{id}
func (h *MindMapHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *MindMapHandler) save(w http.ResponseWriter, r *http.Request, id string, status int) {
	var req SaveRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.SaveMindMapCommand{
		Session:     auth.SessionFrom(r.Context()),
		MindMapID:   id,
		Title:       req.Title,
		Description: req.Description,
		Document:    req.Document,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, h.logger, status, result.(*commands.SaveResult))
}

// List handles GET /mindmaps
func (h *MindMapHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListMindMapsQuery{
		Session: auth.SessionFrom(r.Context()),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	summaries := result.([]ports.Summary)
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"mindmaps": summaries,
		"total":    len(summaries),
	})
}

// Get handles GET /mindmaps/{id}
func (h *MindMapHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, h.logger, http.StatusOK, toMindMapResponse(doc))
}

// Delete handles DELETE /mindmaps/{id}
func (h *MindMapHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, err := h.commandBus.Send(r.Context(), commands.DeleteMindMapCommand{
		Session:   auth.SessionFrom(r.Context()),
		MindMapID: chi.URLParam(r, "id"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Analysis handles GET /mindmaps/{id}/analysis
func (h *MindMapHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.AnalyzeMindMapQuery{
		Session:   auth.SessionFrom(r.Context()),
		MindMapID: chi.URLParam(r, "id"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result.(domain.AnalysisResult))
}

// AddNodeRequest is the body of POST /mindmaps/{id}/nodes.
type AddNodeRequest struct {
	Label string   `json:"label"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
}

// AddNode handles POST /mindmaps/{id}/nodes
func (h *MindMapHandler) AddNode(w http.ResponseWriter, r *http.Request) {
	var req AddNodeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.sendEdit(w, r, http.StatusCreated, commands.AddNodeCommand{
		Session:   auth.SessionFrom(r.Context()),
		MindMapID: chi.URLParam(r, "id"),
		Label:     req.Label,
		X:         req.X,
		Y:         req.Y,
	})
}

// UpdateNodeRequest is the body of PATCH /mindmaps/{id}/nodes/{nodeID}.
// Label and position may be changed together or separately.
type UpdateNodeRequest struct {
	Label *string  `json:"label"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
}

// UpdateNode handles PATCH /mindmaps/{id}/nodes/{nodeID}
func (h *MindMapHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var req UpdateNodeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.sendEdit(w, r, http.StatusOK, commands.UpdateNodeCommand{
		Session:   auth.SessionFrom(r.Context()),
		MindMapID: chi.URLParam(r, "id"),
		NodeID:    chi.URLParam(r, "nodeID"),
		Label:     req.Label,
		X:         req.X,
		Y:         req.Y,
	})
}

// DeleteNode handles DELETE /mindmaps/{id}/nodes/{nodeID}
func (h *MindMapHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	h.sendEdit(w, r, http.StatusOK, commands.RemoveNodeCommand{
		Session:   auth.SessionFrom(r.Context()),
		MindMapID: chi.URLParam(r, "id"),
		NodeID:    chi.URLParam(r, "nodeID"),
	})
}

// ConnectRequest is the body of POST /mindmaps/{id}/edges.
type ConnectRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Connect handles POST /mindmaps/{id}/edges
func (h *MindMapHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.sendEdit(w, r, http.StatusCreated, commands.ConnectCommand{
		Session:   auth.SessionFrom(r.Context()),
		MindMapID: chi.URLParam(r, "id"),
		Source:    req.Source,
		Target:    req.Target,
	})
}

// Disconnect handles DELETE /mindmaps/{id}/edges/{edgeID}
func (h *MindMapHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	h.sendEdit(w, r, http.StatusOK, commands.DisconnectCommand{
		Session:   auth.SessionFrom(r.Context()),
		MindMapID: chi.URLParam(r, "id"),
		EdgeID:    chi.URLParam(r, "edgeID"),
	})
}

// Export handles GET /mindmaps/{id}/export.{format}
func (h *MindMapHandler) Export(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r)
	if !ok {
		return
	}
	h.writeExport(w, r, doc.MindMap)
}

// ExportDocument handles POST /mindmaps/export.{format} for a map that has
// not been saved. The body is an untrusted graph document.
func (h *MindMapHandler) ExportDocument(w http.ResponseWriter, r *http.Request) {
	m, ok := h.importBody(w, r)
	if !ok {
		return
	}
	h.writeExport(w, r, m)
}

// Share handles GET /mindmaps/{id}/share
func (h *MindMapHandler) Share(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r)
	if !ok {
		return
	}
	h.writeShareLink(w, r, doc.MindMap)
}

// ShareDocument handles POST /mindmaps/share for an unsaved map.
func (h *MindMapHandler) ShareDocument(w http.ResponseWriter, r *http.Request) {
	m, ok := h.importBody(w, r)
	if !ok {
		return
	}
	h.writeShareLink(w, r, m)
}

// OpenShared handles GET /map/temp?data=... It needs no session and
// returns the decoded document for read-only display.
func (h *MindMapHandler) OpenShared(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.OpenShared(r.Context(), r.URL.Query().Get("data"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"document": exchange.FromMindMap(m),
		"readOnly": true,
	})
}

func (h *MindMapHandler) writeExport(w http.ResponseWriter, r *http.Request, m *aggregates.MindMap) {
	format := chi.URLParam(r, "format")
	switch format {
	case services.FormatJSON, services.FormatSVG, services.FormatPNG:
	default:
		h.errors.Handle(w, r, pkgerrors.NewValidationError(fmt.Sprintf("unsupported export format %q", format)))
		return
	}

	res, err := h.service.Export(r.Context(), m, format)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		h.logger.Warn("Failed to write export", zap.Error(err))
	}
}

func (h *MindMapHandler) writeShareLink(w http.ResponseWriter, r *http.Request, m *aggregates.MindMap) {
	link, err := h.service.ShareLink(m)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"link": link})
}

func (h *MindMapHandler) load(w http.ResponseWriter, r *http.Request) (*ports.StoredMindMap, bool) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetMindMapQuery{
		Session:   auth.SessionFrom(r.Context()),
		MindMapID: chi.URLParam(r, "id"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return nil, false
	}
	return result.(*ports.StoredMindMap), true
}

func (h *MindMapHandler) importBody(w http.ResponseWriter, r *http.Request) (*aggregates.MindMap, bool) {
	data, err := readBody(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return nil, false
	}
	m, err := h.service.Import(r.Context(), data)
	if err != nil {
		h.errors.Handle(w, r, err)
		return nil, false
	}
	return m, true
}

func (h *MindMapHandler) sendEdit(w http.ResponseWriter, r *http.Request, status int, cmd bus.Command) {
	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, status, toEditResponse(result.(*commands.EditResult)))
}

func toEditResponse(res *commands.EditResult) EditResponse {
	return EditResponse{
		MindMap: toMindMapResponse(res.MindMap),
		NodeID:  res.NodeID,
		EdgeID:  res.EdgeID,
	}
}
