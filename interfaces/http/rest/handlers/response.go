package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ndstyle/mindflow2/application/ports"
	"github.com/ndstyle/mindflow2/domain/exchange"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

// maxBodyBytes bounds request bodies; documents larger than this are
// rejected before parsing.
const maxBodyBytes = 4 << 20

// MindMapResponse is the wire form of a stored document.
type MindMapResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Document    exchange.Document `json:"document"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// EditResponse answers node and edge edits.
type EditResponse struct {
	MindMap MindMapResponse `json:"mindmap"`
	NodeID  string          `json:"nodeId,omitempty"`
	EdgeID  string          `json:"edgeId,omitempty"`
}

func toMindMapResponse(doc *ports.StoredMindMap) MindMapResponse {
	return MindMapResponse{
		ID:          doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		Document:    exchange.FromMindMap(doc.MindMap),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

// decodeJSON decodes a JSON body into dst. Unknown fields are ignored.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return pkgerrors.NewValidationError("invalid request body").WithCause(err)
	}
	return nil
}

// readBody returns the raw body, used where the body itself is untrusted
// graph input.
func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, pkgerrors.NewValidationError("failed to read request body").WithCause(err)
	}
	if len(data) > maxBodyBytes {
		return nil, pkgerrors.NewValidationError("request body too large").WithDetail("max_bytes", maxBodyBytes)
	}
	return data, nil
}
