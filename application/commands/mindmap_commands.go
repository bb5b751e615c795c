package commands

import (
	"encoding/json"

	"github.com/ndstyle/mindflow2/application/ports"
	"github.com/ndstyle/mindflow2/pkg/auth"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
	"github.com/ndstyle/mindflow2/pkg/utils"
)

// AddNodeCommand appends a node to a stored mind map. Without X and Y the
// node is placed on the default grid.
type AddNodeCommand struct {
	Session   auth.Session `json:"-"`
	MindMapID string       `json:"mindmap_id" validate:"required"`
	Label     string       `json:"label" validate:"max=200"`
	X         *float64     `json:"x"`
	Y         *float64     `json:"y"`
}

func (c AddNodeCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	if (c.X == nil) != (c.Y == nil) {
		return pkgerrors.NewValidationError("x and y must be given together")
	}
	return nil
}

// RemoveNodeCommand deletes a node and its edges.
type RemoveNodeCommand struct {
	Session   auth.Session `json:"-"`
	MindMapID string       `json:"mindmap_id" validate:"required"`
	NodeID    string       `json:"node_id" validate:"required"`
}

func (c RemoveNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// ConnectCommand adds an edge between two existing nodes.
type ConnectCommand struct {
	Session   auth.Session `json:"-"`
	MindMapID string       `json:"mindmap_id" validate:"required"`
	Source    string       `json:"source" validate:"required"`
	Target    string       `json:"target" validate:"required"`
}

func (c ConnectCommand) Validate() error { return utils.ValidateStruct(c) }

type DisconnectCommand struct {
	Session   auth.Session `json:"-"`
	MindMapID string       `json:"mindmap_id" validate:"required"`
	EdgeID    string       `json:"edge_id" validate:"required"`
}

func (c DisconnectCommand) Validate() error { return utils.ValidateStruct(c) }

// UpdateNodeCommand relabels and/or moves one node in a single edit, so
// either every requested change is stored or none is.
type UpdateNodeCommand struct {
	Session   auth.Session `json:"-"`
	MindMapID string       `json:"mindmap_id" validate:"required"`
	NodeID    string       `json:"node_id" validate:"required"`
	Label     *string      `json:"label" validate:"omitempty,max=200"`
	X         *float64     `json:"x"`
	Y         *float64     `json:"y"`
}

func (c UpdateNodeCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	if c.Label == nil && c.X == nil && c.Y == nil {
		return pkgerrors.NewValidationError("nothing to update")
	}
	if (c.X == nil) != (c.Y == nil) {
		return pkgerrors.NewValidationError("x and y must be given together")
	}
	return nil
}

// SaveMindMapCommand stores a document. An empty MindMapID inserts a new
// one; otherwise the existing document is replaced.
type SaveMindMapCommand struct {
	Session     auth.Session    `json:"-"`
	MindMapID   string          `json:"mindmap_id"`
	Title       string          `json:"title" validate:"notblank,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	Document    json.RawMessage `json:"document" validate:"required"`
}

func (c SaveMindMapCommand) Validate() error { return utils.ValidateStruct(c) }

type DeleteMindMapCommand struct {
	Session   auth.Session `json:"-"`
	MindMapID string       `json:"mindmap_id" validate:"required"`
}

func (c DeleteMindMapCommand) Validate() error { return utils.ValidateStruct(c) }

// EditResult is returned by the node and edge commands.
type EditResult struct {
	MindMap *ports.StoredMindMap
	NodeID  string
	EdgeID  string
}

// SaveResult is returned by SaveMindMapCommand.
type SaveResult struct {
	ID string `json:"id"`
}
