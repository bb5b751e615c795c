package queries

import (
	"github.com/ndstyle/mindflow2/pkg/auth"
	"github.com/ndstyle/mindflow2/pkg/utils"
)

// GetMindMapQuery loads one document owned by the caller.
type GetMindMapQuery struct {
	Session   auth.Session `json:"-"`
	MindMapID string       `json:"mindmap_id" validate:"required"`
}

func (q GetMindMapQuery) Validate() error { return utils.ValidateStruct(q) }

// ListMindMapsQuery lists the caller's documents, newest first.
type ListMindMapsQuery struct {
	Session auth.Session `json:"-"`
}

func (q ListMindMapsQuery) Validate() error { return q.Session.RequireUser() }

// AnalyzeMindMapQuery computes analytics for a stored document.
type AnalyzeMindMapQuery struct {
	Session   auth.Session `json:"-"`
	MindMapID string       `json:"mindmap_id" validate:"required"`
}

func (q AnalyzeMindMapQuery) Validate() error { return utils.ValidateStruct(q) }
