package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/ndstyle/mindflow2/application/commands"
	"github.com/ndstyle/mindflow2/application/commands/bus"
	"github.com/ndstyle/mindflow2/application/services"
	"github.com/ndstyle/mindflow2/domain/core/aggregates"
	"github.com/ndstyle/mindflow2/domain/core/valueobjects"
	"github.com/ndstyle/mindflow2/pkg/auth"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

// MindMapCommandHandler executes the mind map commands through the
// service so every edit is load, mutate, save.
type MindMapCommandHandler struct {
	service *services.MindMapService
	logger  *zap.Logger
}

func NewMindMapCommandHandler(service *services.MindMapService, logger *zap.Logger) *MindMapCommandHandler {
	return &MindMapCommandHandler{service: service, logger: logger}
}

// Register adds a handler for every mind map command to b.
func (h *MindMapCommandHandler) Register(b *bus.CommandBus) error {
	routes := []struct {
		cmd     bus.Command
		handler bus.CommandHandlerFunc
	}{
		{commands.AddNodeCommand{}, h.addNode},
		{commands.RemoveNodeCommand{}, h.removeNode},
		{commands.ConnectCommand{}, h.connect},
		{commands.DisconnectCommand{}, h.disconnect},
		{commands.UpdateNodeCommand{}, h.updateNode},
		{commands.SaveMindMapCommand{}, h.save},
		{commands.DeleteMindMapCommand{}, h.delete},
	}
	for _, r := range routes {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return err
		}
	}
	return nil
}

func (h *MindMapCommandHandler) addNode(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.AddNodeCommand)

	var pos *valueobjects.Position
	if cmd.X != nil && cmd.Y != nil {
		p, err := valueobjects.NewPosition(*cmd.X, *cmd.Y)
		if err != nil {
			return nil, err
		}
		pos = &p
	}

	result := &commands.EditResult{}
	doc, err := h.service.Edit(ctx, cmd.Session, cmd.MindMapID, func(m *aggregates.MindMap) error {
		result.NodeID = m.AddNode(cmd.Label, pos).ID().String()
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.MindMap = doc
	return result, nil
}

func (h *MindMapCommandHandler) removeNode(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.RemoveNodeCommand)
	id, err := valueobjects.NewNodeID(cmd.NodeID)
	if err != nil {
		return nil, err
	}
	return h.edit(ctx, cmd.Session, cmd.MindMapID, func(m *aggregates.MindMap) error {
		m.RemoveNode(id)
		return nil
	})
}

func (h *MindMapCommandHandler) connect(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.ConnectCommand)
	source, err := valueobjects.NewNodeID(cmd.Source)
	if err != nil {
		return nil, err
	}
	target, err := valueobjects.NewNodeID(cmd.Target)
	if err != nil {
		return nil, err
	}

	result := &commands.EditResult{}
	doc, err := h.service.Edit(ctx, cmd.Session, cmd.MindMapID, func(m *aggregates.MindMap) error {
		edge, err := m.Connect(source, target)
		if err != nil {
			return err
		}
		result.EdgeID = edge.ID().String()
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.MindMap = doc
	return result, nil
}

func (h *MindMapCommandHandler) disconnect(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.DisconnectCommand)
	id, err := valueobjects.NewEdgeID(cmd.EdgeID)
	if err != nil {
		return nil, err
	}
	return h.edit(ctx, cmd.Session, cmd.MindMapID, func(m *aggregates.MindMap) error {
		if !m.Disconnect(id) {
			return pkgerrors.NewNotFoundError("edge")
		}
		return nil
	})
}

func (h *MindMapCommandHandler) updateNode(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.UpdateNodeCommand)
	id, err := valueobjects.NewNodeID(cmd.NodeID)
	if err != nil {
		return nil, err
	}
	var pos *valueobjects.Position
	if cmd.X != nil && cmd.Y != nil {
		p, err := valueobjects.NewPosition(*cmd.X, *cmd.Y)
		if err != nil {
			return nil, err
		}
		pos = &p
	}

	result := &commands.EditResult{NodeID: id.String()}
	doc, err := h.service.Edit(ctx, cmd.Session, cmd.MindMapID, func(m *aggregates.MindMap) error {
		if !m.HasNode(id) {
			return pkgerrors.NewNotFoundError("node")
		}
		if cmd.Label != nil {
			m.Relabel(id, *cmd.Label)
		}
		if pos != nil {
			m.Move(id, *pos)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.MindMap = doc
	return result, nil
}

func (h *MindMapCommandHandler) save(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.SaveMindMapCommand)
	m, err := h.service.Import(ctx, cmd.Document)
	if err != nil {
		return nil, err
	}
	if cmd.MindMapID != "" {
		h.logger.Debug("Replacing stored mind map", zap.String("mindmap_id", cmd.MindMapID))
		m.AssignID(cmd.MindMapID)
	}
	id, err := h.service.Save(ctx, cmd.Session, m, cmd.Title, cmd.Description)
	if err != nil {
		return nil, err
	}
	return &commands.SaveResult{ID: id}, nil
}

func (h *MindMapCommandHandler) delete(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.DeleteMindMapCommand)
	return nil, h.service.Delete(ctx, cmd.Session, cmd.MindMapID)
}

func (h *MindMapCommandHandler) edit(ctx context.Context, session auth.Session, id string, fn func(*aggregates.MindMap) error) (interface{}, error) {
	doc, err := h.service.Edit(ctx, session, id, fn)
	if err != nil {
		return nil, err
	}
	return &commands.EditResult{MindMap: doc}, nil
}
