package events

import "time"

const (
	TypeNodeAdded      = "mindmap.node_added"
	TypeNodeRemoved    = "mindmap.node_removed"
	TypeNodeRelabeled  = "mindmap.node_relabeled"
	TypeNodeMoved      = "mindmap.node_moved"
	TypeNodesConnected = "mindmap.nodes_connected"
	TypeEdgeRemoved    = "mindmap.edge_removed"
	TypeMindMapSaved   = "mindmap.saved"
	TypeMindMapDeleted = "mindmap.deleted"
)

type NodeAdded struct {
	BaseEvent
	NodeID string  `json:"node_id"`
	Label  string  `json:"label"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

func NewNodeAdded(mapID string, version int, nodeID, label string, x, y float64, at time.Time) NodeAdded {
	return NodeAdded{
		BaseEvent: newBase(mapID, TypeNodeAdded, version, at),
		NodeID:    nodeID,
		Label:     label,
		X:         x,
		Y:         y,
	}
}

// NodeRemoved also lists the edges that were cascaded away with the node.
type NodeRemoved struct {
	BaseEvent
	NodeID         string   `json:"node_id"`
	RemovedEdgeIDs []string `json:"removed_edge_ids,omitempty"`
}

func NewNodeRemoved(mapID string, version int, nodeID string, removedEdges []string, at time.Time) NodeRemoved {
	return NodeRemoved{
		BaseEvent:      newBase(mapID, TypeNodeRemoved, version, at),
		NodeID:         nodeID,
		RemovedEdgeIDs: removedEdges,
	}
}

type NodeRelabeled struct {
	BaseEvent
	NodeID   string `json:"node_id"`
	OldLabel string `json:"old_label"`
	NewLabel string `json:"new_label"`
}

func NewNodeRelabeled(mapID string, version int, nodeID, oldLabel, newLabel string, at time.Time) NodeRelabeled {
	return NodeRelabeled{
		BaseEvent: newBase(mapID, TypeNodeRelabeled, version, at),
		NodeID:    nodeID,
		OldLabel:  oldLabel,
		NewLabel:  newLabel,
	}
}

type NodeMoved struct {
	BaseEvent
	NodeID string  `json:"node_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

func NewNodeMoved(mapID string, version int, nodeID string, x, y float64, at time.Time) NodeMoved {
	return NodeMoved{
		BaseEvent: newBase(mapID, TypeNodeMoved, version, at),
		NodeID:    nodeID,
		X:         x,
		Y:         y,
	}
}

type NodesConnected struct {
	BaseEvent
	EdgeID string `json:"edge_id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

func NewNodesConnected(mapID string, version int, edgeID, source, target string, at time.Time) NodesConnected {
	return NodesConnected{
		BaseEvent: newBase(mapID, TypeNodesConnected, version, at),
		EdgeID:    edgeID,
		Source:    source,
		Target:    target,
	}
}

type EdgeRemoved struct {
	BaseEvent
	EdgeID string `json:"edge_id"`
}

func NewEdgeRemoved(mapID string, version int, edgeID string, at time.Time) EdgeRemoved {
	return EdgeRemoved{
		BaseEvent: newBase(mapID, TypeEdgeRemoved, version, at),
		EdgeID:    edgeID,
	}
}

// MindMapSaved is raised by the application layer after a store write.
type MindMapSaved struct {
	BaseEvent
	OwnerID   string `json:"owner_id"`
	Title     string `json:"title"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func NewMindMapSaved(mapID, ownerID, title string, nodes, edges int, at time.Time) MindMapSaved {
	return MindMapSaved{
		BaseEvent: newBase(mapID, TypeMindMapSaved, 1, at),
		OwnerID:   ownerID,
		Title:     title,
		NodeCount: nodes,
		EdgeCount: edges,
	}
}

type MindMapDeleted struct {
	BaseEvent
	OwnerID string `json:"owner_id"`
}

func NewMindMapDeleted(mapID, ownerID string, at time.Time) MindMapDeleted {
	return MindMapDeleted{
		BaseEvent: newBase(mapID, TypeMindMapDeleted, 1, at),
		OwnerID:   ownerID,
	}
}
