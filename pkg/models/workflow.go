package models

import (
	"errors"
	"fmt"
	"time"
)

// WorkflowStatus represents the lifecycle state of a workflow definition.
type WorkflowStatus string

const (
	WorkflowStatusDraft       WorkflowStatus = "draft"       // Editable, not executable
	WorkflowStatusPublished   WorkflowStatus = "published"   // Current active, executable
	WorkflowStatusUnpublished WorkflowStatus = "unpublished" // Historical, not executable
)

// ErrInvalidWorkflow wraps all structural validation failures.
var ErrInvalidWorkflow = errors.New("invalid workflow")

// Workflow is a directed graph of typed nodes. It is immutable for the
// duration of one execution; the engine only reads it.
type Workflow struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"        validate:"required,min=3"`
	Description string         `json:"description"`
	Status      WorkflowStatus `json:"status"`
	Nodes       []*Node        `json:"nodes"`
	Connections []*Connection  `json:"connections"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Owner       string         `json:"owner,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NodeByID returns the node with the given id, or nil.
func (w *Workflow) NodeByID(id string) *Node {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// StartNode returns the unique start node, or an error when it is missing or
// ambiguous.
func (w *Workflow) StartNode() (*Node, error) {
	var start *Node

	for _, node := range w.Nodes {
		if node.Type != NodeTypeStart {
			continue
		}

		if start != nil {
			return nil, fmt.Errorf("%w: workflow %s has multiple start nodes", ErrInvalidWorkflow, w.ID)
		}

		start = node
	}

	if start == nil {
		return nil, fmt.Errorf("%w: workflow %s has no start node", ErrInvalidWorkflow, w.ID)
	}

	return start, nil
}

// OutgoingConnections returns every connection whose source is the given node,
// in declaration order.
func (w *Workflow) OutgoingConnections(nodeID string) []*Connection {
	var out []*Connection

	for _, conn := range w.Connections {
		if conn.Source == nodeID {
			out = append(out, conn)
		}
	}

	return out
}

// Validate performs structural validation of the graph: node ids must be
// unique, node types known, connection endpoints must reference existing
// nodes, and exactly one start node must exist. Violations are configuration
// errors, never runtime conditions.
func (w *Workflow) Validate() error {
	seen := make(map[string]bool, len(w.Nodes))

	for _, node := range w.Nodes {
		if node.ID == "" {
			return fmt.Errorf("%w: node with empty id", ErrInvalidWorkflow)
		}

		if seen[node.ID] {
			return fmt.Errorf("%w: duplicate node id %q", ErrInvalidWorkflow, node.ID)
		}

		seen[node.ID] = true

		if !node.Type.IsValid() {
			return fmt.Errorf("%w: node %s has unknown type %q", ErrInvalidWorkflow, node.ID, node.Type)
		}
	}

	for _, conn := range w.Connections {
		if !seen[conn.Source] {
			return fmt.Errorf("%w: connection %s references missing source node %q", ErrInvalidWorkflow, conn.ID, conn.Source)
		}

		if !seen[conn.Target] {
			return fmt.Errorf("%w: connection %s references missing target node %q", ErrInvalidWorkflow, conn.ID, conn.Target)
		}
	}

	if _, err := w.StartNode(); err != nil {
		return err
	}

	return nil
}
