// Package models defines the core domain models for decisioning workflow execution.
package models

import (
	"github.com/mitchellh/mapstructure"
)

// NodeType is the closed set of node kinds the engine can execute.
type NodeType string

const (
	NodeTypeStart      NodeType = "start"
	NodeTypeCondition  NodeType = "condition"
	NodeTypeDecision   NodeType = "decision"
	NodeTypeAction     NodeType = "action"
	NodeTypeRuleSet    NodeType = "rule_set"
	NodeTypeDataSource NodeType = "data_source"
	NodeTypeEnd        NodeType = "end"
)

// KnownNodeTypes lists every built-in node type, in registration order.
func KnownNodeTypes() []NodeType {
	return []NodeType{
		NodeTypeStart,
		NodeTypeCondition,
		NodeTypeDecision,
		NodeTypeAction,
		NodeTypeRuleSet,
		NodeTypeDataSource,
		NodeTypeEnd,
	}
}

// IsValid reports whether the type is one of the built-in node types.
func (t NodeType) IsValid() bool {
	for _, known := range KnownNodeTypes() {
		if t == known {
			return true
		}
	}

	return false
}

// Node represents a single unit of work in a workflow graph. Nodes are
// immutable during execution; executors read the node and mutate only the
// execution context.
type Node struct {
	ID          string         `json:"id"                    validate:"required"`
	Type        NodeType       `json:"type"                  validate:"required"`
	Name        string         `json:"name"                  validate:"required,min=1"`
	Description string         `json:"description,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
	PositionX   int            `json:"position_x"`
	PositionY   int            `json:"position_y"`
}

// DecodeConfig decodes the node's raw config map into a typed per-node-type
// config struct. Unknown keys are ignored, type mismatches are errors.
func (n *Node) DecodeConfig(out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return err
	}

	return decoder.Decode(n.Config)
}

// IsTerminal reports whether reaching this node ends the graph walk.
func (n *Node) IsTerminal() bool {
	return n.Type == NodeTypeEnd
}
