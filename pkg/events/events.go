// Package events defines the structured execution lifecycle events consumed
// by audit logging and monitoring collaborators.
package events

import (
	"time"

	"github.com/decisionflow/decisionflow/pkg/models"
)

// EventType identifies one execution lifecycle event.
type EventType string

// Topic is the event bus topic all execution events are published on.
const Topic = "decisionflow.executions"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ExecutionStartedEvent   EventType = "execution.started"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
	ExecutionPausedEvent    EventType = "execution.paused"
	ExecutionResumedEvent   EventType = "execution.resumed"
	NodeExecutedEvent       EventType = "execution.node_executed"
)

// BaseEvent carries the fields shared by every execution event.
type BaseEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	ExecutionID string    `json:"execution_id"`
	WorkflowID  string    `json:"workflow_id"`
}

// ExecutionStarted is emitted when a graph walk begins.
type ExecutionStarted struct {
	BaseEvent

	InputFields int    `json:"input_fields"`
	UserID      string `json:"user_id,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
}

func (e ExecutionStarted) GetType() EventType { return ExecutionStartedEvent }

// ExecutionCompleted is emitted on a successful terminal state. It carries
// everything an audit collaborator needs: outcome, duration and the node
// execution path.
type ExecutionCompleted struct {
	BaseEvent

	Status        models.ExecutionStatus `json:"status"`
	Decision      map[string]any         `json:"decision,omitempty"`
	Duration      time.Duration          `json:"duration"`
	ExecutionPath []string               `json:"execution_path"`
}

func (e ExecutionCompleted) GetType() EventType { return ExecutionCompletedEvent }

// ExecutionFailed is emitted on any fatal outcome, including timeouts and
// iteration-limit breaches.
type ExecutionFailed struct {
	BaseEvent

	Status        models.ExecutionStatus  `json:"status"`
	Errors        []models.ExecutionError `json:"errors,omitempty"`
	Duration      time.Duration           `json:"duration"`
	ExecutionPath []string                `json:"execution_path"`
}

func (e ExecutionFailed) GetType() EventType { return ExecutionFailedEvent }

// ExecutionPaused is emitted when a run suspends on an async operation.
type ExecutionPaused struct {
	BaseEvent

	OperationID string `json:"operation_id"`
	Reason      string `json:"reason,omitempty"`
}

func (e ExecutionPaused) GetType() EventType { return ExecutionPausedEvent }

// ExecutionResumed is emitted when a suspended run continues.
type ExecutionResumed struct {
	BaseEvent

	OperationID string `json:"operation_id"`
}

func (e ExecutionResumed) GetType() EventType { return ExecutionResumedEvent }

// NodeExecuted is emitted after each node completes, successfully or not.
type NodeExecuted struct {
	BaseEvent

	NodeID        string        `json:"node_id"`
	NodeType      string        `json:"node_type"`
	Success       bool          `json:"success"`
	NextConnector string        `json:"next_connector,omitempty"`
	Error         string        `json:"error,omitempty"`
	ExecutionTime time.Duration `json:"execution_time"`
}

func (e NodeExecuted) GetType() EventType { return NodeExecutedEvent }
