package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// OperationStatus is the lifecycle state of one async operation.
type OperationStatus string

const (
	OperationPending   OperationStatus = "pending"
	OperationCompleted OperationStatus = "completed"
	OperationFailed    OperationStatus = "failed"
)

// Operation is one pending external interaction (document upload, manual
// review, callback) that an execution is waiting on.
type Operation struct {
	ID          string          `json:"id"`
	ExecutionID string          `json:"execution_id"`
	NodeID      string          `json:"node_id,omitempty"`
	Status      OperationStatus `json:"status"`
	Result      map[string]any  `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	FinishedAt  time.Time       `json:"finished_at,omitempty"`

	done chan struct{}
}

// OperationRegistry tracks async operations and lets waiters block on their
// completion without storing callbacks. Completion is signalled through a
// per-operation channel.
type OperationRegistry struct {
	logger *slog.Logger

	mu  sync.Mutex
	ops map[string]*Operation
}

func NewOperationRegistry(logger *slog.Logger) *OperationRegistry {
	return &OperationRegistry{
		logger: logger.With("module", "operations"),
		ops:    make(map[string]*Operation),
	}
}

// Register creates a pending operation bound to an execution and returns it.
func (r *OperationRegistry) Register(executionID, nodeID string) *Operation {
	op := &Operation{
		ID:          "op-" + uuid.New().String(),
		ExecutionID: executionID,
		NodeID:      nodeID,
		Status:      OperationPending,
		CreatedAt:   time.Now().UTC(),
		done:        make(chan struct{}),
	}

	r.mu.Lock()
	r.ops[op.ID] = op
	r.mu.Unlock()

	r.logger.Info("Registered async operation",
		"operation_id", op.ID, "execution_id", executionID, "node_id", nodeID)

	return op
}

// Complete finishes a pending operation with a result and wakes any waiter.
func (r *OperationRegistry) Complete(operationID string, result map[string]any) error {
	return r.finish(operationID, func(op *Operation) {
		op.Status = OperationCompleted
		op.Result = result
	})
}

// Fail finishes a pending operation with an error and wakes any waiter.
func (r *OperationRegistry) Fail(operationID string, cause error) error {
	return r.finish(operationID, func(op *Operation) {
		op.Status = OperationFailed
		op.Error = cause.Error()
	})
}

func (r *OperationRegistry) finish(operationID string, apply func(*Operation)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, ok := r.ops[operationID]
	if !ok {
		return fmt.Errorf("finish operation %s: %w", operationID, ErrOperationNotFound)
	}

	if op.Status != OperationPending {
		return fmt.Errorf("finish operation %s: %w", operationID, ErrOperationFinished)
	}

	apply(op)
	op.FinishedAt = time.Now().UTC()
	close(op.done)

	return nil
}

// Get returns a snapshot of one operation.
func (r *OperationRegistry) Get(operationID string) (*Operation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, ok := r.ops[operationID]
	if !ok {
		return nil, fmt.Errorf("get operation %s: %w", operationID, ErrOperationNotFound)
	}

	snapshot := *op

	return &snapshot, nil
}

// Wait blocks until the operation finishes or the context is done. On
// completion it returns the operation result; on failure it returns the
// recorded error.
func (r *OperationRegistry) Wait(ctx context.Context, operationID string) (map[string]any, error) {
	r.mu.Lock()
	op, ok := r.ops[operationID]
	r.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("wait for operation %s: %w", operationID, ErrOperationNotFound)
	}

	select {
	case <-op.done:
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for operation %s: %w", operationID, ctx.Err())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if op.Status == OperationFailed {
		return nil, fmt.Errorf("operation %s failed: %s", operationID, op.Error)
	}

	return op.Result, nil
}

// Cleanup removes finished operations older than the given age and returns
// how many were dropped. Pending operations are never removed.
func (r *OperationRegistry) Cleanup(olderThan time.Duration) int {
	cutoff := time.Now().UTC().Add(-olderThan)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0

	for id, op := range r.ops {
		if op.Status == OperationPending {
			continue
		}

		if op.FinishedAt.Before(cutoff) {
			delete(r.ops, id)

			removed++
		}
	}

	if removed > 0 {
		r.logger.Debug("Cleaned up finished operations", "removed", removed)
	}

	return removed
}
