package engine

import (
	"log/slog"
	"sort"

	"github.com/decisionflow/decisionflow/pkg/expression"
	"github.com/decisionflow/decisionflow/pkg/models"
)

// resolveNext picks the outgoing connection to follow after a node produced
// the given connector label. Candidates are considered in descending priority
// order (stable for ties). A connection is eligible when its connector type
// matches the label and its condition, if any, evaluates to true against the
// current variables. Connections whose condition fails to evaluate are
// skipped. When nothing matches, any default-typed connection is taken as a
// fallback regardless of its condition. A nil return means the walk ends
// gracefully.
func resolveNext(execCtx *models.ExecutionContext, connections []*models.Connection, connector string, logger *slog.Logger) *models.Connection {
	if len(connections) == 0 {
		return nil
	}

	ordered := make([]*models.Connection, len(connections))
	copy(ordered, connections)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	env := expression.ContextEnv(execCtx)

	for _, conn := range ordered {
		if conn.HandlesErrors() && connector != models.ConnectorError {
			continue
		}

		if !conn.Matches(connector) {
			continue
		}

		if conn.Condition != "" {
			pass, err := expression.EvaluateBool(conn.Condition, env)
			if err != nil {
				logger.Warn("Connection condition failed to evaluate, skipping",
					"source", conn.Source, "target", conn.Target, "error", err)

				continue
			}

			if !pass {
				continue
			}
		}

		return conn
	}

	// Last resort: an unguarded default edge, so a node producing an
	// unanticipated connector still has somewhere to go.
	for _, conn := range ordered {
		if conn.HandlesErrors() {
			continue
		}

		if conn.ConnectorType == "" || conn.ConnectorType == models.ConnectorDefault {
			return conn
		}
	}

	return nil
}

// resolveErrorHandler finds the highest-priority error-handling edge, or nil
// when the node has none.
func resolveErrorHandler(connections []*models.Connection) *models.Connection {
	var handler *models.Connection

	for _, conn := range connections {
		if !conn.HandlesErrors() {
			continue
		}

		if handler == nil || conn.Priority > handler.Priority {
			handler = conn
		}
	}

	return handler
}
