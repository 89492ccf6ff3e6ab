package expression

import (
	"github.com/decisionflow/decisionflow/pkg/models"
)

// ContextEnv builds the expression environment for one execution: the raw
// input fields overlaid with the accumulated variables. Variables win on key
// collision since later nodes refine the initial input.
func ContextEnv(execCtx *models.ExecutionContext) map[string]any {
	env := make(map[string]any, len(execCtx.InputData)+len(execCtx.Variables))

	for k, v := range execCtx.InputData {
		env[k] = v
	}

	for k, v := range execCtx.Variables {
		env[k] = v
	}

	return env
}
