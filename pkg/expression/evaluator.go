// Package expression provides a scoped expression evaluator for node
// conditions, decision logic and connection guards. Expressions support
// comparison, boolean and arithmetic operators over named variables plus a
// small set of helper functions. There is no access to host capabilities and
// no dynamic code execution.
package expression

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/vm"
)

// Evaluate compiles and runs an expression against the given environment.
// Unresolved identifiers evaluate to nil rather than failing, which keeps
// missing-field comparisons fail-closed instead of fatal.
func Evaluate(source string, env map[string]any) (any, error) {
	program, err := Compile(source)
	if err != nil {
		return nil, err
	}

	return Run(program, env)
}

// EvaluateBool evaluates an expression and coerces the result to a boolean.
// A malformed expression is a hard error, not a false result.
func EvaluateBool(source string, env map[string]any) (bool, error) {
	out, err := Evaluate(source, env)
	if err != nil {
		return false, err
	}

	return Truthy(out), nil
}

// Compile compiles an expression for repeated evaluation.
func Compile(source string) (*vm.Program, error) {
	program, err := expr.Compile(source,
		expr.AllowUndefinedVariables(),
		expr.Function("containsFold", containsFold, new(func(any, any) bool)),
		expr.Patch(containsPatcher{}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile expression %q: %w", source, err)
	}

	return program, nil
}

// containsPatcher rewrites every use of the contains operator into a call to
// containsFold. The stock operator is case-sensitive and fails on nil
// operands; decisioning conditions need a missing field to compare false
// rather than kill the run.
type containsPatcher struct{}

func (containsPatcher) Visit(node *ast.Node) {
	binary, ok := (*node).(*ast.BinaryNode)
	if !ok || binary.Operator != "contains" {
		return
	}

	ast.Patch(node, &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: "containsFold"},
		Arguments: []ast.Node{binary.Left, binary.Right},
	})
}

func containsFold(params ...any) (any, error) {
	if len(params) != 2 {
		return false, fmt.Errorf("contains expects 2 operands, got %d", len(params))
	}

	if params[0] == nil || params[1] == nil {
		return false, nil
	}

	return strings.Contains(
		strings.ToLower(fmt.Sprint(params[0])),
		strings.ToLower(fmt.Sprint(params[1])),
	), nil
}

// Run executes a compiled expression against an environment extended with the
// helper functions.
func Run(program *vm.Program, env map[string]any) (any, error) {
	out, err := vm.Run(program, withHelpers(env))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate expression: %w", err)
	}

	return out, nil
}

// Truthy converts an evaluation result to a boolean: nil, false, zero and the
// empty string are falsy, everything else is truthy.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

// withHelpers copies the environment and installs the fixed helper functions
// available to every expression.
func withHelpers(env map[string]any) map[string]any {
	out := make(map[string]any, len(env)+4)

	for k, v := range env {
		out[k] = v
	}

	out["isEmpty"] = func(v any) bool { return !Truthy(v) }
	out["isNotEmpty"] = func(v any) bool { return Truthy(v) }
	out["between"] = func(v, low, high float64) bool {
		return v >= low && v <= high
	}

	return out
}
