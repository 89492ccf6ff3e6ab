// Package rules implements the business-rule subsystem: typed condition
// evaluation against application and external data, rule execution and
// decision aggregation.
package rules

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"

	"github.com/decisionflow/decisionflow/pkg/models"
)

// Context is the data a condition is evaluated against. Fields are dot-path
// addressable: resolution walks ApplicationData first and falls back to
// ExternalData on a top-level miss.
type Context struct {
	ApplicationData map[string]any `json:"application_data"`
	ExternalData    map[string]any `json:"external_data"`
}

// Evaluator evaluates single typed conditions. Every operator is a total
// function over possibly-missing operands: evaluation returns a boolean and
// never fails.
type Evaluator struct {
	logger *slog.Logger
}

// NewEvaluator creates a condition evaluator.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	return &Evaluator{logger: logger}
}

// Evaluate resolves the condition's field and applies its operator, returning
// a trace entry for the audit trail.
func (e *Evaluator) Evaluate(cond models.RuleCondition, ctx Context) models.ConditionTrace {
	actual, found := resolveField(cond.Field, ctx)

	matched := e.apply(cond.Operator, actual, found, cond.Value)

	return models.ConditionTrace{
		Field:    cond.Field,
		Operator: cond.Operator,
		Expected: cond.Value,
		Actual:   actual,
		Matched:  matched,
	}
}

func (e *Evaluator) apply(op models.Operator, actual any, found bool, expected any) bool {
	switch op {
	case models.OperatorEquals:
		return found && valuesEqual(actual, expected)
	case models.OperatorNotEquals:
		return !found || !valuesEqual(actual, expected)
	case models.OperatorGreaterThan:
		return compareNumbers(actual, expected, func(a, b float64) bool { return a > b })
	case models.OperatorGreaterThanOrEqual:
		return compareNumbers(actual, expected, func(a, b float64) bool { return a >= b })
	case models.OperatorLessThan:
		return compareNumbers(actual, expected, func(a, b float64) bool { return a < b })
	case models.OperatorLessThanOrEqual:
		return compareNumbers(actual, expected, func(a, b float64) bool { return a <= b })
	case models.OperatorContains:
		return found && containsFold(actual, expected)
	case models.OperatorNotContains:
		return !found || !containsFold(actual, expected)
	case models.OperatorStartsWith:
		return found && strings.HasPrefix(foldString(actual), foldString(expected))
	case models.OperatorEndsWith:
		return found && strings.HasSuffix(foldString(actual), foldString(expected))
	case models.OperatorIn:
		return found && inList(actual, expected)
	case models.OperatorNotIn:
		return !found || !inList(actual, expected)
	case models.OperatorBetween:
		return betweenRange(actual, expected)
	case models.OperatorIsNull:
		return !found || actual == nil
	case models.OperatorIsNotNull:
		return found && actual != nil
	default:
		// Unknown operators never match. This is the permissive fail-safe
		// default for a financial context: ambiguity must not approve.
		if e.logger != nil {
			e.logger.Warn("Unknown condition operator treated as not matched", "operator", string(op))
		}

		return false
	}
}

// resolveField splits the field on "." and walks nested maps, first in
// application data, then in external data when the top-level key is absent.
// Unresolved paths report found=false rather than failing.
func resolveField(field string, ctx Context) (any, bool) {
	parts := strings.Split(field, ".")

	if value, ok := walkPath(ctx.ApplicationData, parts); ok {
		return value, true
	}

	return walkPath(ctx.ExternalData, parts)
}

func walkPath(data map[string]any, parts []string) (any, bool) {
	var current any = data

	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// toNumber coerces a value to float64. Missing and non-numeric values report
// ok=false, which makes every numeric comparison against them evaluate false.
func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(v, 64)
		return n, err == nil
	case bool:
		if v {
			return 1, true
		}

		return 0, true
	default:
		return 0, false
	}
}

// compareNumbers applies cmp to numerically coerced operands. A missing or
// non-numeric operand on either side evaluates false: this is intentional
// fail-closed behavior, not an error.
func compareNumbers(actual, expected any, cmp func(a, b float64) bool) bool {
	a, okA := toNumber(actual)

	b, okB := toNumber(expected)
	if !okA || !okB {
		return false
	}

	return cmp(a, b)
}

// valuesEqual implements strict value equality with numeric normalization, so
// an int 700 from Go code equals a float64 700 decoded from JSON. Values of
// different kinds (string vs number, bool vs number) are never equal.
func valuesEqual(actual, expected any) bool {
	if a, ok := actual.(bool); ok {
		b, okB := expected.(bool)

		return okB && a == b
	}

	if _, ok := expected.(bool); ok {
		return false
	}

	aStr, aIsStr := actual.(string)

	eStr, eIsStr := expected.(string)
	if aIsStr || eIsStr {
		return aIsStr && eIsStr && aStr == eStr
	}

	if a, okA := toNumber(actual); okA {
		if b, okB := toNumber(expected); okB {
			return a == b
		}
	}

	return reflect.DeepEqual(actual, expected)
}

func foldString(value any) string {
	return strings.ToLower(fmt.Sprint(value))
}

func containsFold(actual, expected any) bool {
	return strings.Contains(foldString(actual), foldString(expected))
}

// inList tests membership of actual in the expected list. A non-list expected
// value never matches.
func inList(actual, expected any) bool {
	items, ok := toSlice(expected)
	if !ok {
		return false
	}

	for _, item := range items {
		if valuesEqual(actual, item) {
			return true
		}
	}

	return false
}

// betweenRange tests numeric inclusive range membership. The expected value
// must be a 2-element [min, max] list.
func betweenRange(actual, expected any) bool {
	bounds, ok := toSlice(expected)
	if !ok || len(bounds) != 2 {
		return false
	}

	value, okV := toNumber(actual)

	low, okL := toNumber(bounds[0])

	high, okH := toNumber(bounds[1])
	if !okV || !okL || !okH {
		return false
	}

	return value >= low && value <= high
}

func toSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}

		return out, true
	case []float64:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}

		return out, true
	case []int:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}

		return out, true
	default:
		return nil, false
	}
}
