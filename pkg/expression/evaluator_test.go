package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateBool_Comparisons(t *testing.T) {
	env := map[string]any{
		"creditScore": 720,
		"income":      85000.0,
		"state":       "CA",
	}

	tests := []struct {
		name     string
		source   string
		expected bool
	}{
		{"greater than true", "creditScore > 650", true},
		{"greater than false", "creditScore > 800", false},
		{"boolean and", "creditScore >= 700 && income > 50000", true},
		{"boolean or", "creditScore >= 800 || state == \"CA\"", true},
		{"equality", "state == \"NY\"", false},
		{"arithmetic", "income / 12 > 5000", true},
		{"literal true", "true", true},
		{"literal false", "false", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EvaluateBool(tt.source, env)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEvaluateBool_Helpers(t *testing.T) {
	env := map[string]any{
		"employer": "Acme Corporation",
		"notes":    "",
		"score":    650.0,
	}

	result, err := EvaluateBool(`employer contains "acme"`, env)
	require.NoError(t, err)
	assert.True(t, result)

	result, err = EvaluateBool(`employer contains "globex"`, env)
	require.NoError(t, err)
	assert.False(t, result)

	// Missing fields compare false instead of failing the evaluation.
	result, err = EvaluateBool(`formerEmployer contains "acme"`, env)
	require.NoError(t, err)
	assert.False(t, result)

	result, err = EvaluateBool("isEmpty(notes)", env)
	require.NoError(t, err)
	assert.True(t, result)

	result, err = EvaluateBool("isNotEmpty(employer)", env)
	require.NoError(t, err)
	assert.True(t, result)

	result, err = EvaluateBool("between(score, 600, 700)", env)
	require.NoError(t, err)
	assert.True(t, result)
}

func TestEvaluateBool_MalformedExpressionIsError(t *testing.T) {
	_, err := EvaluateBool("creditScore >>> 650", map[string]any{"creditScore": 700})
	require.Error(t, err)
}

func TestEvaluate_UndefinedVariable(t *testing.T) {
	// Undefined identifiers resolve to nil instead of failing compilation.
	out, err := Evaluate("missingField", map[string]any{})
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.False(t, Truthy(out))
}

func TestEvaluate_NoHostAccess(t *testing.T) {
	// The evaluator exposes only the provided variables and helpers; anything
	// that looks like host access is just an undefined identifier.
	out, err := Evaluate("os", map[string]any{})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(false))
	assert.False(t, Truthy(0))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy([]any{}))
	assert.True(t, Truthy(true))
	assert.True(t, Truthy(1))
	assert.True(t, Truthy("x"))
	assert.True(t, Truthy(map[string]any{"k": 1}))
}
