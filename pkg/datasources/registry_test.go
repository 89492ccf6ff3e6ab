package datasources

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultRegistryConnectors(t *testing.T) {
	t.Parallel()

	registry := NewDefaultRegistry(testLogger())

	for _, id := range []string{"credit-bureau", "bank-statements", "employment-verification"} {
		source, ok := registry.Source(id)
		require.True(t, ok, id)
		assert.Equal(t, id, source.ID())
	}

	_, ok := registry.Source("no-such")
	assert.False(t, ok)
	assert.Len(t, registry.IDs(), 3)
}

func TestCreditBureauDeterministicPerApplicant(t *testing.T) {
	t.Parallel()

	bureau := NewCreditBureau(testLogger())

	request := map[string]any{"applicantId": "app-123"}

	first, err := bureau.Fetch(context.Background(), request)
	require.NoError(t, err)

	second, err := bureau.Fetch(context.Background(), request)
	require.NoError(t, err)

	assert.Equal(t, first["score"], second["score"])
	assert.Equal(t, first["delinquencies_24mo"], second["delinquencies_24mo"])

	other, err := bureau.Fetch(context.Background(), map[string]any{"applicantId": "app-456"})
	require.NoError(t, err)

	score, ok := other["score"].(int)
	require.True(t, ok)
	assert.GreaterOrEqual(t, score, 500)
	assert.Less(t, score, 850)
}

func TestBankStatementsShape(t *testing.T) {
	t.Parallel()

	bank := NewBankStatements(testLogger())

	response, err := bank.Fetch(context.Background(), map[string]any{"applicantId": "app-123"})
	require.NoError(t, err)

	inflow, ok := response["monthly_inflow"].(float64)
	require.True(t, ok)

	outflow, ok := response["monthly_outflow"].(float64)
	require.True(t, ok)

	assert.Greater(t, inflow, 0.0)
	assert.Less(t, outflow, inflow)
}

func TestEmploymentVerificationIncomeOnlyWhenVerified(t *testing.T) {
	t.Parallel()

	employment := NewEmploymentVerification(testLogger())

	response, err := employment.Fetch(context.Background(), map[string]any{"applicantId": "app-123"})
	require.NoError(t, err)

	verified, ok := response["employment_verified"].(bool)
	require.True(t, ok)

	_, hasIncome := response["annual_income"]
	assert.Equal(t, verified, hasIncome)
}
