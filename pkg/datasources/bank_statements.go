package datasources

import (
	"context"
	"log/slog"
)

// BankStatements simulates a bank statement aggregation pull.
type BankStatements struct {
	logger *slog.Logger
}

// NewBankStatements creates the simulated bank statement connector.
func NewBankStatements(logger *slog.Logger) *BankStatements {
	return &BankStatements{logger: logger.With("module", "datasource", "source", "bank-statements")}
}

// ID returns the connector id.
func (s *BankStatements) ID() string { return "bank-statements" }

// Fetch returns simulated cash-flow figures derived from the applicant
// identifier.
func (s *BankStatements) Fetch(_ context.Context, request map[string]any) (map[string]any, error) {
	rng := seededRand(request, "applicantId", "accountNumber")

	monthlyInflow := float64(2000 + rng.Intn(12000))
	monthlyOutflow := monthlyInflow * (0.5 + float64(rng.Intn(45))/100)

	return map[string]any{
		"monthly_inflow":  monthlyInflow,
		"monthly_outflow": monthlyOutflow,
		"average_balance": float64(rng.Intn(40000)),
		"nsf_count_6mo":   rng.Intn(3),
		"months_of_data":  3 + rng.Intn(10),
		"primary_account": true,
	}, nil
}
