package datasources

import (
	"context"
	"log/slog"
)

// EmploymentVerification simulates an employment verification service.
type EmploymentVerification struct {
	logger *slog.Logger
}

// NewEmploymentVerification creates the simulated employment connector.
func NewEmploymentVerification(logger *slog.Logger) *EmploymentVerification {
	return &EmploymentVerification{logger: logger.With("module", "datasource", "source", "employment-verification")}
}

// ID returns the connector id.
func (s *EmploymentVerification) ID() string { return "employment-verification" }

// Fetch returns a simulated employment record derived from the applicant
// identifier.
func (s *EmploymentVerification) Fetch(_ context.Context, request map[string]any) (map[string]any, error) {
	rng := seededRand(request, "applicantId", "employerName")

	verified := rng.Intn(10) > 0

	response := map[string]any{
		"employment_verified": verified,
		"employment_type":     []string{"full_time", "part_time", "self_employed"}[rng.Intn(3)],
		"tenure_months":       rng.Intn(180),
	}

	if verified {
		response["annual_income"] = float64(28000 + rng.Intn(160000))
	}

	return response, nil
}
