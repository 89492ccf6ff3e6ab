package datasources

import (
	"context"
	"hash/fnv"
	"log/slog"
	"math/rand"
	"time"
)

// CreditBureau simulates a credit bureau pull. Responses are deterministic
// per applicant so repeated pulls inside one application agree with each
// other.
type CreditBureau struct {
	logger *slog.Logger
}

// NewCreditBureau creates the simulated credit bureau connector.
func NewCreditBureau(logger *slog.Logger) *CreditBureau {
	return &CreditBureau{logger: logger.With("module", "datasource", "source", "credit-bureau")}
}

// ID returns the connector id.
func (s *CreditBureau) ID() string { return "credit-bureau" }

// Fetch returns a simulated credit report keyed by the applicant identifier
// in the request.
func (s *CreditBureau) Fetch(_ context.Context, request map[string]any) (map[string]any, error) {
	rng := seededRand(request, "applicantId", "ssn")

	score := 500 + rng.Intn(350)
	delinquencies := rng.Intn(4)

	s.logger.Debug("Simulated credit pull", "score", score)

	return map[string]any{
		"score":              score,
		"delinquencies_24mo": delinquencies,
		"inquiries_12mo":     rng.Intn(8),
		"utilization":        float64(rng.Intn(95)) / 100,
		"open_tradelines":    2 + rng.Intn(12),
		"bankruptcies":       boolToInt(score < 540 && delinquencies > 2),
		"report_date":        time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// seededRand derives a per-applicant random source from the first present
// identifier field, falling back to the shared source when none is present.
func seededRand(request map[string]any, keys ...string) *rand.Rand {
	for _, key := range keys {
		if v, ok := request[key].(string); ok && v != "" {
			h := fnv.New64a()
			_, _ = h.Write([]byte(v))

			return rand.New(rand.NewSource(int64(h.Sum64())))
		}
	}

	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
