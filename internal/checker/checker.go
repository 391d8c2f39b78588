package checker

import (
	"context"

	"github.com/lelutin/gonag/internal/nagios"
)

// Checker performs a single health check and classifies the result.
// Implementations produce exactly one outcome per invocation.
type Checker interface {
	Check(ctx context.Context) nagios.Outcome
}
