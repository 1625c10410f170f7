package voting

import (
	"context"
	"fmt"
	"log/slog"

	"realmgov/internal/governance/models"
	"realmgov/internal/governance/ports"
	"realmgov/pkg/domain"
	"realmgov/pkg/platform/circuit"
	"realmgov/pkg/platform/sentinel"
)

// Guarded wraps a remote oracle with a circuit breaker. While the breaker is
// open HoldStatus fails fast with sentinel.ErrUnavailable. It never answers
// from a fallback.
type Guarded struct {
	next    ports.VoteHoldOracle
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuarded(next ports.VoteHoldOracle, breaker *circuit.Breaker, logger *slog.Logger) *Guarded {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guarded{next: next, breaker: breaker, logger: logger}
}

func (g *Guarded) HoldStatus(ctx context.Context, record domain.Pubkey) (models.HoldStatus, error) {
	if !g.breaker.Allow() {
		return models.HoldStatus{}, fmt.Errorf("hold oracle %s: %w", g.breaker.Name(), sentinel.ErrUnavailable)
	}
	status, err := g.next.HoldStatus(ctx, record)
	if err != nil {
		if _, change := g.breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "hold oracle circuit opened",
				"breaker", g.breaker.Name(),
				"error", err,
			)
		}
		return models.HoldStatus{}, fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err)
	}
	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "hold oracle circuit closed", "breaker", g.breaker.Name())
	}
	return status, nil
}
