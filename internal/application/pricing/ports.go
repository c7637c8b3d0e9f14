package pricing

import (
	"context"

	"github.com/ravito-ci/ravito-api/internal/domain/repository"
)

// AnalyticsTxRunner exécute fn dans une transaction: le passage à is_current=false de
// l'ancien instantané et l'insertion du nouveau sont validés ensemble.
type AnalyticsTxRunner interface {
	RunAnalytics(ctx context.Context, fn func(analytics repository.PriceAnalyticsRepository) error) error
}
