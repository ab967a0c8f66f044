package scheduler

import (
	"context"
	"errors"

	"go.uber.org/zap"

	appcatalog "github.com/marketplace/backend/internal/application/catalog"
	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/shared"
)

// FeedIngester re-reads a shop's feed on behalf of its owner
type FeedIngester interface {
	Ingest(ctx context.Context, owner identity.Actor, feedURL string) (*appcatalog.IngestSummary, error)
}

// FeedRefreshExecutor runs refresh jobs through the feed ingestor
type FeedRefreshExecutor struct {
	ingester FeedIngester
	logger   *zap.Logger
}

// NewFeedRefreshExecutor creates a new executor
func NewFeedRefreshExecutor(ingester FeedIngester, logger *zap.Logger) *FeedRefreshExecutor {
	return &FeedRefreshExecutor{ingester: ingester, logger: logger}
}

// Execute ingests the job's feed as the shop owner. Errors caused by the
// feed document itself are permanent; fetch and storage failures are retried.
func (e *FeedRefreshExecutor) Execute(ctx context.Context, job *Job) error {
	owner := identity.Actor{UserID: job.OwnerID, Type: identity.UserTypeShop}
	summary, err := e.ingester.Ingest(ctx, owner, job.URL)
	if err != nil {
		if !retryable(err) {
			return Permanent(err)
		}
		return err
	}

	e.logger.Info("Feed refreshed",
		zap.Int64("shop_id", summary.ShopID),
		zap.String("shop", summary.ShopName),
		zap.Int("products_created", summary.ProductsCreated),
		zap.Int("products_updated", summary.ProductsUpdated),
	)
	return nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var de *shared.DomainError
	if errors.As(err, &de) && de.Code == catalog.CodeShopNameTaken {
		return false
	}
	switch shared.KindOf(err) {
	case shared.KindUpstreamFetch, shared.KindInternal, shared.KindConflict:
		return true
	}
	return false
}
