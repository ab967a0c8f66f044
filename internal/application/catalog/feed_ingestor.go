package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/marketplace/backend/internal/application/catalog")

// FeedIngestor loads a shop owner's remote catalog document into the catalog store.
// Writing is idempotent: ingesting the same document twice leaves one row per
// product, category and parameter.
type FeedIngestor struct {
	txScope        TransactionScope
	fetcher        FeedFetcher
	decoder        FeedDecoder
	locker         Locker
	archive        FeedArchive
	metrics        IngestMetrics
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewFeedIngestor creates a new FeedIngestor
func NewFeedIngestor(
	txScope TransactionScope,
	fetcher FeedFetcher,
	decoder FeedDecoder,
	locker Locker,
	logger *zap.Logger,
) *FeedIngestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedIngestor{
		txScope: txScope,
		fetcher: fetcher,
		decoder: decoder,
		locker:  locker,
		logger:  logger,
	}
}

// SetArchive enables raw feed archiving
func (s *FeedIngestor) SetArchive(archive FeedArchive) {
	s.archive = archive
}

// SetMetrics sets the ingestion metrics recorder
func (s *FeedIngestor) SetMetrics(metrics IngestMetrics) {
	s.metrics = metrics
}

// SetEventPublisher sets the event publisher for domain events
func (s *FeedIngestor) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// LockKey returns the lock key that serializes ingestion for one owner
func LockKey(ownerID int64) string {
	return fmt.Sprintf("ingest:owner:%d", ownerID)
}

// Ingest fetches feedURL and writes its goods to the owner's shop
func (s *FeedIngestor) Ingest(ctx context.Context, owner identity.Actor, feedURL string) (summary *IngestSummary, err error) {
	ctx, span := tracer.Start(ctx, "feed.ingest", trace.WithAttributes(
		attribute.Int64("owner_id", owner.UserID),
		attribute.String("feed_url", feedURL),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if summary != nil {
			span.SetAttributes(
				attribute.Int64("shop_id", summary.ShopID),
				attribute.String("shop_name", summary.ShopName),
				attribute.Int("products_created", summary.ProductsCreated),
				attribute.Int("products_updated", summary.ProductsUpdated),
			)
		}
		span.End()
		if s.metrics != nil {
			s.metrics.RecordIngest(ctx, summary, err)
		}
	}()

	if err := owner.RequireShop(); err != nil {
		return nil, err
	}
	feedURL = strings.TrimSpace(feedURL)
	if err := catalog.ValidateFeedURL(feedURL); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Acquire(ctx, LockKey(owner.UserID))
	if err != nil {
		return nil, fmt.Errorf("acquire ingestion lock: %w", err)
	}
	defer unlock()

	body, err := s.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	feed, err := s.decoder.Decode(body)
	if err != nil {
		return nil, err
	}
	if err := feed.Validate(); err != nil {
		return nil, err
	}

	var shop *catalog.Shop
	summary = &IngestSummary{}
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var txErr error
		shop, txErr = s.writeFeed(ctx, repos, owner.UserID, feedURL, feed, summary)
		return txErr
	})
	if err != nil {
		s.logger.Warn("feed ingestion rolled back",
			zap.Int64("owner_id", owner.UserID),
			zap.String("url", feedURL),
			zap.Error(err),
		)
		return nil, err
	}

	if s.archive != nil {
		key, archErr := s.archive.Archive(ctx, owner.UserID, body)
		if archErr != nil {
			s.logger.Warn("failed to archive feed",
				zap.Int64("owner_id", owner.UserID),
				zap.Error(archErr),
			)
		} else {
			summary.ArchiveKey = key
		}
	}

	s.logger.Info("feed ingested",
		zap.Int64("shop_id", summary.ShopID),
		zap.String("shop", summary.ShopName),
		zap.Int("products_created", summary.ProductsCreated),
		zap.Int("products_updated", summary.ProductsUpdated),
		zap.Int("parameters", summary.Parameters),
	)

	if s.eventPublisher != nil {
		evt := catalog.NewCatalogIngestedEvent(shop, feedURL, summary.ProductsCreated, summary.ProductsUpdated, summary.Parameters)
		if pubErr := s.eventPublisher.Publish(ctx, evt); pubErr != nil {
			s.logger.Warn("failed to publish catalog event", zap.Error(pubErr))
		}
	}

	return summary, nil
}

func (s *FeedIngestor) writeFeed(
	ctx context.Context,
	repos TransactionalRepositories,
	ownerID int64,
	feedURL string,
	feed *catalog.Feed,
	summary *IngestSummary,
) (*catalog.Shop, error) {
	candidate, err := catalog.NewShop(ownerID, feed.ShopName)
	if err != nil {
		return nil, err
	}
	shop, created, err := repos.ShopRepo().GetOrCreate(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if !shop.IsOwnedBy(ownerID) {
		return nil, shared.ErrForbidden
	}
	if shop.Name != candidate.Name {
		return nil, shared.NewConflictError(catalog.CodeShopNameTaken,
			fmt.Sprintf("Your shop is registered as %q, the feed describes %q", shop.Name, candidate.Name))
	}
	shop.SetFeedURL(feedURL)
	if err := repos.ShopRepo().Update(ctx, shop); err != nil {
		return nil, err
	}

	summary.ShopID = shop.ID
	summary.ShopName = shop.Name
	summary.ShopCreated = created

	categoryIDs := make(map[string]int64)
	parameterIDs := make(map[string]int64)

	for i, good := range feed.Goods {
		categoryName := catalog.NormalizeName(good.Category)
		categoryID, ok := categoryIDs[categoryName]
		if !ok {
			category, err := repos.CategoryRepo().GetOrCreateByName(ctx, categoryName)
			if err != nil {
				return nil, fmt.Errorf("goods[%d]: %w", i, err)
			}
			categoryID = category.ID
			categoryIDs[categoryName] = categoryID
		}

		product, err := catalog.NewProductFromGood(shop.ID, categoryID, good)
		if err != nil {
			return nil, err
		}
		isNew, err := repos.ProductRepo().Upsert(ctx, product)
		if err != nil {
			return nil, fmt.Errorf("goods[%d]: %w", i, err)
		}
		if isNew {
			summary.ProductsCreated++
		} else {
			summary.ProductsUpdated++
		}

		for _, rawName := range good.SortedParameterNames() {
			name := catalog.NormalizeName(rawName)
			parameterID, ok := parameterIDs[name]
			if !ok {
				parameter, err := repos.ParameterRepo().GetOrCreateByName(ctx, name)
				if err != nil {
					return nil, fmt.Errorf("goods[%d]: %w", i, err)
				}
				parameterID = parameter.ID
				parameterIDs[name] = parameterID
			}
			if err := repos.ProductRepo().UpsertParameter(ctx, product.ID, parameterID, good.Parameters[rawName]); err != nil {
				return nil, fmt.Errorf("goods[%d]: %w", i, err)
			}
			summary.Parameters++
		}
	}
	summary.Categories = len(categoryIDs)

	return shop, nil
}

// IsFeedError reports whether err was caused by the remote document rather than by storage
func IsFeedError(err error) bool {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return false
	}
	switch de.Code {
	case catalog.CodeFetchError, catalog.CodeParseError, catalog.CodeMissingShopName,
		catalog.CodeMissingGoods, catalog.CodeInvalidGood, catalog.CodeInvalidURL:
		return true
	}
	return false
}
