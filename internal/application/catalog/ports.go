package catalog

import (
	"context"

	"github.com/marketplace/backend/internal/domain/catalog"
)

// FeedFetcher downloads a raw catalog document
type FeedFetcher interface {
	// Fetch returns the body of feedURL. Transport failures, timeouts and
	// non-2xx answers are reported as catalog FETCH_ERROR domain errors.
	Fetch(ctx context.Context, feedURL string) ([]byte, error)
}

// FeedDecoder turns a raw document into a feed
type FeedDecoder interface {
	// Decode parses data. Malformed documents yield PARSE_ERROR.
	Decode(data []byte) (*catalog.Feed, error)
}

// Unlock releases a lock obtained from a Locker
type Unlock func()

// Locker serializes work per key across the process or the cluster
type Locker interface {
	// Acquire blocks until the lock for key is held or ctx is done
	Acquire(ctx context.Context, key string) (Unlock, error)
}

// FeedArchive stores raw feed documents after a successful ingestion
type FeedArchive interface {
	// Archive stores body for ownerID and returns the storage key
	Archive(ctx context.Context, ownerID int64, body []byte) (string, error)
}

// IngestMetrics receives ingestion outcomes
type IngestMetrics interface {
	RecordIngest(ctx context.Context, summary *IngestSummary, err error)
}
