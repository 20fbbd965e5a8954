package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque encoded bytes; a ttl of zero keeps the entry until
// it is evicted or deleted.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// ImpactModel is the generative model behind the three structured prompts.
// Implementations return ErrModelUnavailable or ErrMalformedOutput (wrapped)
// when no usable answer could be obtained.
type ImpactModel interface {
	IdentifyProduct(ctx context.Context, photo *Photo) (*IdentificationResult, error)
	ScoreProduct(ctx context.Context, productName string) (*ScoreResult, error)
	SuggestEcoActions(ctx context.Context, req EcoActionRequest) ([]string, error)
}

// EmissionsClient fetches country-level emission totals.
type EmissionsClient interface {
	CountryTotals(ctx context.Context, country string, year int) (*EmissionsTotals, error)
}
