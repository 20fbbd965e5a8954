package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/verdeai/backend/internal/domain"
	"github.com/verdeai/backend/internal/platform/logger"
)

// PhotoIdentifierConfig holds configuration for the photo identifier
type PhotoIdentifierConfig struct {
	// CacheTTL of zero keeps identifications for the cache's lifetime.
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// PhotoIdentifier turns a photo into a candidate product name, caching
// positive identifications by photo content.
type PhotoIdentifier struct {
	cache    domain.CacheRepository
	model    domain.ImpactModel
	cacheTTL time.Duration
	logger   *zap.Logger
	inflight singleflight.Group
}

// NewPhotoIdentifier creates a new photo identifier with dependencies
func NewPhotoIdentifier(cache domain.CacheRepository, model domain.ImpactModel, config PhotoIdentifierConfig) *PhotoIdentifier {
	return &PhotoIdentifier{
		cache:    cache,
		model:    model,
		cacheTTL: config.CacheTTL,
		logger:   logger.OrNop(config.Logger).Named("photo_identifier"),
	}
}

// Identify always returns a result. When the model could not be consulted
// the result is the not-identified default and err says why, so callers can
// tell a failed call from a photo without a product.
func (s *PhotoIdentifier) Identify(ctx context.Context, photo *domain.Photo) (*domain.IdentificationResult, error) {
	if photo == nil || photo.Raw == "" {
		return notIdentified(), domain.ErrInvalidRequest
	}

	key := photoCacheKey(photo.Raw)

	if cached, err := getFromCache[domain.IdentificationResult](ctx, s.cache, key); err == nil {
		s.logger.Debug("cache hit", zap.String("key", key))
		return cached, nil
	}

	value, shared, err := doShared(ctx, &s.inflight, key, func(ctx context.Context) (interface{}, error) {
		// another caller may have filled the cache while we waited
		if cached, err := getFromCache[domain.IdentificationResult](ctx, s.cache, key); err == nil {
			return cached, nil
		}

		s.logger.Debug("cache miss, calling model", zap.String("key", key))
		result, err := s.model.IdentifyProduct(ctx, photo)
		if err != nil {
			return nil, err
		}

		if !result.Identified || result.ProductName == "" {
			result = notIdentified()
		}

		if result.Identified {
			if err := setInCache(ctx, s.cache, key, result, s.cacheTTL); err != nil {
				s.logger.Warn("failed to cache identification", zap.Error(err))
			}
		}
		return result, nil
	})
	if err != nil {
		s.logger.Warn("photo identification failed", zap.Error(err))
		return notIdentified(), err
	}

	if shared {
		s.logger.Debug("shared in-flight identification", zap.String("key", key))
	}

	result := *value.(*domain.IdentificationResult)
	return &result, nil
}

func notIdentified() *domain.IdentificationResult {
	return &domain.IdentificationResult{ProductName: "", Identified: false}
}
