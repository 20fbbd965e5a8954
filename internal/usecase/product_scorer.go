package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/verdeai/backend/internal/domain"
	"github.com/verdeai/backend/internal/platform/logger"
)

// MinProductNameLength is the shortest normalized name worth sending to the model.
const MinProductNameLength = 3

const (
	noteNameTooShort  = "Product name too short for analysis."
	noteModelFailed   = "The AI could not process this product right now."
	noteScoringFailed = "An error occurred while analyzing the product."
)

// ProductScorerConfig holds configuration for the product scorer
type ProductScorerConfig struct {
	// CacheTTL of zero keeps scores for the cache's lifetime.
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// ProductScorer estimates the environmental impact of a product by name.
type ProductScorer struct {
	cache    domain.CacheRepository
	model    domain.ImpactModel
	cacheTTL time.Duration
	logger   *zap.Logger
	inflight singleflight.Group
}

// NewProductScorer creates a new product scorer with dependencies
func NewProductScorer(cache domain.CacheRepository, model domain.ImpactModel, config ProductScorerConfig) *ProductScorer {
	return &ProductScorer{
		cache:    cache,
		model:    model,
		cacheTTL: config.CacheTTL,
		logger:   logger.OrNop(config.Logger).Named("product_scorer"),
	}
}

// Score never fails: short names, unidentifiable products and model errors
// all produce a deterministic result with Identified=false.
// Flow: validate -> check cache -> call model -> cache identified -> return
func (s *ProductScorer) Score(ctx context.Context, productName string) *domain.ScoreResult {
	normalized := normalizeProductName(productName)
	if utf8.RuneCountInString(normalized) < MinProductNameLength {
		return unscoredResult(productName, domain.CategoryUnknown, noteNameTooShort)
	}

	key := scoreKeyPrefix + normalized

	if cached, err := getFromCache[domain.ScoreResult](ctx, s.cache, key); err == nil {
		s.logger.Debug("cache hit", zap.String("product", normalized))
		return cached
	}

	value, _, err := doShared(ctx, &s.inflight, key, func(ctx context.Context) (interface{}, error) {
		if cached, err := getFromCache[domain.ScoreResult](ctx, s.cache, key); err == nil {
			return cached, nil
		}

		s.logger.Debug("cache miss, calling model", zap.String("product", normalized))
		result, err := s.model.ScoreProduct(ctx, productName)
		if err != nil {
			return nil, err
		}

		s.applyPostConditions(result, productName)

		if result.Identified {
			if err := setInCache(ctx, s.cache, key, result, s.cacheTTL); err != nil {
				s.logger.Warn("failed to cache score", zap.Error(err))
			}
		}
		return result, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrMalformedOutput) {
			s.logger.Warn("model returned unusable score", zap.String("product", normalized), zap.Error(err))
			return unscoredResult(productName, domain.CategoryUnknown, noteModelFailed)
		}
		s.logger.Error("product scoring failed", zap.String("product", normalized), zap.Error(err))
		return unscoredResult(productName, domain.CategoryError, noteScoringFailed)
	}

	result := *value.(*domain.ScoreResult)
	return &result
}

func (s *ProductScorer) applyPostConditions(result *domain.ScoreResult, productName string) {
	if result.NormalizedName == "" {
		result.NormalizedName = strings.TrimSpace(productName)
	}
	if result.Category == "" {
		result.Category = domain.CategoryUnknown
	}
	if !result.Identified {
		result.CarbonScore = 0
		result.WaterScore = 0
		result.SustainabilityScore = 0
	}
	if result.Notes == nil {
		result.Notes = []string{}
	}
}

func unscoredResult(productName, category, note string) *domain.ScoreResult {
	return &domain.ScoreResult{
		NormalizedName: productName,
		Category:       category,
		Notes:          []string{note},
		Identified:     false,
	}
}
