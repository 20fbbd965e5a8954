package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/verdeai/backend/internal/domain"
	"github.com/verdeai/backend/internal/platform/logger"
)

// EmissionsServiceConfig holds configuration for the emissions service
type EmissionsServiceConfig struct {
	CacheTTL      time.Duration
	LookbackYears int
	// Now is replaced in tests; defaults to time.Now.
	Now    func() time.Time
	Logger *zap.Logger
}

// EmissionsService returns the most recent national emission totals,
// walking back year by year until data is found.
type EmissionsService struct {
	cache         domain.CacheRepository
	client        domain.EmissionsClient
	cacheTTL      time.Duration
	lookbackYears int
	now           func() time.Time
	logger        *zap.Logger
	inflight      singleflight.Group
}

// NewEmissionsService creates a new emissions service with dependencies
func NewEmissionsService(cache domain.CacheRepository, client domain.EmissionsClient, config EmissionsServiceConfig) *EmissionsService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}
	lookback := config.LookbackYears
	if lookback <= 0 {
		lookback = 3
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &EmissionsService{
		cache:         cache,
		client:        client,
		cacheTTL:      cacheTTL,
		lookbackYears: lookback,
		now:           now,
		logger:        logger.OrNop(config.Logger).Named("emissions"),
	}
}

// LatestCountryTotals tries last year first, then the years before it.
// Flow: validate -> for each year: check cache -> call API -> cache -> return
func (s *EmissionsService) LatestCountryTotals(ctx context.Context, country string) (*domain.EmissionsTotals, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	if !isCountryCode(country) {
		return nil, fmt.Errorf("%w: country must be an ISO 3166-1 alpha-3 code", domain.ErrInvalidRequest)
	}

	currentYear := s.now().Year()
	var lastErr error
	for i := 1; i <= s.lookbackYears; i++ {
		year := currentYear - i
		totals, err := s.yearTotals(ctx, country, year)
		if err == nil {
			return totals, nil
		}
		if errors.Is(err, domain.ErrNoEmissionsData) {
			s.logger.Debug("no emissions data", zap.String("country", country), zap.Int("year", year))
			continue
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrEmissionsUnavailable, ctx.Err())
		}
		s.logger.Warn("emissions lookup failed", zap.String("country", country), zap.Int("year", year), zap.Error(err))
		lastErr = err
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, domain.ErrNoEmissionsData
}

func (s *EmissionsService) yearTotals(ctx context.Context, country string, year int) (*domain.EmissionsTotals, error) {
	key := fmt.Sprintf("%s%s:%d", emissionsKeyPrefix, country, year)

	if cached, err := getFromCache[domain.EmissionsTotals](ctx, s.cache, key); err == nil {
		return cached, nil
	}

	value, _, err := doShared(ctx, &s.inflight, key, func(ctx context.Context) (interface{}, error) {
		if cached, err := getFromCache[domain.EmissionsTotals](ctx, s.cache, key); err == nil {
			return cached, nil
		}

		totals, err :=s.client.CountryTotals(ctx, country, year)
		if err != nil {
			return nil, err
		}
		if err := setInCache(ctx, s.cache, key, totals, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache emissions", zap.Error(err))
		}
		return totals, nil
	})
	if err != nil {
		return nil, err
	}

	totals := *value.(*domain.EmissionsTotals)
	return &totals, nil
}

func isCountryCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
