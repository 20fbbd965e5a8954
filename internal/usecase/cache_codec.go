package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/verdeai/backend/internal/domain"
)

// Cache key prefixes, one namespace per handler.
const (
	scoreKeyPrefix     = "score:"
	photoKeyPrefix     = "photo:"
	emissionsKeyPrefix = "emissions:"
)

// normalizeProductName is the scorer's cache identity: lower-cased with
// surrounding whitespace trimmed and inner runs collapsed to one space.
func normalizeProductName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// photoCacheKey hashes the raw data URI so that multi-megabyte payloads do not
// become cache keys. Identical URIs still map to the same entry.
func photoCacheKey(rawDataURI string) string {
	sum := sha256.Sum256([]byte(rawDataURI))
	return photoKeyPrefix + hex.EncodeToString(sum[:])
}

// getFromCache decodes a cached JSON value into a fresh T.
func getFromCache[T any](ctx context.Context, cache domain.CacheRepository, key string) (*T, error) {
	raw, err := cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		// a corrupt entry is treated as absent
		return nil, domain.ErrCacheMiss
	}
	return &value, nil
}

// setInCache stores value as JSON.
func setInCache(ctx context.Context, cache domain.CacheRepository, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return cache.Set(ctx, key, raw, ttl)
}
