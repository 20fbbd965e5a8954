package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrModelUnavailable is returned when the generative model cannot be reached
	ErrModelUnavailable = errors.New("generative model unavailable")

	// ErrMalformedOutput is returned when the model answer does not match the declared schema
	ErrMalformedOutput = errors.New("malformed model output")

	// ErrInvalidPhoto is returned when a photo is not a base64 data URI
	ErrInvalidPhoto = errors.New("invalid photo data URI")

	// ErrPhotoTooLarge is returned when a decoded photo exceeds MaxPhotoBytes
	ErrPhotoTooLarge = errors.New("photo exceeds maximum size")

	// ErrUnsupportedMediaType is returned for photos outside the allowed raster formats
	ErrUnsupportedMediaType = errors.New("unsupported photo media type")

	// ErrEmissionsUnavailable is returned when the emissions API request fails
	ErrEmissionsUnavailable = errors.New("emissions API request failed")

	// ErrNoEmissionsData is returned when no year in the lookback window has data
	ErrNoEmissionsData = errors.New("no emissions data found")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)
