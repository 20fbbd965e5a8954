package domain

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxPhotoBytes is the largest decoded photo accepted for identification.
const MaxPhotoBytes = 5 << 20

// allowedPhotoTypes are the raster formats the upload form accepts.
var allowedPhotoTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
}

// Photo is a decoded "data:<mime>;base64,<payload>" image.
type Photo struct {
	MIMEType string
	Data     []byte
	// Raw is the original data URI, kept so the identifier can derive a stable cache key.
	Raw string
}

// IsAllowedPhotoType reports whether mimeType is one of the accepted raster formats.
func IsAllowedPhotoType(mimeType string) bool {
	return allowedPhotoTypes[strings.ToLower(strings.TrimSpace(mimeType))]
}

// ParsePhotoDataURI decodes and validates a base64 data URI.
// The declared media type must be allowed and must agree with the sniffed content.
func ParsePhotoDataURI(raw string) (*Photo, error) {
	raw = strings.TrimSpace(raw)

	rest, ok := strings.CutPrefix(raw, "data:")
	if !ok {
		return nil, fmt.Errorf("%w: missing data: scheme", ErrInvalidPhoto)
	}

	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing payload separator", ErrInvalidPhoto)
	}

	mediaType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return nil, fmt.Errorf("%w: payload must be base64 encoded", ErrInvalidPhoto)
	}
	if idx := strings.Index(mediaType, ";"); idx >= 0 {
		mediaType = mediaType[:idx]
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	if !IsAllowedPhotoType(mediaType) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mediaType)
	}

	// Reject oversized payloads before allocating the decode buffer.
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxPhotoBytes+3 {
		return nil, ErrPhotoTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPhoto, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidPhoto)
	}
	if len(data) > MaxPhotoBytes {
		return nil, ErrPhotoTooLarge
	}

	if !sniffedAs(data, mediaType) {
		return nil, fmt.Errorf("%w: content does not match declared type %q", ErrUnsupportedMediaType, mediaType)
	}

	return &Photo{
		MIMEType: mediaType,
		Data:     data,
		Raw:      raw,
	}, nil
}

// sniffedAs walks the detected MIME hierarchy so that e.g. APNG still counts as image/png.
func sniffedAs(data []byte, mediaType string) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is(mediaType) {
			return true
		}
	}
	return false
}
