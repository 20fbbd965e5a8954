package http

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/verdeai/backend/internal/domain"
)

// photoURITag validates that a string looks like a base64 image data URI
// of an accepted type. Decoding and content sniffing happen in the handler.
const photoURITag = "photouri"

// RegisterValidators adds the custom binding rules to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation(photoURITag, validatePhotoURI)
}

func validatePhotoURI(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	rest, ok := strings.CutPrefix(value, "data:")
	if !ok {
		return false
	}
	header, _, ok := strings.Cut(rest, ",")
	if !ok {
		return false
	}
	mediaType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return false
	}
	if idx := strings.Index(mediaType, ";"); idx >= 0 {
		mediaType = mediaType[:idx]
	}
	return domain.IsAllowedPhotoType(mediaType)
}

// validationMessage turns binding errors into a short client-facing message.
func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "invalid request body"
	}

	fe := verrs[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case photoURITag:
		return field + " must be a base64 data URI of a PNG, JPEG, WebP or GIF image"
	case "max":
		return field + " is too long"
	default:
		return field + " is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
