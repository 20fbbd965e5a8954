package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/verdeai/backend/internal/domain"
	"github.com/verdeai/backend/internal/platform/logger"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// PhotoIdentifier identifies a product in a photo.
type PhotoIdentifier interface {
	Identify(ctx context.Context, photo *domain.Photo) (*domain.IdentificationResult, error)
}

// ProductScorer scores a product by name.
type ProductScorer interface {
	Score(ctx context.Context, productName string) *domain.ScoreResult
}

// ProductAnalyzer runs the full analysis.
type ProductAnalyzer interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) *domain.AnalysisResult
}

// EmissionsProvider returns the latest emission totals for a country.
type EmissionsProvider interface {
	LatestCountryTotals(ctx context.Context, country string) (*domain.EmissionsTotals, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	identifier     PhotoIdentifier
	scorer         ProductScorer
	analyzer       ProductAnalyzer
	emissions      EmissionsProvider
	defaultCountry string
	logger         *zap.Logger
}

// HandlerConfig holds the handler's non-service settings.
type HandlerConfig struct {
	DefaultCountry string
	Logger         *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	identifier PhotoIdentifier,
	scorer ProductScorer,
	analyzer ProductAnalyzer,
	emissions EmissionsProvider,
	config HandlerConfig,
) *Handler {
	country := config.DefaultCountry
	if country == "" {
		country = "BRA"
	}
	return &Handler{
		identifier:     identifier,
		scorer:         scorer,
		analyzer:       analyzer,
		emissions:      emissions,
		defaultCountry: country,
		logger:         logger.OrNop(config.Logger).Named("http"),
	}
}

type identifyRequest struct {
	PhotoDataURI string `json:"photoDataUri" binding:"required,photouri"`
}

type scoreRequest struct {
	ProductName string `json:"productName" binding:"required,max=200"`
}

type analyzeRequest struct {
	ProductName  string `json:"productName" binding:"max=200"`
	PhotoDataURI string `json:"photoDataUri" binding:"omitempty,photouri"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "verdeai-backend",
		"version": Version,
	})
}

// IdentifyProduct handles photo identification requests.
// Model failures are not surfaced: the caller gets the not-identified result.
func (h *Handler) IdentifyProduct(c *gin.Context) {
	var req identifyRequest
	if !h.bind(c, &req) {
		return
	}

	photo, err := domain.ParsePhotoDataURI(req.PhotoDataURI)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	result, err := h.identifier.Identify(c.Request.Context(), photo)
	if err != nil {
		h.logger.Warn("identify failed open", zap.String("request_id", requestID(c)), zap.Error(err))
	}
	c.JSON(http.StatusOK, result)
}

// ScoreProduct handles scoring-by-name requests
func (h *Handler) ScoreProduct(c *gin.Context) {
	var req scoreRequest
	if !h.bind(c, &req) {
		return
	}

	c.JSON(http.StatusOK, h.scorer.Score(c.Request.Context(), req.ProductName))
}

// AnalyzeProduct handles full analysis requests. An empty body is valid and
// yields the "no product provided" result.
func (h *Handler) AnalyzeProduct(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeBindError(c, err)
		return
	}

	analysis := domain.AnalysisRequest{ProductName: req.ProductName}
	if req.PhotoDataURI != "" {
		photo, err := domain.ParsePhotoDataURI(req.PhotoDataURI)
		if err != nil {
			h.abortWithError(c, err)
			return
		}
		analysis.Photo = photo
	}

	c.JSON(http.StatusOK, h.analyzer.Analyze(c.Request.Context(), analysis))
}

// CountryEmissions returns the latest national emission totals
func (h *Handler) CountryEmissions(c *gin.Context) {
	country := c.DefaultQuery("country", h.defaultCountry)

	totals, err := h.emissions.LatestCountryTotals(c.Request.Context(), country)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// bind decodes the JSON body and writes the error response on failure.
func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	h.writeBindError(c, err)
	return false
}

func (h *Handler) writeBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: validationMessage(err)})
}

// abortWithError maps domain errors onto HTTP statuses.
func (h *Handler) abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", requestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidPhoto),
		errors.Is(err, domain.ErrPhotoTooLarge),
		errors.Is(err, domain.ErrUnsupportedMediaType):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoEmissionsData):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrEmissionsUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
