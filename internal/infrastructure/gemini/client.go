// Package gemini implements domain.ImpactModel with Google's Gemini models
// through structured (JSON schema constrained) generation.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/verdeai/backend/internal/domain"
	"github.com/verdeai/backend/internal/platform/logger"
)

const (
	defaultModel             = "gemini-2.0-flash"
	defaultTimeout           = 30 * time.Second
	defaultRequestsPerMinute = 60
	defaultLanguage          = "Brazilian Portuguese"

	maxNotes      = 3
	maxEcoActions = 4
)

// Config holds Gemini client settings
type Config struct {
	APIKey            string
	Model             string
	Timeout           time.Duration
	RequestsPerMinute int
	// Language the model writes names, notes and actions in.
	Language string
	// BaseURL overrides the API endpoint (proxies, tests).
	BaseURL string
	Logger  *zap.Logger
}

// generator is the subset of *genai.Models used by the client.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client handles communication with the Gemini API
type Client struct {
	models   generator
	model    string
	language string
	timeout  time.Duration
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewClient creates a Gemini-backed impact model.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return newClient(client.Models, cfg), nil
}

func newClient(models generator, cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRequestsPerMinute
	}
	language := cfg.Language
	if language == "" {
		language = defaultLanguage
	}

	burst := rpm / 6
	if burst < 1 {
		burst = 1
	}

	return &Client{
		models:   models,
		model:    model,
		language: language,
		timeout:  timeout,
		limiter:  rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
		logger:   logger.OrNop(cfg.Logger).Named("gemini"),
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type identifyOutput struct {
	IdentifiedProductName string `json:"identifiedProductName"`
	Identified            *bool  `json:"identified"`
}

// IdentifyProduct asks the model for the most prominent consumer product in the photo.
func (c *Client) IdentifyProduct(ctx context.Context, photo *domain.Photo) (*domain.IdentificationResult, error) {
	if photo == nil || len(photo.Data) == 0 {
		return nil, domain.ErrInvalidPhoto
	}

	prompt, err := render(identifyTmpl, promptData{Language: c.language})
	if err != nil {
		return nil, fmt.Errorf("render identify prompt: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(photo.Data, photo.MIMEType),
	}

	var out identifyOutput
	if err := c.generate(ctx, "identify", parts, identifySchema, &out); err != nil {
		return nil, err
	}
	if out.Identified == nil {
		return nil, fmt.Errorf("%w: identify: missing identified flag", domain.ErrMalformedOutput)
	}

	return &domain.IdentificationResult{
		ProductName: strings.TrimSpace(out.IdentifiedProductName),
		Identified:  *out.Identified,
	}, nil
}

type scoreOutput struct {
	Name                string   `json:"name"`
	Category            string   `json:"category"`
	CarbonFootprint     *float64 `json:"carbonFootprint"`
	WaterUsage          *float64 `json:"waterUsage"`
	SustainabilityScore *float64 `json:"sustainabilityScore"`
	Notes               []string `json:"notes"`
	Identified          *bool    `json:"identified"`
}

// ScoreProduct asks the model to rate productName against the impact rubric.
func (c *Client) ScoreProduct(ctx context.Context, productName string) (*domain.ScoreResult, error) {
	prompt, err := render(scoreTmpl, promptData{ProductName: productName, Language: c.language})
	if err != nil {
		return nil, fmt.Errorf("render score prompt: %w", err)
	}

	var out scoreOutput
	if err := c.generate(ctx, "score", []*genai.Part{genai.NewPartFromText(prompt)}, scoreSchema, &out); err != nil {
		return nil, err
	}
	if out.Identified == nil {
		return nil, fmt.Errorf("%w: score: missing identified flag", domain.ErrMalformedOutput)
	}

	result := &domain.ScoreResult{
		NormalizedName: strings.TrimSpace(out.Name),
		Category:       strings.TrimSpace(out.Category),
		Notes:          cleanList(out.Notes, maxNotes),
		Identified:     *out.Identified,
	}

	if !result.Identified {
		// scores of an unidentified product are meaningless
		return result, nil
	}

	if out.CarbonFootprint == nil || out.WaterUsage == nil || out.SustainabilityScore == nil {
		return nil, fmt.Errorf("%w: score: missing score fields", domain.ErrMalformedOutput)
	}
	result.CarbonScore = clampScore(*out.CarbonFootprint)
	result.WaterScore = clampScore(*out.WaterUsage)
	result.SustainabilityScore = clampScore(*out.SustainabilityScore)

	return result, nil
}

type ecoActionsOutput struct {
	Actions []string `json:"actions"`
}

// SuggestEcoActions asks the model for 2-4 actions tied to the product.
func (c *Client) SuggestEcoActions(ctx context.Context, req domain.EcoActionRequest) ([]string, error) {
	prompt, err := render(ecoActionsTmpl, promptData{
		ProductName: req.ProductName,
		Description: req.Description,
		Category:    req.Category,
		Language:    c.language,
	})
	if err != nil {
		return nil, fmt.Errorf("render eco actions prompt: %w", err)
	}

	var out ecoActionsOutput
	if err := c.generate(ctx, "eco_actions", []*genai.Part{genai.NewPartFromText(prompt)}, ecoActionsSchema, &out); err != nil {
		return nil, err
	}

	return cleanList(out.Actions, maxEcoActions), nil
}

// generate runs one structured call and decodes the JSON answer into out.
func (c *Client) generate(ctx context.Context, op string, parts []*genai.Part, schema *genai.Schema, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %s: rate limiter: %v", domain.ErrModelUnavailable, op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](0),
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		},
	)
	if err != nil {
		c.logger.Warn("model call failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%w: %s: %v", domain.ErrModelUnavailable, op, err)
	}

	var text string
	if resp != nil {
		text = stripCodeFence(resp.Text())
	}
	if text == "" {
		return fmt.Errorf("%w: %s: empty response", domain.ErrMalformedOutput, op)
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		c.logger.Warn("model returned invalid JSON", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%w: %s: %v", domain.ErrMalformedOutput, op, err)
	}

	c.logger.Debug("model call completed",
		zap.String("op", op),
		zap.String("model", c.model),
		zap.Duration("latency", time.Since(start)),
	)
	return nil
}

// stripCodeFence removes a ```json fence some models wrap around JSON output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func clampScore(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// cleanList trims entries, drops empty ones and keeps at most limit.
func cleanList(items []string, limit int) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}
