package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/verdeai/backend/internal/domain"
	"github.com/verdeai/backend/internal/platform/logger"
)

// MaxEcoActions caps the eco-action list of an analysis.
const MaxEcoActions = 4

// Names and messages of the early-exit results.
const (
	nameNotIdentified      = "Not identified"
	nameIdentificationFail = "Identification error"
	nameNoProduct          = "No product provided"

	noteNotIdentifiedFromImage = "The product could not be identified from the image and no name was provided."
	noteIdentificationError    = "An error occurred while identifying the product in the photo."
	noteNoProduct              = "No product name or image was provided for analysis."
	noteAnalysisError          = "An error occurred while analyzing the product."

	actionNotIdentified      = "No actions could be suggested because the product was not identified."
	actionIdentificationFail = "No actions could be suggested because product identification failed."
	actionNoProduct          = "Provide a product name or image to analyze."
	actionDefault            = "No specific action was generated."
	actionError              = "An error occurred while generating action suggestions."
)

// AnalyzerConfig holds configuration for the analyzer
type AnalyzerConfig struct {
	Logger *zap.Logger
}

// Analyzer composes photo identification, scoring and eco-action
// suggestions into one result.
type Analyzer struct {
	identifier *PhotoIdentifier
	scorer     *ProductScorer
	model      domain.ImpactModel
	logger     *zap.Logger
}

// NewAnalyzer creates a new analyzer with dependencies
func NewAnalyzer(identifier *PhotoIdentifier, scorer *ProductScorer, model domain.ImpactModel, config AnalyzerConfig) *Analyzer {
	return &Analyzer{
		identifier: identifier,
		scorer:     scorer,
		model:      model,
		logger:     logger.OrNop(config.Logger).Named("analyzer"),
	}
}

// Analyze never fails. The photo, when present, takes priority over
// req.ProductName, which is only used if the photo yields no product.
// Flow: identify photo -> resolve name -> score -> eco-actions -> compose
func (a *Analyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) *domain.AnalysisResult {
	name := strings.TrimSpace(req.ProductName)
	source := domain.SourceName
	fromPhoto := false
	description := ""

	if req.Photo != nil {
		identification, err := a.identifier.Identify(ctx, req.Photo)
		switch {
		case err == nil && identification.Identified:
			name = identification.ProductName
			description = "Product identified in the photo as " + identification.ProductName
			fromPhoto = true
			source = domain.SourcePhoto
		case err != nil && name == "":
			return earlyResult(nameIdentificationFail, noteIdentificationError, actionIdentificationFail)
		case name == "":
			return earlyResult(nameNotIdentified, noteNotIdentifiedFromImage, actionNotIdentified)
		default:
			a.logger.Debug("photo yielded no product, using supplied name", zap.Error(err))
		}
	}

	if name == "" {
		return earlyResult(nameNoProduct, noteNoProduct, actionNoProduct)
	}
	if description == "" {
		description = name
	}

	score := a.scorer.Score(ctx, name)

	actions := []string{actionDefault}
	var ecoReq *domain.EcoActionRequest
	switch {
	case score.Identified:
		ecoReq = &domain.EcoActionRequest{ProductName: score.NormalizedName, Description: description, Category: score.Category}
	case fromPhoto:
		ecoReq = &domain.EcoActionRequest{ProductName: name, Description: description, Category: domain.CategoryUnknown}
	}

	if ecoReq != nil {
		suggested, err := a.model.SuggestEcoActions(ctx, *ecoReq)
		if err != nil {
			a.logger.Error("eco-action suggestion failed", zap.String("product", ecoReq.ProductName), zap.Error(err))
			return &domain.AnalysisResult{
				ProductName: name,
				Category:    domain.CategoryError,
				Notes:       []string{noteAnalysisError},
				EcoActions:  []string{actionError},
				Identified:  fromPhoto,
				Source:      source,
			}
		}
		if len(suggested) > 0 {
			actions = suggested
		}
	}
	if len(actions) > MaxEcoActions {
		actions = actions[:MaxEcoActions]
	}

	finalName := score.NormalizedName
	if finalName == "" {
		finalName = name
	}

	return &domain.AnalysisResult{
		ProductName:         finalName,
		Category:            score.Category,
		CarbonScore:         score.CarbonScore,
		WaterScore:          score.WaterScore,
		SustainabilityScore: score.SustainabilityScore,
		Notes:               score.Notes,
		EcoActions:          actions,
		Identified:          score.Identified || fromPhoto,
		Scored:              score.Identified,
		Source:              source,
	}
}

func earlyResult(name, note, action string) *domain.AnalysisResult {
	return &domain.AnalysisResult{
		ProductName: name,
		Category:    domain.CategoryUnknown,
		Notes:       []string{note},
		EcoActions:  []string{action},
		Identified:  false,
	}
}
