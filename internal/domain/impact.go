package domain

// Category values produced outside the model.
const (
	CategoryUnknown = "Unknown"
	CategoryError   = "Erro"
)

// Source values for AnalysisResult.Source.
const (
	SourceName  = "name"
	SourcePhoto = "photo"
)

// IdentificationResult is the outcome of identifying a product in a photo.
// ProductName is always empty when Identified is false.
type IdentificationResult struct {
	ProductName string `json:"productName"`
	Identified  bool   `json:"identified"`
}

// ScoreResult holds the environmental impact estimate for a product name.
type ScoreResult struct {
	NormalizedName      string   `json:"normalizedName"`
	Category            string   `json:"category"`
	CarbonScore         float64  `json:"carbonScore"`         // 0-100, higher is worse
	WaterScore          float64  `json:"waterScore"`          // 0-100, higher is worse
	SustainabilityScore float64  `json:"sustainabilityScore"` // 0-100, higher is better
	Notes               []string `json:"notes"`
	Identified          bool     `json:"identified"`
}

// AnalysisRequest is the input of the unified analyzer.
// When both fields are set the photo is tried first and ProductName
// is only used as a fallback.
type AnalysisRequest struct {
	ProductName string
	Photo       *Photo
}

// AnalysisResult combines identification, scoring and eco-actions.
type AnalysisResult struct {
	ProductName         string   `json:"productName"`
	Category            string   `json:"category"`
	CarbonScore         float64  `json:"carbonScore"`
	WaterScore          float64  `json:"waterScore"`
	SustainabilityScore float64  `json:"sustainabilityScore"`
	Notes               []string `json:"notes"`
	EcoActions          []string `json:"ecoActions"`
	Identified          bool     `json:"identified"`
	// Scored is false when the numbers above are placeholders, e.g. a
	// product recognised in a photo that the scorer could not rate.
	Scored bool   `json:"scored"`
	Source string `json:"source,omitempty"`
}

// EcoActionRequest is the input of the eco-action generator.
type EcoActionRequest struct {
	ProductName string
	Description string
	Category    string
}

// EmissionsTotals is a country's total greenhouse gas emissions for one year.
type EmissionsTotals struct {
	Country             string  `json:"country"`
	Year                int     `json:"year"`
	EmissionsTonnes     float64 `json:"emissionsTonnes"`
	EmissionsKilotonnes int64   `json:"emissionsKilotonnes"`
}
