package gemini

import "google.golang.org/genai"

// Response schemas sent with each structured call. The decoded answers are
// checked again in client.go because the model does not always honour them.

var identifySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"identifiedProductName": {
			Type:        genai.TypeString,
			Description: "Name of the main consumer product in the photo, specific enough for an impact analysis. Empty when nothing is identified.",
		},
		"identified": {
			Type:        genai.TypeBoolean,
			Description: "Whether a common consumer product was clearly identified. False for landscapes, people, animals or unclear objects.",
		},
	},
	Required: []string{"identifiedProductName", "identified"},
}

func scoreField(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeNumber,
		Description: description,
		Minimum:     genai.Ptr[float64](0),
		Maximum:     genai.Ptr[float64](100),
	}
}

var scoreSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name": {
			Type:        genai.TypeString,
			Description: "Identified product name, possibly a normalized or more specific version of the input.",
		},
		"category": {
			Type:        genai.TypeString,
			Description: "Product category, e.g. Clothing, Electronics, Food, Personal Care, Kitchenware.",
		},
		"carbonFootprint":     scoreField("Estimated carbon footprint, 0 very low to 100 very high."),
		"waterUsage":          scoreField("Estimated water usage over production and lifetime, 0 very low to 100 very high."),
		"sustainabilityScore": scoreField("Overall sustainability, 0 very poor to 100 excellent."),
		"notes": {
			Type:        genai.TypeArray,
			Description: "2-3 key environmental considerations justifying the scores.",
			Items:       &genai.Schema{Type: genai.TypeString},
			MaxItems:    genai.Ptr[int64](3),
		},
		"identified": {
			Type:        genai.TypeBoolean,
			Description: "Whether the product was clearly identified and could be scored.",
		},
	},
	Required: []string{"name", "category", "carbonFootprint", "waterUsage", "sustainabilityScore", "identified"},
}

var ecoActionsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"actions": {
			Type:        genai.TypeArray,
			Description: "2-4 practical eco-friendly actions for the product.",
			Items:       &genai.Schema{Type: genai.TypeString},
			MinItems:    genai.Ptr[int64](2),
			MaxItems:    genai.Ptr[int64](4),
		},
	},
	Required: []string{"actions"},
}
