package gemini

import (
	"strings"
	"text/template"
)

const identifyPrompt = `You are an expert at recognising everyday consumer products in pictures.

Identify the main consumer product visible in the attached photo.
Focus on a single product. If there are several, pick the most prominent one or the one that is clearly the subject.
The name must be specific enough for an environmental impact analysis (e.g. "500ml PET plastic water bottle",
"synthetic running shoes", "laminated snack bag"). Avoid generic names such as "clothes" or "food".
If the photo does not show a clear consumer product (landscape, animal, only people) or the object is too
obscure to identify, set "identified" to false and "identifiedProductName" to an empty string.
Write the product name in {{.Language}}.
Answer only with JSON matching the response schema.`

const scorePrompt = `You are a sustainability and product life-cycle analysis expert. Evaluate the environmental impact
of the consumer product named below, following the STRICT RUBRIC so that repeated evaluations are consistent.

Product: {{.ProductName}}

INSTRUCTIONS
1. Identify the product: its main material, manufacturing process and typical life cycle.
2. Apply the rubric below to compute EACH score. Do not guess; base every number on the criteria.
3. Compute the sustainability score starting from 50 points and adjusting per the rubric.
4. Write 2 or 3 short notes in {{.Language}} that justify the scores using the rubric
   (e.g. "High carbon footprint due to energy-intensive production").
5. Answer only with JSON matching the response schema.

RUBRIC

1. Carbon footprint (0-100, 100 is the worst impact)
   0-20   very low: unprocessed plant products, long-lived reusable items (apple, glass cup, book)
   21-40  low: minimally processed, recycled or organic materials (bread, organic cotton t-shirt, recycled paper)
   41-60  medium: moderate industrial processing, plastic packaging, consumer electronics (yogurt, smartphone, synthetic sneakers)
   61-80  high: energy-intensive production, meat other than beef, long-distance transport (chicken, cheese, conventional jeans)
   81-100 very high: single-use virgin plastic, beef, transport-intensive goods (PET bottle, steak, petrol car)

2. Water usage (0-100, 100 is the worst impact)
   0-20   very low: little water in production (electronics, glass, synthetic products)
   21-40  low: low-water crops (potatoes, leafy vegetables)
   41-60  medium: industrial processing, paper (aluminium can, polyester t-shirt)
   61-80  high: water-intensive crops (rice, conventional cotton, coffee)
   81-100 very high: animal products, nuts (beef, chocolate, almonds, cotton jeans)

3. Sustainability score (0-100, 100 is the best)
   Base: 50 points.
   Material:   +20 if the main material is renewable, recycled or biodegradable (bamboo, organic cotton, glass, recycled steel)
               -20 if it is virgin plastic, non-recyclable or from a problematic extractive source
   Life cycle: +20 if designed to be durable and reused for many years (cast-iron pan, reusable cup)
               -20 if single-use or short-lived (disposable cup, plastic cutlery)
   Production: +10 if production is known to be low impact (organic farming)
               -10 if production is energy or water intensive (carbon or water score above 60)

If the product is too vague (e.g. "thing") or is not a consumer product, set "identified" to false and use 0 for every score.`

const ecoActionsPrompt = `Given the product "{{.ProductName}}"{{if .Description}} (described as "{{.Description}}"){{end}}{{if .Category}} in the category "{{.Category}}"{{end}},
suggest 2 to 4 concrete eco-friendly actions a consumer can take. Write them in {{.Language}}.
Focus on:
1. Correct disposal and recycling.
2. Creative reuse or upcycling ideas.
3. Tips to extend the product's useful life.
4. More conscious consumption alternatives (buying in bulk, choosing refills).
Be specific to the product type. Avoid generic suggestions such as "recycle".
Example for "PET soda bottle":
- "Rinse and flatten the PET bottle before putting it in the plastics recycling bin."
- "Turn the bottle into a small plant pot or pencil holder."
- "Prefer sodas in returnable or glass packaging when possible."
Answer only with JSON matching the response schema.`

var (
	identifyTmpl   = template.Must(template.New("identify").Parse(identifyPrompt))
	scoreTmpl      = template.Must(template.New("score").Parse(scorePrompt))
	ecoActionsTmpl = template.Must(template.New("ecoActions").Parse(ecoActionsPrompt))
)

type promptData struct {
	ProductName string
	Description string
	Category    string
	Language    string
}

func render(tmpl *template.Template, data promptData) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
