package service

import (
	"fmt"
	"strings"
)

// ProductFacts are the user-supplied inputs a generation starts from. Only
// the name is required.
type ProductFacts struct {
	Name        string
	Price       string
	Description string
	Category    string
}

// categoryFramings swap the opening guidance paragraph for known storefront
// categories. Everything after the framing is identical regardless of
// category so prompts stay cacheable and comparable.
var categoryFramings = map[string]string{
	"digital": "You are writing for a digital product (course, ebook, software or template). Emphasize instant delivery, lifetime access and transformation outcomes.",
	"fashion": "You are writing for a fashion product. Use an aspirational, style-conscious tone and emphasize look, fit and occasions.",
	"food":    "You are writing for a food or beverage product. Use a sensory, appetizing tone and emphasize taste, freshness and ingredients.",
	"health":  "You are writing for a health or beauty product. Use a trustworthy, caring tone and emphasize wellbeing, routine and visible results.",
	"home":    "You are writing for a home and living product. Use a warm, practical tone and emphasize comfort, durability and everyday use.",
}

const genericFraming = "You are an expert direct-response copywriter for online storefronts. Write persuasive, concrete marketing copy for the product below."

// BuildPrompt assembles the instruction prompt for a generation. It is a
// pure function: identical facts always produce a byte-identical prompt.
func BuildPrompt(facts ProductFacts) string {
	framing := genericFraming
	if f, ok := categoryFramings[strings.ToLower(facts.Category)]; ok {
		framing = f
	}

	var b strings.Builder
	b.WriteString(framing)
	b.WriteString("\n\nProduct name: ")
	b.WriteString(facts.Name)
	if facts.Price != "" {
		b.WriteString("\nPrice: ")
		b.WriteString(facts.Price)
	}
	if facts.Description != "" {
		b.WriteString("\nSeller's description: ")
		b.WriteString(facts.Description)
	}
	b.WriteString("\n\n")
	b.WriteString(promptSchema)
	return b.String()
}

// promptSchema steers the model toward parseable output: field names, types
// and target list lengths, stated explicitly. The lengths are targets only;
// the sanitizer accepts whatever count comes back.
var promptSchema = strings.TrimSpace(fmt.Sprintf(`
Respond with ONLY a JSON object, no markdown fences and no commentary.
The object must have exactly these fields:

{
  "headline": string,            // attention-grabbing product headline
  "subheadline": string,         // supporting line under the headline
  "description": string,         // 2-3 paragraph sales description
  "benefits": [{"text": string}],        // %d customer benefits
  "features": [{"text": string}],        // %d concrete product features
  "testimonials": [{"name": string, "rating": number, "text": string, "role": string}],  // %d testimonials, rating 3-5
  "bonuses": [{"title": string, "description": string, "value": string}],  // %d bonus offers
  "faqs": [{"question": string, "answer": string}],  // %d frequently asked questions
  "guarantee": string,           // money-back guarantee statement
  "socialProof": string,         // social proof line (e.g. customers served)
  "urgencyText": string,         // scarcity or urgency line
  "ctaText": string              // call-to-action button text
}
`, targetBenefits, targetFeatures, targetTestimonials, targetBonuses, targetFAQs))

// Target list lengths used in the schema block.
const (
	targetBenefits     = 5
	targetFeatures     = 5
	targetTestimonials = 3
	targetBonuses      = 2
	targetFAQs         = 5
)
