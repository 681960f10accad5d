package model

// ListItem is a single benefit or feature line.
type ListItem struct {
	Text string `json:"text"`
}

// Testimonial is a generated customer quote.
type Testimonial struct {
	Name   string `json:"name"`
	Rating int    `json:"rating"`
	Text   string `json:"text"`
	Role   string `json:"role"`
}

// Bonus is a generated bonus offer attached to the product.
type Bonus struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Value       string `json:"value"`
}

// FAQ is a generated question/answer pair.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// GeneratedContent is the structured marketing payload produced for a
// product. List lengths are prompting targets, not guarantees; any field
// may come back empty when the model under-produces.
type GeneratedContent struct {
	Headline     string        `json:"headline"`
	Subheadline  string        `json:"subheadline"`
	Description  string        `json:"description"`
	Benefits     []ListItem    `json:"benefits"`
	Features     []ListItem    `json:"features"`
	Testimonials []Testimonial `json:"testimonials"`
	Bonuses      []Bonus       `json:"bonuses"`
	FAQs         []FAQ         `json:"faqs"`
	Guarantee    string        `json:"guarantee"`
	SocialProof  string        `json:"socialProof"`
	UrgencyText  string        `json:"urgencyText"`
	CTAText      string        `json:"ctaText"`
}
