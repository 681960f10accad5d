package service

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"app/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeRoundTripsWellFormedContent(t *testing.T) {
	content := &model.GeneratedContent{
		Headline:    "Transform Your Mornings",
		Subheadline: "The last coffee grinder you will ever buy",
		Description: "A grinder built for people who care.",
		Benefits:    []model.ListItem{{Text: "Consistent grind"}, {Text: "Quiet motor"}},
		Features:    []model.ListItem{{Text: "40 grind settings"}},
		Testimonials: []model.Testimonial{
			{Name: "Dana", Rating: 5, Text: "Best purchase this year.", Role: "Home barista"},
		},
		Bonuses:     []model.Bonus{{Title: "Cleaning kit", Description: "Brush and cloth", Value: "$19"}},
		FAQs:        []model.FAQ{{Question: "Is it loud?", Answer: "No."}},
		Guarantee:   "30-day money back",
		SocialProof: "Trusted by 12,000 customers",
		UrgencyText: "Only 14 left in stock",
		CTAText:     "Order now",
	}

	raw, err := json.Marshal(content)
	require.NoError(t, err)

	got, err := SanitizeContent(string(raw))
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestSanitizeStripsMarkdownFences(t *testing.T) {
	got, err := SanitizeContent("```json\n{\"headline\":\"Hi\"}\n```")

	require.NoError(t, err)
	assert.Equal(t, "Hi", got.Headline)
	assert.Empty(t, got.Subheadline)
	assert.Empty(t, got.Benefits)
	assert.Empty(t, got.Testimonials)
}

func TestSanitizeStripsBareFences(t *testing.T) {
	got, err := SanitizeContent("```\n{\"ctaText\":\"Buy\"}\n```")

	require.NoError(t, err)
	assert.Equal(t, "Buy", got.CTAText)
}

func TestSanitizeSlicesSurroundingCommentary(t *testing.T) {
	raw := "Sure! Here is the marketing copy you asked for:\n\n" +
		"{\"headline\":\"Hello\",\"guarantee\":\"60 days\"}\n\n" +
		"Let me know if you want changes."

	got, err := SanitizeContent(raw)

	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Headline)
	assert.Equal(t, "60 days", got.Guarantee)
}

func TestSanitizeHandlesBOMAndZeroWidthRunes(t *testing.T) {
	raw := "\ufeff\u200b{\"headline\":\u200d\"Hi\"}\u2060"

	got, err := SanitizeContent(raw)

	require.NoError(t, err)
	assert.Equal(t, "Hi", got.Headline)
}

func TestSanitizeWrongTypedFieldsDegradeToZeroValues(t *testing.T) {
	raw := `{
		"headline": 42,
		"description": "ok",
		"benefits": "not a list",
		"features": [{"text": "real"}, "stray string", {"text": 7}],
		"testimonials": [{"name": "Ana", "rating": 4.6, "text": "Nice", "role": null}],
		"faqs": {"question": "wrong shape"}
	}`

	got, err := SanitizeContent(raw)

	require.NoError(t, err)
	assert.Empty(t, got.Headline)
	assert.Equal(t, "ok", got.Description)
	assert.Nil(t, got.Benefits)
	assert.Equal(t, []model.ListItem{{Text: "real"}, {Text: ""}}, got.Features)
	require.Len(t, got.Testimonials, 1)
	assert.Equal(t, 4, got.Testimonials[0].Rating)
	assert.Empty(t, got.Testimonials[0].Role)
	assert.Nil(t, got.FAQs)
}

func TestSanitizeAcceptsFewerItemsThanTargets(t *testing.T) {
	raw := `{"benefits":[{"text":"only one"}],"testimonials":[]}`

	got, err := SanitizeContent(raw)

	require.NoError(t, err)
	assert.Len(t, got.Benefits, 1)
	assert.Empty(t, got.Testimonials)
}

func TestSanitizeRejectsNonJSON(t *testing.T) {
	_, err := SanitizeContent("I'm sorry, I can't help with that request.")

	var malformed *MalformedOutputError
	require.ErrorAs(t, err, &malformed)
	assert.NotNil(t, malformed.Cause)
	assert.NotEmpty(t, malformed.RawPreview)
}

func TestSanitizeRejectsEmptyInput(t *testing.T) {
	_, err := SanitizeContent("   \n\t ")

	var malformed *MalformedOutputError
	require.ErrorAs(t, err, &malformed)
}

func TestSanitizePreviewsAreBounded(t *testing.T) {
	long := "garbage " + strings.Repeat("x", 5000)

	_, err := SanitizeContent(long)

	var malformed *MalformedOutputError
	require.True(t, errors.As(err, &malformed))
	assert.LessOrEqual(t, len(malformed.RawPreview), previewLimit)
	assert.LessOrEqual(t, len(malformed.CleanedPreview), previewLimit)
}
