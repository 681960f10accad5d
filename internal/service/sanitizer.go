package service

import (
	"encoding/json"
	"regexp"
	"strings"

	"app/internal/model"
)

// previewLimit bounds the diagnostic excerpts attached to a
// MalformedOutputError. Full payloads never reach the logs; the model may
// echo anything it was given, credentials included.
const previewLimit = 200

var fenceMarkers = regexp.MustCompile("```[a-zA-Z]*")

// SanitizeContent turns free-form model text into a GeneratedContent
// record. Model output is adversarial by nature, so every step tolerates
// the previous one's imperfection: fences and commentary are stripped,
// missing or wrong-typed fields degrade to zero values, and only a payload
// with no parseable JSON object at all is rejected.
func SanitizeContent(raw string) (*model.GeneratedContent, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.Map(dropInvisible, cleaned)
	cleaned = fenceMarkers.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	// Models regularly wrap the object in commentary. Slice from the first
	// '{' to the last '}' before giving up.
	if !strings.HasPrefix(cleaned, "{") || !strings.HasSuffix(cleaned, "}") {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start >= 0 && end > start {
			cleaned = cleaned[start : end+1]
		}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, &MalformedOutputError{
			RawPreview:     preview(raw),
			CleanedPreview: preview(cleaned),
			Cause:          err,
		}
	}

	content := &model.GeneratedContent{
		Headline:    stringField(fields, "headline"),
		Subheadline: stringField(fields, "subheadline"),
		Description: stringField(fields, "description"),
		Guarantee:   stringField(fields, "guarantee"),
		SocialProof: stringField(fields, "socialProof"),
		UrgencyText: stringField(fields, "urgencyText"),
		CTAText:     stringField(fields, "ctaText"),
	}
	for _, item := range objectList(fields, "benefits") {
		content.Benefits = append(content.Benefits, model.ListItem{Text: stringField(item, "text")})
	}
	for _, item := range objectList(fields, "features") {
		content.Features = append(content.Features, model.ListItem{Text: stringField(item, "text")})
	}
	for _, item := range objectList(fields, "testimonials") {
		content.Testimonials = append(content.Testimonials, model.Testimonial{
			Name:   stringField(item, "name"),
			Rating: intField(item, "rating"),
			Text:   stringField(item, "text"),
			Role:   stringField(item, "role"),
		})
	}
	for _, item := range objectList(fields, "bonuses") {
		content.Bonuses = append(content.Bonuses, model.Bonus{
			Title:       stringField(item, "title"),
			Description: stringField(item, "description"),
			Value:       stringField(item, "value"),
		})
	}
	for _, item := range objectList(fields, "faqs") {
		content.FAQs = append(content.FAQs, model.FAQ{
			Question: stringField(item, "question"),
			Answer:   stringField(item, "answer"),
		})
	}
	return content, nil
}

// dropInvisible removes the BOM and zero-width characters models sometimes
// smuggle into their output.
func dropInvisible(r rune) rune {
	switch r {
	case '\ufeff', '\u200b', '\u200c', '\u200d', '\u2060':
		return -1
	}
	return r
}

func preview(s string) string {
	if len(s) > previewLimit {
		return s[:previewLimit]
	}
	return s
}

// stringField extracts a string, degrading a missing or wrong-typed field
// to "".
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// intField extracts an integer, accepting any JSON number and truncating
// fractions. Missing or wrong-typed fields degrade to 0.
func intField(fields map[string]json.RawMessage, key string) int {
	raw, ok := fields[key]
	if !ok {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	return int(n)
}

// objectList extracts a list of JSON objects. Wrong-typed fields yield nil;
// non-object entries are skipped rather than failing the whole list.
func objectList(fields map[string]json.RawMessage, key string) []map[string]json.RawMessage {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]map[string]json.RawMessage, 0, len(items))
	for _, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		out = append(out, obj)
	}
	return out
}
