// Package extractors provides field extractor implementations.
// Each extractor scrapes one or more parameters out of a request captured
// from the browser developer tools ("Copy as cURL").
//
// To add a new extractor:
// 1. Create a new file (e.g., referer.go)
// 2. Implement the FieldExtractor interface
// 3. Register it in the registry (see Default below or app.go)
package extractors

import (
	"regexp"
	"strings"

	"spoc-progress/pkg/interfaces"
	"spoc-progress/pkg/registry"
	"spoc-progress/pkg/types"
)

// Normalize flattens a pasted multi-line capture into a single line.
// Line breaks become single spaces; all other characters are kept so that
// quoted values survive unchanged.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.ReplaceAll(text, "\n", " ")
}

// PatternExtractor extracts a single field from the first capture group of a regexp.
type PatternExtractor struct {
	field string
	re    *regexp.Regexp
}

// NewPatternExtractor creates an extractor for field using pattern.
// The pattern must contain exactly one capture group.
func NewPatternExtractor(field, pattern string) *PatternExtractor {
	return &PatternExtractor{
		field: field,
		re:    regexp.MustCompile(pattern),
	}
}

// Fields returns the single field this extractor produces.
func (e *PatternExtractor) Fields() []string {
	return []string{e.field}
}

// Extract returns the first match, if any.
func (e *PatternExtractor) Extract(text string) map[string]string {
	match := e.re.FindStringSubmatch(text)
	if len(match) < 2 {
		return nil
	}
	return map[string]string{e.field: match[1]}
}

// Default returns a registry holding every built-in extractor.
func Default() *registry.FieldRegistry {
	reg := registry.NewFieldRegistry()
	reg.Register(NewTokenExtractor())
	reg.Register(NewCookieExtractor())
	reg.Register(NewPayloadExtractor())
	reg.Register(NewLearnerIDExtractor())
	return reg
}

// Extract normalizes text and runs the default extractors over it.
func Extract(text string) types.Extracted {
	return Default().Extract(Normalize(text))
}

var _ interfaces.FieldExtractor = (*PatternExtractor)(nil)
