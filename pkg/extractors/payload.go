package extractors

import (
	"encoding/json"
	"io"
	"regexp"
	"strings"

	"spoc-progress/pkg/interfaces"
	"spoc-progress/pkg/types"
)

var dataRawRe = regexp.MustCompile(`--data-raw\s+'({[^']+})'`)

// PayloadExtractor reads the content identifiers out of the JSON body passed
// with --data-raw.
type PayloadExtractor struct{}

// NewPayloadExtractor creates a new payload extractor.
func NewPayloadExtractor() *PayloadExtractor {
	return &PayloadExtractor{}
}

// Fields returns the content identifier field names.
func (e *PayloadExtractor) Fields() []string {
	return []string{types.FieldContentID, types.FieldCourseID, types.FieldDirID}
}

// Extract parses the payload. An invalid JSON body yields no fields at all.
func (e *PayloadExtractor) Extract(text string) map[string]string {
	match := dataRawRe.FindStringSubmatch(text)
	if len(match) < 2 {
		return nil
	}

	dec := json.NewDecoder(strings.NewReader(match[1]))
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil
	}

	result := make(map[string]string, 3)
	for _, field := range e.Fields() {
		if v, ok := scalarString(body[field]); ok {
			result[field] = v
		}
	}
	return result
}

// scalarString renders a JSON string or number. Other kinds are absent.
func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	default:
		return "", false
	}
}

var _ interfaces.FieldExtractor = (*PayloadExtractor)(nil)
