package extractors

import (
	"spoc-progress/pkg/types"
)

// NewTokenExtractor matches the single-quoted header `-H 'Token: ...'`.
func NewTokenExtractor() *PatternExtractor {
	return NewPatternExtractor(types.FieldToken, `'Token:\s*([^']+)'`)
}

// NewCookieExtractor matches the value of curl's `-b '...'` option.
func NewCookieExtractor() *PatternExtractor {
	return NewPatternExtractor(types.FieldCookie, `-b\s+'([^']+)'`)
}

// NewLearnerIDExtractor matches an all-digits yhdm value anywhere in the text,
// usually the query string of a saveYh request.
func NewLearnerIDExtractor() *PatternExtractor {
	return NewPatternExtractor(types.FieldLearnerID, `yhdm=(\d+)`)
}
