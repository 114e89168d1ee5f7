// Package interfaces defines the core abstractions for the progress simulator.
// Field extractors and the SPOC API client implement these interfaces so the
// session driver can be exercised without a live backend.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"spoc-progress/pkg/types"
)

// FieldExtractor pulls one field out of a captured browser request.
//
// To add a new field:
// 1. Create a new extractor in pkg/extractors/
// 2. Implement this interface
// 3. Register it in the FieldRegistry
type FieldExtractor interface {
	// Fields returns the field names this extractor produces.
	Fields() []string

	// Extract returns the values found in text, keyed by field name.
	// Missing fields are simply not present in the map.
	Extract(text string) map[string]string
}

// HTTPClient abstracts HTTP operations for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ProgressAPI is the set of SPOC endpoints a watching session drives.
// Every call reports success as a bool; failures are logged by the implementation.
type ProgressAPI interface {
	// AddRecord registers that the learner opened the content item.
	AddRecord(ctx context.Context, s types.Session, contentType string) bool

	// SaveUser refreshes the learner presence signal.
	SaveUser(ctx context.Context, s types.Session) bool

	// UpdateOnlineCount bumps the course's live-viewer counter.
	UpdateOnlineCount(ctx context.Context, s types.Session) bool

	// UpdateProgress reports a playback position.
	UpdateProgress(ctx context.Context, s types.Session, percent int, elapsed float64, fullyRead string) bool
}

// Sleeper pauses between progress updates.
type Sleeper interface {
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}
