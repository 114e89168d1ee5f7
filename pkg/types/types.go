// Package types defines core domain types used throughout the application.
package types

// DefaultContentType is the nrlx value the backend uses for video content.
const DefaultContentType = "99"

// Fully-read flag values sent as sfyd.
const (
	NotRead   = "0"
	FullyRead = "1"
)

// Credentials identifies the browser session a run piggybacks on.
type Credentials struct {
	Token  string
	Cookie string
}

// ContentIDs scopes which video is being watched.
type ContentIDs struct {
	ContentID   string `json:"kcnrid"` // kcnrid
	CourseID    string `json:"kcid"`   // kcid
	DirectoryID string `json:"ssmlid"` // ssmlid
}

// Session is the immutable context passed to every remote call.
type Session struct {
	Credentials
	ContentIDs
	LearnerID string // yhdm
}

// Extracted holds the best-effort result of scraping a captured request.
// Absent fields are nil.
type Extracted struct {
	Token     *string
	Cookie    *string
	ContentID *string
	CourseID  *string
	DirID     *string
	LearnerID *string
}

// Field returns the value for a field name, or nil when absent.
func (e *Extracted) Field(name string) *string {
	switch name {
	case FieldToken:
		return e.Token
	case FieldCookie:
		return e.Cookie
	case FieldContentID:
		return e.ContentID
	case FieldCourseID:
		return e.CourseID
	case FieldDirID:
		return e.DirID
	case FieldLearnerID:
		return e.LearnerID
	}
	return nil
}

// Set stores a value for a field name. Unknown names are ignored.
func (e *Extracted) Set(name, value string) {
	v := value
	switch name {
	case FieldToken:
		e.Token = &v
	case FieldCookie:
		e.Cookie = &v
	case FieldContentID:
		e.ContentID = &v
	case FieldCourseID:
		e.CourseID = &v
	case FieldDirID:
		e.DirID = &v
	case FieldLearnerID:
		e.LearnerID = &v
	}
}

// Field names, matching the keys used on the wire.
const (
	FieldToken     = "token"
	FieldCookie    = "cookie"
	FieldContentID = "kcnrid"
	FieldCourseID  = "kcid"
	FieldDirID     = "ssmlid"
	FieldLearnerID = "yhdm"
)

// SessionParams is everything a workflow needs, gathered from the paste and
// the console prompts.
type SessionParams struct {
	Token     string  `json:"token" validate:"required"`
	Cookie    string  `json:"cookie" validate:"required"`
	ContentID string  `json:"kcnrid" validate:"required"`
	CourseID  string  `json:"kcid" validate:"required"`
	DirID     string  `json:"ssmlid" validate:"required"`
	LearnerID string  `json:"yhdm" validate:"required"`
	Duration  float64 `json:"duration" validate:"gt=0"`
}

// Session builds the immutable session value from validated parameters.
func (p SessionParams) Session() Session {
	return Session{
		Credentials: Credentials{Token: p.Token, Cookie: p.Cookie},
		ContentIDs: ContentIDs{
			ContentID:   p.ContentID,
			CourseID:    p.CourseID,
			DirectoryID: p.DirID,
		},
		LearnerID: p.LearnerID,
	}
}

// PlaybackOptions controls the incremental workflow.
type PlaybackOptions struct {
	Speed    float64 `json:"speed" validate:"gt=0"`              // playback multiplier
	Interval float64 `json:"interval" validate:"gt=0,lte=86400"` // wall-clock seconds between updates, at most a day
}

// ProgressUpdate is the body of updKcnrSfydNew.
type ProgressUpdate struct {
	Percent     int     `json:"bfjd"`
	ContentID   string  `json:"kcnrid"`
	CourseID    string  `json:"kcid"`
	FullyRead   string  `json:"sfyd"`
	Elapsed     float64 `json:"bfsj"`
	DirectoryID string  `json:"ssmlid"`
}

// RunResult summarizes a finished workflow.
type RunResult struct {
	Completed      bool
	Updates        int // progress updates sent, including the final one
	Failures       int // remote calls that did not succeed
	FinalElapsed   float64
	FinalPercent   int
	FinalConfirmed bool // the forced 100% update succeeded
}
