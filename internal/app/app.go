// Package app provides the application setup and the interactive session flow.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/google/uuid"

	"spoc-progress/pkg/config"
	"spoc-progress/pkg/console"
	"spoc-progress/pkg/extractors"
	"spoc-progress/pkg/httpclient"
	"spoc-progress/pkg/interfaces"
	"spoc-progress/pkg/logging"
	"spoc-progress/pkg/registry"
	"spoc-progress/pkg/services"
	"spoc-progress/pkg/spoc"
	"spoc-progress/pkg/types"
	"spoc-progress/pkg/validation"
)

// Input errors. Each is reported to the operator before it is returned and
// none of them causes a network call.
var (
	ErrMissingParams   = errors.New("missing required parameters")
	ErrEmptyLearnerID  = errors.New("learner id must not be empty")
	ErrInvalidNumber   = errors.New("value must be a number")
	ErrInvalidMode     = errors.New("invalid mode")
	ErrInvalidSettings = errors.New("invalid settings")
)

// Workflow modes offered at the mode prompt.
const (
	ModeSimulate = "1"
	ModeFast     = "2"
)

// Defaults for the incremental workflow prompts.
const (
	DefaultSpeed    = "1.0"
	DefaultInterval = "5.0"
)

// App is the main application container.
type App struct {
	Config     *config.Config
	Log        *logging.Logger
	RunID      string
	Console    *console.Console
	HTTPClient *httpclient.Client
	API        *spoc.Client
	Simulator  *services.Simulator
	Extractors *registry.FieldRegistry
	Validator  *validation.Validator
}

type options struct {
	sleeper   interfaces.Sleeper
	logWriter io.Writer
}

// Option customizes New.
type Option func(*options)

// WithSleeper replaces the wall-clock pause between progress updates.
func WithSleeper(s interfaces.Sleeper) Option {
	return func(o *options) { o.sleeper = s }
}

// WithLogWriter redirects structured logs.
func WithLogWriter(w io.Writer) Option {
	return func(o *options) { o.logWriter = w }
}

// New creates and wires the application. Prompts are read from in and
// operator output goes to out.
func New(cfg *config.Config, in io.Reader, out io.Writer, opts ...Option) *App {
	o := options{sleeper: services.TimerSleeper{}}
	for _, opt := range opts {
		opt(&o)
	}

	runID := uuid.NewString()
	log := logging.New(cfg.LogLevel, cfg.LogJSON, o.logWriter).WithRunID(runID)
	log.Debug("initializing", "base_url", cfg.BaseURL)

	httpClient := httpclient.New(cfg, log)
	api := spoc.NewClient(cfg.BaseURL, cfg.Origin, httpClient, log)

	return &App{
		Config:     cfg,
		Log:        log,
		RunID:      runID,
		Console:    console.New(in, out),
		HTTPClient: httpClient,
		API:        api,
		Simulator:  services.NewSimulator(api, o.sleeper, out, log),
		Extractors: extractors.Default(),
		Validator:  validation.New(),
	}
}

// Run executes one interactive session: read the pasted request, gather the
// remaining parameters and run the chosen workflow.
func (a *App) Run(ctx context.Context) error {
	c := a.Console

	c.Banner("Video Progress Simulator")
	c.Println("\nPaste the curl command copied from the browser developer tools")
	c.Println("(it must be an updKcnrSfydNew request)")
	c.Println("Press Enter twice when done:")
	c.Println()

	text, err := c.ReadPaste()
	if err != nil {
		return err
	}

	extracted := a.Extractors.Extract(extractors.Normalize(text))
	if !a.reportExtracted(extracted) {
		return ErrMissingParams
	}

	params := types.SessionParams{
		Token:     *extracted.Token,
		Cookie:    *extracted.Cookie,
		ContentID: *extracted.ContentID,
		CourseID:  *extracted.CourseID,
		DirID:     *extracted.DirID,
	}

	if present(extracted.LearnerID) {
		params.LearnerID = *extracted.LearnerID
		c.Printf("  YHDM (from curl): %s\n", params.LearnerID)
	} else {
		yhdm, err := c.Prompt("\nEnter learner id (yhdm): ")
		if err != nil {
			return err
		}
		if yhdm == "" {
			c.Println("Error: learner id must not be empty")
			return ErrEmptyLearnerID
		}
		params.LearnerID = yhdm
	}

	answer, err := c.Prompt("\nEnter the total video duration in seconds: ")
	if err != nil {
		return err
	}
	if params.Duration, err = parseNumber(answer); err != nil {
		c.Println("Error: video duration must be a number")
		return err
	}
	if err := a.Validator.Validate(params); err != nil {
		c.Printf("Error: %v\n", err)
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	c.Println("\nSelect mode:")
	c.Println("1. Normal simulation (report progress at playback speed)")
	c.Println("2. Fast completion (mark as watched immediately)")

	mode, err := c.Prompt("\nEnter option (1/2): ")
	if err != nil {
		return err
	}

	sess := params.Session()
	a.Log.Info("session ready", "mode", mode, "kcnrid", sess.ContentID, "kcid", sess.CourseID, "duration", params.Duration)

	var result *types.RunResult
	switch mode {
	case ModeSimulate:
		playbackOpts, err := a.promptPlayback()
		if err != nil {
			return err
		}
		result, err = a.Simulator.SimulateWatching(ctx, sess, params.Duration, playbackOpts)
		if err != nil {
			return err
		}
	case ModeFast:
		result, err = a.Simulator.FastComplete(ctx, sess, params.Duration)
		if err != nil {
			return err
		}
	default:
		c.Println("Invalid option")
		return ErrInvalidMode
	}

	a.Log.Info("session finished",
		"completed", result.Completed,
		"updates", result.Updates,
		"failures", result.Failures)
	return nil
}

// reportExtracted prints what was recovered from the paste and reports
// whether everything required is present.
func (a *App) reportExtracted(e types.Extracted) bool {
	c := a.Console
	required := []struct {
		label string
		value *string
	}{
		{"Token", e.Token},
		{"Cookie", e.Cookie},
		{"KCNRID", e.ContentID},
		{"KCID", e.CourseID},
		{"SSMLID", e.DirID},
	}

	ok := true
	for _, r := range required {
		ok = ok && present(r.value)
	}

	if !ok {
		c.Println("\nError: could not extract every required parameter from the curl command")
		for _, r := range required {
			c.Printf("%s: %s\n", r.label, console.Check(present(r.value)))
		}
		return false
	}

	c.Println("\n" + console.Check(true) + " Parsed parameters:")
	c.Printf("  Token: %s...\n", truncate(*e.Token, 50))
	c.Printf("  Cookie: %s\n", *e.Cookie)
	c.Printf("  KCNRID: %s\n", *e.ContentID)
	c.Printf("  KCID: %s\n", *e.CourseID)
	c.Printf("  SSMLID: %s\n", *e.DirID)
	return true
}

func (a *App) promptPlayback() (types.PlaybackOptions, error) {
	c := a.Console
	var opts types.PlaybackOptions

	answer, err := c.PromptDefault("Enter playback speed multiplier (e.g. 1.0, 2.0): ", DefaultSpeed)
	if err != nil {
		return opts, err
	}
	if opts.Speed, err = parseNumber(answer); err != nil {
		c.Println("Error: playback speed must be a number")
		return opts, err
	}

	answer, err = c.PromptDefault("Enter progress update interval in seconds (default 5): ", DefaultInterval)
	if err != nil {
		return opts, err
	}
	if opts.Interval, err = parseNumber(answer); err != nil {
		c.Println("Error: update interval must be a number")
		return opts, err
	}

	if err := a.Validator.Validate(opts); err != nil {
		c.Printf("Error: %v\n", err)
		return opts, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	return opts, nil
}

// parseNumber accepts finite decimal numbers only.
func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return v, nil
}

func present(v *string) bool {
	return v != nil && *v != ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
