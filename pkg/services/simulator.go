// Package services implements the watching workflows that drive the SPOC API.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"spoc-progress/pkg/interfaces"
	"spoc-progress/pkg/logging"
	"spoc-progress/pkg/playback"
	"spoc-progress/pkg/types"
)

// ErrInitFailed is returned when the content item could not be registered.
// No progress is reported in that case.
var ErrInitFailed = errors.New("initialization failed")

// TimerSleeper pauses on the wall clock.
type TimerSleeper struct{}

// Sleep blocks for d or until ctx is done.
func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Simulator runs one watching workflow at a time against a ProgressAPI.
type Simulator struct {
	api     interfaces.ProgressAPI
	sleeper interfaces.Sleeper
	out     io.Writer
	log     *logging.Logger
}

// NewSimulator creates a simulator. Operator-facing lines are written to out.
func NewSimulator(api interfaces.ProgressAPI, sleeper interfaces.Sleeper, out io.Writer, log *logging.Logger) *Simulator {
	if sleeper == nil {
		sleeper = TimerSleeper{}
	}
	if out == nil {
		out = io.Discard
	}
	return &Simulator{
		api:     api,
		sleeper: sleeper,
		out:     out,
		log:     log.WithComponent("simulator"),
	}
}

// SimulateWatching reports progress step by step as if the video were
// playing at opts.Speed, sending one update every opts.Interval seconds.
// It always finishes with a 100% update at the nominal duration once the
// simulated position reaches the end.
func (s *Simulator) SimulateWatching(ctx context.Context, sess types.Session, duration float64, opts types.PlaybackOptions) (*types.RunResult, error) {
	fmt.Fprintf(s.out, "\nStarting simulated viewing...\n")
	fmt.Fprintf(s.out, "Video duration: %gs\n", duration)
	fmt.Fprintf(s.out, "Playback speed: %gx\n", opts.Speed)
	fmt.Fprintf(s.out, "Update interval: %gs\n", opts.Interval)
	fmt.Fprintln(s.out, strings.Repeat("-", 50))

	result := &types.RunResult{}
	if err := s.prepare(ctx, sess, result); err != nil {
		return result, err
	}

	state := playback.NewState(duration, opts.Speed, opts.Interval)
	pause := time.Duration(opts.Interval * float64(time.Second))

	s.log.Info("simulation started",
		"duration", duration,
		"speed", opts.Speed,
		"interval", opts.Interval,
		"max_iterations", playback.MaxIterations(duration, opts.Speed, opts.Interval))

	for state.Watching() {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		percent := state.Percent()
		elapsed := state.Elapsed()
		fullyRead := types.NotRead
		if state.Complete() {
			fullyRead = types.FullyRead
		}

		if !s.api.SaveUser(ctx, sess) {
			result.Failures++
		}

		if !s.sendProgress(ctx, sess, percent, elapsed, fullyRead, result) {
			fmt.Fprintln(s.out, "Progress update failed, continuing...")
		}

		if state.Complete() {
			fmt.Fprintln(s.out, "\nVideo finished!")
			break
		}

		if err := s.sleeper.Sleep(ctx, pause); err != nil {
			return result, err
		}
		state.Advance()
	}

	// Sent even when the last in-loop update already reported 100%.
	result.FinalConfirmed = s.sendProgress(ctx, sess, 100, duration, types.FullyRead, result)

	result.Completed = true
	s.log.Info("simulation finished",
		"updates", result.Updates,
		"failures", result.Failures,
		"steps", state.Steps())
	return result, nil
}

// FastComplete marks the video as fully watched with a single update.
// Completed reports whether that update succeeded.
func (s *Simulator) FastComplete(ctx context.Context, sess types.Session, duration float64) (*types.RunResult, error) {
	fmt.Fprintf(s.out, "\nFast completion mode...\n")
	fmt.Fprintf(s.out, "Video duration: %gs\n", duration)
	fmt.Fprintln(s.out, strings.Repeat("-", 50))

	result := &types.RunResult{}
	if err := s.prepare(ctx, sess, result); err != nil {
		return result, err
	}

	if !s.api.SaveUser(ctx, sess) {
		result.Failures++
	}

	result.Completed = s.sendProgress(ctx, sess, 100, duration, types.FullyRead, result)
	result.FinalConfirmed = result.Completed

	if result.Completed {
		fmt.Fprintln(s.out, "\nVideo marked as complete!")
	} else {
		fmt.Fprintln(s.out, "\nMarking failed!")
	}
	return result, nil
}

// prepare runs the steps shared by both workflows: registering the content
// access, which must succeed, then the best-effort online count.
func (s *Simulator) prepare(ctx context.Context, sess types.Session, result *types.RunResult) error {
	if !s.api.AddRecord(ctx, sess, types.DefaultContentType) {
		result.Failures++
		fmt.Fprintln(s.out, "Initialization failed")
		return ErrInitFailed
	}

	if !s.api.UpdateOnlineCount(ctx, sess) {
		result.Failures++
	}
	return nil
}

func (s *Simulator) sendProgress(ctx context.Context, sess types.Session, percent int, elapsed float64, fullyRead string, result *types.RunResult) bool {
	result.Updates++
	result.FinalPercent = percent
	result.FinalElapsed = elapsed

	if !s.api.UpdateProgress(ctx, sess, percent, elapsed, fullyRead) {
		result.Failures++
		return false
	}
	fmt.Fprintf(s.out, "Progress updated: %d%% (%.2fs)\n", percent, elapsed)
	return true
}
