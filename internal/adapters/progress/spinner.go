package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/arcvault/uups-cli/internal/domain/config"
	"github.com/arcvault/uups-cli/internal/usecase"
)

// SpinnerSink shows a spinner while deployments wait on receipts and
// verification waits on the explorer. Without a terminal it prints one line per stage.
type SpinnerSink struct {
	out         io.Writer
	interactive bool
	spinner     *spinner.Spinner
	stage       string
	message     string
	stageStart  time.Time
}

// NewSpinnerSink creates a sink writing to out
func NewSpinnerSink(out io.Writer, interactive bool) *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false

	return &SpinnerSink{
		out:         out,
		interactive: interactive,
		spinner:     s,
	}
}

// NewSink picks the progress sink for the current run. Structured output
// gets no progress at all so stdout stays machine readable.
func NewSink(cfg *config.RuntimeConfig) usecase.ProgressSink {
	if cfg.Output == config.OutputJSON || cfg.Output == config.OutputYAML {
		return NewNopSink()
	}
	return NewSpinnerSink(os.Stderr, !cfg.NonInteractive)
}

// OnProgress handles progress events
func (s *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	if event.Stage != s.stage {
		s.completeStage()
		s.stage = event.Stage
		s.stageStart = time.Now()
	}
	if event.Message != "" {
		s.message = event.Message
	}

	if !s.interactive {
		if event.Message != "" {
			fmt.Fprintf(s.out, "%s...\n", event.Message)
		}
		return
	}

	if event.Spinner {
		s.spinner.Suffix = " " + event.Message
		if !s.spinner.Active() {
			s.spinner.Start()
		}
	} else if s.spinner.Active() {
		s.spinner.Stop()
	}
}

// completeStage prints the finished stage with its duration
func (s *SpinnerSink) completeStage() {
	if s.stage == "" || s.stage == "done" || !s.interactive {
		return
	}
	if s.spinner.Active() {
		s.spinner.Stop()
	}
	fmt.Fprintf(s.out, "%s %s (%s)\n",
		color.New(color.FgGreen).Sprint("✓"),
		s.message,
		time.Since(s.stageStart).Round(time.Millisecond),
	)
}

// Info prints an info message
func (s *SpinnerSink) Info(message string) {
	s.pause(func() { color.New(color.FgCyan).Fprintln(s.out, message) })
}

// Error prints an error message
func (s *SpinnerSink) Error(message string) {
	s.pause(func() { color.New(color.FgRed).Fprintln(s.out, message) })
}

// pause stops the spinner around fn so lines are not overwritten
func (s *SpinnerSink) pause(fn func()) {
	wasActive := s.spinner.Active()
	if wasActive {
		s.spinner.Stop()
	}
	fn()
	if wasActive {
		s.spinner.Start()
	}
}

var _ usecase.ProgressSink = (*SpinnerSink)(nil)
