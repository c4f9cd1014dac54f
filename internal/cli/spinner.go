package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a status line while an API call runs. A quiet spinner
// (--output json|yaml) never writes but still ends with its context.
type Spinner struct {
	message string
	out     io.Writer
	quiet   bool

	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	exited  chan struct{}
}

func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner that stops when ctx ends.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	inner, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		out:     statusOut,
		ctx:     inner,
		cancel:  cancel,
		exited:  make(chan struct{}),
	}
}

// Start begins the animation in a goroutine.
func (s *Spinner) Start() {
	s.started = true
	go s.run()
}

func (s *Spinner) run() {
	defer close(s.exited)
	if s.quiet {
		<-s.ctx.Done()
		return
	}

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	drawn := false
	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			if drawn {
				fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
			}
			return
		case <-ticker.C:
			frame := spinnerFrames[i%len(spinnerFrames)]
			fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
			drawn = true
		}
	}
}

// Stop ends the animation and returns once the line is cleared.
// It may be called more than once.
func (s *Spinner) Stop() {
	s.cancel()
	if s.started {
		<-s.exited
	}
}

func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}
