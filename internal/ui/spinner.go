package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/mattn/go-isatty"
)

// SimpleSpinner draws a spinner on a single terminal line until stopped.
type SimpleSpinner struct {
	out      io.Writer
	message  string
	spinner  spinner.Spinner
	interval time.Duration
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewConnectionSpinner creates a spinner for network operations (Globe style).
func NewConnectionSpinner(out io.Writer, message string) *SimpleSpinner {
	return &SimpleSpinner{
		out:      out,
		message:  message,
		spinner:  spinner.Globe,
		interval: 180 * time.Millisecond,
		done:     make(chan struct{}),
	}
}

func (s *SimpleSpinner) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		frames := s.spinner.Frames
		for i := 0; ; i++ {
			fmt.Fprintf(s.out, "\r%s %s", SpinnerStyle.Render(frames[i%len(frames)]), s.message)
			select {
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop halts the spinner and clears its line. Safe to call more than once.
func (s *SimpleSpinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		fmt.Fprint(s.out, "\r\033[K")
	})
}

// RunConnectionSpinner starts a spinner on stderr and returns its stop
// function. Nothing is drawn when stderr is not a terminal.
func RunConnectionSpinner(message string) func() {
	return runSpinner(os.Stderr, isTerminal(os.Stderr), message)
}

func runSpinner(out io.Writer, tty bool, message string) func() {
	if !tty {
		return func() {}
	}
	sp := NewConnectionSpinner(out, message)
	sp.Start()
	return sp.Stop
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
