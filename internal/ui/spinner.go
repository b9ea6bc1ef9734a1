package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerFrame returns the frame for tick i.
func spinnerFrame(i int) string {
	return spinnerFrames[i%len(spinnerFrames)]
}

// Spinner animates a loading line on a writer. It is used by the headless
// mint path; the TUI animates through tick messages instead.
type Spinner struct {
	w       io.Writer
	mu      sync.Mutex
	msg     string
	started bool
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, msg string) *Spinner {
	return &Spinner{
		w:    w,
		msg:  msg,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// SetMessage replaces the text next to the spinner.
func (s *Spinner) SetMessage(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

// Println prints line above the spinner without interrupting it.
func (s *Spinner) Println(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%-60s\r%s\n", "", line)
}

// Start begins the animation in a goroutine. Later calls do nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			s.mu.Lock()
			fmt.Fprintf(s.w, "\r%s  %s", StyleChain.Render(spinnerFrame(i)), s.msg)
			s.mu.Unlock()
			select {
			case <-s.stop:
				s.mu.Lock()
				fmt.Fprintf(s.w, "\r%-60s\r", "")
				s.mu.Unlock()
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop halts the spinner and waits for it to clear its line. Safe to call
// more than once, and on a spinner that never started.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.mu.Lock()
		started := s.started
		s.started = true
		s.mu.Unlock()

		close(s.stop)
		if started {
			<-s.done
		}
	})
}

// StopWithMsg halts the spinner and prints a final line.
func (s *Spinner) StopWithMsg(msg string) {
	s.Stop()
	fmt.Fprintln(s.w, msg)
}
