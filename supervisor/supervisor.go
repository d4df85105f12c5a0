package supervisor

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/shunt-sh/shunt/config"
)

// Supervisor launches commands and runs them to completion, interleaving
// their output on a shared console. A Supervisor is single-use: build one
// with New, call Run once.
type Supervisor struct {
	log     *zap.SugaredLogger
	console *console
	colors  *colorCycle

	consoleWriter io.Writer
	colorOverride *bool

	// stdoutIsTTY records whether the console writer is a terminal. It
	// drives both tty-mode auto resolution and default coloring.
	stdoutIsTTY bool
}

type Option func(s *Supervisor)

func WithLogger(l *zap.Logger) Option {
	return func(s *Supervisor) {
		s.log = l.Named("shunt").Sugar()
	}
}

// WithConsoleWriter redirects the console (child output and exit reports)
// away from os.Stdout. A non-terminal writer disables coloring unless
// WithColor overrides it.
func WithConsoleWriter(w io.Writer) Option {
	return func(s *Supervisor) {
		s.consoleWriter = w
	}
}

// WithColor forces prefix coloring on or off regardless of whether the
// console writer is a terminal. It does not affect pty allocation.
func WithColor(enabled bool) Option {
	return func(s *Supervisor) {
		s.colorOverride = &enabled
	}
}

func New(opts ...Option) (*Supervisor, error) {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	s := &Supervisor{
		log:           logger.Named("shunt").Sugar(),
		consoleWriter: os.Stdout,
	}
	for _, o := range opts {
		o(s)
	}

	s.stdoutIsTTY = writerIsTerminal(s.consoleWriter)
	colored := s.stdoutIsTTY
	if s.colorOverride != nil {
		colored = *s.colorOverride
	}
	s.console = newConsole(s.consoleWriter, colored)
	s.colors = newColorCycle()
	return s, nil
}

// Run launches every spec, drains all output, and waits for every child to
// exit. A command that fails to launch is logged and skipped; its siblings
// still run. Children's own exit codes never make Run fail.
func (s *Supervisor) Run(specs []config.CommandSpec) error {
	relay := s.startSignalRelay()
	defer relay.stop()

	var handles []*handle
	for _, spec := range specs {
		h, err := s.launch(spec)
		if err != nil {
			s.log.Errorf("launching %q: %s", spec.Name, err)
			continue
		}
		s.log.Debugf("launched %q (pid %d)", h.info.name, h.cmd.Process.Pid)
		relay.track(h.info.name, h.cmd.Process.Pid)
		handles = append(handles, h)
	}

	var wg sync.WaitGroup
	for _, h := range handles {
		h := h
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.awaitExit(relay, h)
		}()
		go func() {
			defer wg.Done()
			s.drainOutput(h.info, h.output)
		}()
	}
	wg.Wait()
	return nil
}

// awaitExit reaps the child and reports its exit status on the console.
// Wait errors are reported the same way; they never abort the run.
func (s *Supervisor) awaitExit(relay *signalRelay, h *handle) {
	defer relay.untrack(h.info.name)

	err := h.cmd.Wait()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			s.console.printf("%s finished: %s", h.info.name, h.cmd.ProcessState)
			return
		}
		s.console.printf("%s failed to be waited on: %s", h.info.name, err)
		return
	}
	s.console.printf("%s finished: %s", h.info.name, h.cmd.ProcessState)
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
