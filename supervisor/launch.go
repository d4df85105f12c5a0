package supervisor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/creack/pty"

	"github.com/shunt-sh/shunt/config"
)

var errEmptyCommand = errors.New("empty command")

// handle is a launched child. Its output transport is handed to exactly one
// drainOutput goroutine, and its cmd is waited on exactly once by awaitExit.
type handle struct {
	info   procInfo
	cmd    *exec.Cmd
	output *os.File
}

// launch starts the command described by spec. Depending on the resolved
// tty mode the child's stdout and stderr are either the slave side of a new
// pty (the master becomes the output transport) or the shared write end of
// a single pipe. Stdin is /dev/null either way, and the child gets its own
// process group so the relay can signal it as a unit.
func (s *Supervisor) launch(spec config.CommandSpec) (*handle, error) {
	if len(spec.Argv) == 0 {
		return nil, fmt.Errorf("command %q: %w", spec.Name, errEmptyCommand)
	}

	wrapTTY := false
	switch spec.TTY {
	case config.TTYAlways:
		wrapTTY = true
	case config.TTYAuto:
		wrapTTY = s.stdoutIsTTY
	}

	cmd := exec.Command(spec.Argv[0], spec.Argv[1:]...)
	cmd.Dir = spec.Workdir
	cmd.Env = mergeEnv(os.Environ(), spec.Env)
	// Stdin stays nil: os/exec opens /dev/null for the child.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var output *os.File
	if wrapTTY {
		ptmx, tts, err := pty.Open()
		if err != nil {
			return nil, fmt.Errorf("command %q: allocating pty: %w", spec.Name, err)
		}
		cmd.Stdout = tts
		cmd.Stderr = tts
		if err := cmd.Start(); err != nil {
			ptmx.Close()
			tts.Close()
			return nil, fmt.Errorf("command %q failed to spawn: %w", spec.Name, err)
		}
		// The child holds its own copies of the slave now.
		tts.Close()
		output = ptmx
	} else {
		r, w, err := os.Pipe()
		if err != nil {
			return nil, fmt.Errorf("command %q: allocating pipe: %w", spec.Name, err)
		}
		cmd.Stdout = w
		cmd.Stderr = w
		if err := cmd.Start(); err != nil {
			r.Close()
			w.Close()
			return nil, fmt.Errorf("command %q failed to spawn: %w", spec.Name, err)
		}
		w.Close()
		output = r
	}

	info := procInfo{name: spec.Name}
	if s.console.colored() {
		info.color = s.colors.assign()
	}

	return &handle{info: info, cmd: cmd, output: output}, nil
}

// mergeEnv applies overrides to the inherited environment: a nil value
// removes the variable, a non-nil value sets it. With no overrides it
// returns nil so os/exec inherits the environment untouched.
func mergeEnv(base []string, overrides map[string]*string) []string {
	if len(overrides) == 0 {
		return nil
	}
	env := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		name, _, _ := strings.Cut(kv, "=")
		if _, ok := overrides[name]; ok {
			continue
		}
		env = append(env, kv)
	}
	for name, value := range overrides {
		if value != nil {
			env = append(env, name+"="+*value)
		}
	}
	return env
}
