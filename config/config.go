// Package config loads shunt configuration files and turns them into
// validated command specs for the supervisor. Supported formats are JSON
// and YAML, selected by file extension. The .json, .json5, and .jsonc
// extensions all get the same parser, which extends strict JSON with
// comments and trailing commas only; JSON5 constructs beyond that subset
// (unquoted keys, single-quoted strings) are rejected.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/shunt-sh/shunt/internal/files"
)

// TTYMode controls whether a command runs under a pseudo-terminal.
type TTYMode string

const (
	// TTYAuto allocates a pty only when shunt's own stdout is a terminal.
	TTYAuto TTYMode = "auto"
	// TTYAlways allocates a pty unconditionally.
	TTYAlways TTYMode = "always"
	// TTYNever pipes the command's output instead.
	TTYNever TTYMode = "never"
)

// CommandSpec describes one command to supervise. It is immutable once
// built; the supervisor never writes to it.
type CommandSpec struct {
	// Name is the unique key for the command, used as its output prefix.
	Name string
	// Argv is the command line; Argv[0] is the executable. An empty Argv
	// passes validation here and is rejected at launch, so that one bad
	// command does not stop its siblings from being checked and run.
	Argv []string
	// Workdir is the absolute directory the command starts in.
	Workdir string
	TTY     TTYMode
	// Env maps variable names to overrides. A nil value removes the
	// variable from the inherited environment; a non-nil value sets it.
	Env map[string]*string
}

// File is a loaded configuration file.
type File struct {
	// Path is the absolute path the file was read from.
	Path string
	// Dir is Path's directory; relative workdirs resolve against it and
	// the CLI chdirs here before supervision starts.
	Dir string
	// Commands is sorted by name, which fixes launch (and therefore
	// color-assignment) order for a given file.
	Commands []CommandSpec
}

// DefaultNames are the file names FindFile probes for, in priority order.
var DefaultNames = []string{"shunt.json", "shunt.json5", "shunt.jsonc", "shunt.yaml", "shunt.yml"}

// Load reads and validates the config file at path.
func Load(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path %q: %w", path, err)
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var doc document
	switch ext := strings.ToLower(filepath.Ext(abs)); ext {
	case ".json", ".json5", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(raw), &doc); err != nil {
			return nil, fmt.Errorf("parsing JSON config %q: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parsing YAML config %q: %w", path, err)
		}
	case "":
		return nil, fmt.Errorf("config file %q has no extension", path)
	default:
		return nil, fmt.Errorf("unknown config file extension %q", ext)
	}

	if len(doc.Commands) == 0 {
		return nil, errors.New("config declares no commands")
	}

	dir := filepath.Dir(abs)
	names := make([]string, 0, len(doc.Commands))
	for name := range doc.Commands {
		names = append(names, name)
	}
	sort.Strings(names)

	f := &File{Path: abs, Dir: dir}
	var errs error
	for _, name := range names {
		spec, err := doc.Commands[name].spec(name, dir)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		f.Commands = append(f.Commands, spec)
	}
	if errs != nil {
		return nil, errs
	}
	return f, nil
}

// FindFile walks upward from dir looking for a config file with one of the
// DefaultNames, checking all names in each directory before its parent so
// the nearest config wins regardless of format. It returns an error if the
// filesystem root is reached without a match.
func FindFile(dir string) (string, error) {
	if p := files.FindUp(DefaultNames, dir); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("no %s found in %s or any parent directory", DefaultNames[0], dir)
}

type document struct {
	Commands map[string]rawCommand `json:"commands" yaml:"commands"`
}

// rawCommand accepts either the short form (a bare argv array) or the long
// form (an object with argv, tty, workdir, and env keys).
type rawCommand struct {
	Argv    []string
	TTY     string
	Workdir string
	Env     map[string]*string
}

type longForm struct {
	Argv    []string           `json:"argv" yaml:"argv"`
	TTY     string             `json:"tty" yaml:"tty"`
	Workdir string             `json:"workdir" yaml:"workdir"`
	Env     map[string]*string `json:"env" yaml:"env"`
}

func (r *rawCommand) UnmarshalJSON(b []byte) error {
	var argv []string
	if err := json.Unmarshal(b, &argv); err == nil {
		r.Argv = argv
		return nil
	}
	var lf longForm
	if err := json.Unmarshal(b, &lf); err != nil {
		return fmt.Errorf("command must be an argv array or an object: %w", err)
	}
	r.Argv, r.TTY, r.Workdir, r.Env = lf.Argv, lf.TTY, lf.Workdir, lf.Env
	return nil
}

func (r *rawCommand) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		return node.Decode(&r.Argv)
	}
	var lf longForm
	if err := node.Decode(&lf); err != nil {
		return fmt.Errorf("command must be an argv array or an object: %w", err)
	}
	r.Argv, r.TTY, r.Workdir, r.Env = lf.Argv, lf.TTY, lf.Workdir, lf.Env
	return nil
}

func (r rawCommand) spec(name, configDir string) (CommandSpec, error) {
	tty, err := parseTTYMode(r.TTY)
	if err != nil {
		return CommandSpec{}, fmt.Errorf("command %q: %w", name, err)
	}

	workdir := r.Workdir
	switch {
	case workdir == "":
		workdir = configDir
	case !filepath.IsAbs(workdir):
		workdir = filepath.Join(configDir, workdir)
	}

	return CommandSpec{
		Name:    name,
		Argv:    r.Argv,
		Workdir: workdir,
		TTY:     tty,
		Env:     r.Env,
	}, nil
}

func parseTTYMode(s string) (TTYMode, error) {
	switch strings.ToLower(s) {
	case "", string(TTYAuto):
		return TTYAuto, nil
	case string(TTYAlways):
		return TTYAlways, nil
	case string(TTYNever):
		return TTYNever, nil
	default:
		return "", fmt.Errorf("invalid tty mode %q (want auto, always, or never)", s)
	}
}
