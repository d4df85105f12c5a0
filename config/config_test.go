package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestLoadShortForm(t *testing.T) {
	dir := t.TempDir()
	p := writeConfig(t, dir, "shunt.json", `{"commands": {"build": ["echo", "hi"]}}`)

	f, err := Load(p)
	require.NoError(t, err)
	require.Len(t, f.Commands, 1)

	c := f.Commands[0]
	assert.Equal(t, "build", c.Name)
	assert.Equal(t, []string{"echo", "hi"}, c.Argv)
	assert.Equal(t, TTYAuto, c.TTY)
	assert.Equal(t, dir, c.Workdir)
	assert.Empty(t, c.Env)
}

func TestLoadLongForm(t *testing.T) {
	dir := t.TempDir()
	p := writeConfig(t, dir, "shunt.json", `{
		"commands": {
			"serve": {
				"argv": ["run", "--port", "8080"],
				"tty": "always",
				"workdir": "sub",
				"env": {"FOO": "bar", "BAZ": null}
			}
		}
	}`)

	f, err := Load(p)
	require.NoError(t, err)
	require.Len(t, f.Commands, 1)

	c := f.Commands[0]
	assert.Equal(t, []string{"run", "--port", "8080"}, c.Argv)
	assert.Equal(t, TTYAlways, c.TTY)
	assert.Equal(t, filepath.Join(dir, "sub"), c.Workdir)

	require.Contains(t, c.Env, "FOO")
	require.NotNil(t, c.Env["FOO"])
	assert.Equal(t, "bar", *c.Env["FOO"])
	require.Contains(t, c.Env, "BAZ")
	assert.Nil(t, c.Env["BAZ"])
}

func TestLoadAbsoluteWorkdirKept(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	p := writeConfig(t, dir, "shunt.json", `{"commands": {"a": {"argv": ["true"], "workdir": `+quote(other)+`}}}`)

	f, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, other, f.Commands[0].Workdir)
}

func quote(s string) string {
	return `"` + s + `"`
}

func TestLoadJSONWithComments(t *testing.T) {
	dir := t.TempDir()
	p := writeConfig(t, dir, "shunt.jsonc", `{
		// watch the frontend
		"commands": {
			"watch": ["npm", "run", "watch"], // trailing comma below is fine too
		},
	}`)

	f, err := Load(p)
	require.NoError(t, err)
	require.Len(t, f.Commands, 1)
	assert.Equal(t, []string{"npm", "run", "watch"}, f.Commands[0].Argv)
}

func TestLoadJSON5AcceptsCommentSubsetOnly(t *testing.T) {
	dir := t.TempDir()

	p := writeConfig(t, dir, "shunt.json5", `{
		// comments and trailing commas work under the .json5 extension
		"commands": {
			"build": ["make"],
		},
	}`)
	f, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"make"}, f.Commands[0].Argv)

	// JSON5 constructs beyond that subset are rejected.
	p = writeConfig(t, dir, "unquoted.json5", `{commands: {build: ['make']}}`)
	_, err = Load(p)
	require.ErrorContains(t, err, "parsing JSON config")
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	p := writeConfig(t, dir, "shunt.yaml", `
commands:
  build: ["echo", "hi"]
  serve:
    argv: [run]
    tty: never
    env:
      FOO: bar
      BAZ: null
`)

	f, err := Load(p)
	require.NoError(t, err)
	require.Len(t, f.Commands, 2)

	build, serve := f.Commands[0], f.Commands[1]
	assert.Equal(t, "build", build.Name)
	assert.Equal(t, TTYAuto, build.TTY)
	assert.Equal(t, "serve", serve.Name)
	assert.Equal(t, TTYNever, serve.TTY)
	require.NotNil(t, serve.Env["FOO"])
	assert.Equal(t, "bar", *serve.Env["FOO"])
	require.Contains(t, serve.Env, "BAZ")
	assert.Nil(t, serve.Env["BAZ"])
}

func TestLoadUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	p := writeConfig(t, dir, "shunt.toml", `commands = {}`)

	_, err := Load(p)
	require.ErrorContains(t, err, "unknown config file extension")
}

func TestLoadNoExtension(t *testing.T) {
	dir := t.TempDir()
	p := writeConfig(t, dir, "Procfile", `{}`)

	_, err := Load(p)
	require.ErrorContains(t, err, "no extension")
}

func TestLoadNoCommands(t *testing.T) {
	dir := t.TempDir()
	p := writeConfig(t, dir, "shunt.json", `{"commands": {}}`)

	_, err := Load(p)
	require.ErrorContains(t, err, "no commands")
}

func TestLoadBadTTYModesAggregated(t *testing.T) {
	dir := t.TempDir()
	p := writeConfig(t, dir, "shunt.json", `{
		"commands": {
			"a": {"argv": ["true"], "tty": "sometimes"},
			"b": {"argv": ["true"], "tty": "maybe"}
		}
	}`)

	_, err := Load(p)
	require.Error(t, err)
	assert.ErrorContains(t, err, `command "a"`)
	assert.ErrorContains(t, err, `command "b"`)
}

func TestLoadEmptyArgvIsNotAConfigError(t *testing.T) {
	// An empty argv is rejected at launch, per command, so one bad command
	// doesn't prevent the others from loading and running.
	dir := t.TempDir()
	p := writeConfig(t, dir, "shunt.json", `{"commands": {"bad": [], "good": ["true"]}}`)

	f, err := Load(p)
	require.NoError(t, err)
	require.Len(t, f.Commands, 2)
	assert.Empty(t, f.Commands[0].Argv)
}

func TestLoadCommandsSortedByName(t *testing.T) {
	dir := t.TempDir()
	p := writeConfig(t, dir, "shunt.json", `{"commands": {"zeta": ["true"], "alpha": ["true"], "mid": ["true"]}}`)

	f, err := Load(p)
	require.NoError(t, err)
	var names []string
	for _, c := range f.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestFindFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0755))
	want := writeConfig(t, root, "shunt.json", `{"commands": {"a": ["true"]}}`)

	got, err := FindFile(nested)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindFileNearestConfigWinsAcrossFormats(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "app")
	require.NoError(t, os.MkdirAll(nested, 0755))

	writeConfig(t, root, "shunt.json", `{"commands": {"a": ["true"]}}`)
	want := writeConfig(t, nested, "shunt.yaml", "commands:\n  a: [\"true\"]\n")

	got, err := FindFile(nested)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindFileMissing(t *testing.T) {
	// An empty temp dir whose parents don't contain a shunt config would
	// be flaky to assert on, so probe from the filesystem root where the
	// walk terminates immediately.
	_, err := FindFile(string(filepath.Separator))
	if err == nil {
		t.Skip("a shunt config exists at the filesystem root")
	}
	require.ErrorContains(t, err, "no shunt.json found")
}
