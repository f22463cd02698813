package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	main "github.com/fwojciec/penalty/cmd/penalty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allCommands = []string{"sync", "search", "excerpts", "status", "repair", "erase", "export", "import", "ask"}

// newTestMain returns a Main using a database and config file below a
// temporary directory.
func newTestMain(t *testing.T) *main.Main {
	t.Helper()
	dir := t.TempDir()
	m := main.NewMain()
	m.ConfigPath = filepath.Join(dir, "config.yaml")
	m.DBPath = filepath.Join(dir, "penalty.db")
	return m
}

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	helpOutput := stdout.String()
	for _, cmd := range allCommands {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
}

func TestCLI_SearchFlags(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	parser, err := kong.New(cli, kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"search", "bank fraud", "--mode", "all", "--from", "2020-01-01", "--page", "3"})
	require.NoError(t, err)

	assert.Equal(t, "bank fraud", cli.Search.Query)
	assert.Equal(t, "all", cli.Search.Mode)
	assert.Equal(t, "2020-01-01", cli.Search.From)
	assert.Equal(t, 3, cli.Search.Page)
	assert.Equal(t, 20, cli.Search.PerPage)
	assert.Equal(t, 10, cli.Search.Excerpts)
}

func TestMain_Run_HelpShowsKongOutput(t *testing.T) {
	t.Parallel()

	m := newTestMain(t)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--help"}, stdout, stderr)
	require.NoError(t, err)

	helpOutput := stdout.String()
	for _, cmd := range allCommands {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
	assert.Contains(t, helpOutput, "Usage:", "Help should have Kong-style Usage prefix")
	assert.Contains(t, helpOutput, "Flags:", "Help should have Kong-style Flags section")
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	m := newTestMain(t)

	stdout := &bytes.Buffer{}
	err := m.Run(context.Background(), nil, stdout, &bytes.Buffer{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestMain_Run_Status(t *testing.T) {
	t.Parallel()

	m := newTestMain(t)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"status"}, stdout, stderr)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Actions:       0")
	assert.Contains(t, stdout.String(), "Last sync:     never")
	assert.FileExists(t, m.DBPath)
}

func TestMain_Run_EraseRequiresForce(t *testing.T) {
	t.Parallel()

	m := newTestMain(t)

	stderr := &bytes.Buffer{}
	err := m.Run(context.Background(), []string{"erase"}, &bytes.Buffer{}, stderr)

	require.Error(t, err)
	assert.Contains(t, stderr.String(), "--force")
}

func TestMain_Run_InvalidConfig(t *testing.T) {
	t.Parallel()

	m := newTestMain(t)
	require.NoError(t, os.WriteFile(m.ConfigPath, []byte("sync:\n  max_age: soon\n"), 0644))

	stderr := &bytes.Buffer{}
	err := m.Run(context.Background(), []string{"status"}, &bytes.Buffer{}, stderr)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync.max_age")
	assert.Contains(t, stderr.String(), "PENALTY_CONFIG")
	assert.NoFileExists(t, m.DBPath)
}

func TestMain_Run_UnknownCommand(t *testing.T) {
	t.Parallel()

	m := newTestMain(t)

	err := m.Run(context.Background(), []string{"crawl"}, &bytes.Buffer{}, &bytes.Buffer{})

	require.Error(t, err)
	assert.NoFileExists(t, m.DBPath)
}
