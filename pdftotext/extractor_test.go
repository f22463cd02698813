package pdftotext_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/fwojciec/penalty"
	"github.com/fwojciec/penalty/pdftotext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records the invocation and replays canned output.
type fakeRunner struct {
	name   string
	args   []string
	input  []byte
	stdout string
	stderr string
	err    error
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.name = name
	r.args = args
	if len(args) >= 2 {
		r.input, _ = os.ReadFile(args[len(args)-2])
	}
	return []byte(r.stdout), []byte(r.stderr), r.err
}

func TestExtractor_ExtractText(t *testing.T) {
	t.Parallel()

	pdf := []byte("%PDF-1.7\nbody")

	t.Run("runs pdftotext on a temporary copy", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{stdout: "page one\fpage two\n\f"}
		e := pdftotext.NewExtractor("/usr/bin/pdftotext", runner)

		text, err := e.ExtractText(context.Background(), pdf)

		require.NoError(t, err)
		assert.Equal(t, "page one\fpage two", text)
		assert.Equal(t, "/usr/bin/pdftotext", runner.name)
		assert.Equal(t, []string{"-enc", "UTF-8", "-eol", "unix"}, runner.args[:4])
		assert.Equal(t, "-", runner.args[len(runner.args)-1])
		assert.Equal(t, pdf, runner.input)

		_, statErr := os.Stat(runner.args[len(runner.args)-2])
		assert.True(t, os.IsNotExist(statErr), "temporary file is removed")
	})

	t.Run("defaults to pdftotext on PATH", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{stdout: "text"}
		_, err := pdftotext.NewExtractor("", runner).ExtractText(context.Background(), pdf)
		require.NoError(t, err)
		assert.Equal(t, pdftotext.DefaultPath, runner.name)
	})

	t.Run("rejects input that is not a PDF", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{}
		_, err := pdftotext.NewExtractor("", runner).ExtractText(context.Background(), []byte("<html>error page</html>"))
		assert.Equal(t, penalty.EINVALID, penalty.ErrorCode(err))
		assert.Empty(t, runner.name, "command is not run")
	})

	t.Run("reports command failures with stderr", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{stderr: "Syntax Error: Couldn't find trailer dictionary", err: errors.New("exit status 1")}
		_, err := pdftotext.NewExtractor("", runner).ExtractText(context.Background(), pdf)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "trailer dictionary")
	})
}
