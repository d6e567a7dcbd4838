package textextract

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	stdout []byte
	stderr []byte
	err    error

	name        string
	args        []string
	hasDeadline bool
	fileBody    []byte
}

func (s *stubRunner) Run(ctx context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	s.name = name
	s.args = args
	_, s.hasDeadline = ctx.Deadline()
	if len(args) >= 2 {
		s.fileBody, _ = os.ReadFile(args[len(args)-2])
	}
	return s.stdout, s.stderr, s.err
}

func TestSplitPages(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want []string
	}{
		{"empty", "", nil},
		{"one page", "page one\f", []string{"page one"}},
		{"two pages", "page one\fpage two\f", []string{"page one", "page two"}},
		{"no trailing form feed", "page one\fpage two", []string{"page one", "page two"}},
		{"blank middle page", "a\f\fc\f", []string{"a", "", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitPages(tt.out))
		})
	}
}

func TestExtractPages(t *testing.T) {
	runner := &stubRunner{stdout: []byte("Acme Employee Benefits Plan\fMinimum Essential Coverage? Yes\f")}
	px := NewPDFExtractor(WithRunner(runner), WithBinary("/opt/poppler/pdftotext"))

	pages, err := px.ExtractPages(context.Background(), "/data/sbc.pdf")
	require.NoError(t, err)

	assert.Equal(t, []string{"Acme Employee Benefits Plan", "Minimum Essential Coverage? Yes"}, pages)
	assert.Equal(t, "/opt/poppler/pdftotext", runner.name)
	assert.Equal(t, []string{"-layout", "-enc", "UTF-8", "-eol", "unix", "/data/sbc.pdf", "-"}, runner.args)
	assert.True(t, runner.hasDeadline)
}

func TestExtractPagesWithoutTimeout(t *testing.T) {
	runner := &stubRunner{}
	px := NewPDFExtractor(WithRunner(runner), WithTimeout(0))

	pages, err := px.ExtractPages(context.Background(), "x.pdf")
	require.NoError(t, err)
	assert.Empty(t, pages)
	assert.False(t, runner.hasDeadline)
	assert.Equal(t, DefaultBinary, runner.name)
}

func TestExtractPagesError(t *testing.T) {
	exitErr := errors.New("exit status 1")

	px := NewPDFExtractor(WithRunner(&stubRunner{err: exitErr, stderr: []byte("Syntax Error: Couldn't find trailer dictionary\n")}))
	_, err := px.ExtractPages(context.Background(), "broken.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, exitErr)
	assert.Contains(t, err.Error(), "broken.pdf")
	assert.Contains(t, err.Error(), "Couldn't find trailer dictionary")

	px = NewPDFExtractor(WithRunner(&stubRunner{err: exitErr}))
	_, err = px.ExtractPages(context.Background(), "broken.pdf")
	assert.EqualError(t, err, "pdftotext broken.pdf: exit status 1")
}

func TestExtractPagesFromBytes(t *testing.T) {
	runner := &stubRunner{stdout: []byte("only page\f")}
	px := NewPDFExtractor(WithRunner(runner), WithTimeout(time.Second))

	pages, err := px.ExtractPagesFromBytes(context.Background(), []byte("%PDF-1.7 body"))
	require.NoError(t, err)
	assert.Equal(t, []string{"only page"}, pages)
	assert.Equal(t, []byte("%PDF-1.7 body"), runner.fileBody)

	tmpPath := runner.args[len(runner.args)-2]
	assert.Regexp(t, `\.pdf$`, tmpPath)
	_, statErr := os.Stat(tmpPath)
	assert.True(t, os.IsNotExist(statErr), "temp file should be removed")
}

func TestExtractPagesFromBytesEmpty(t *testing.T) {
	runner := &stubRunner{}
	_, err := NewPDFExtractor(WithRunner(runner)).ExtractPagesFromBytes(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoPages)
	assert.Empty(t, runner.name)
}
