// Package textextract converts PDF documents to per-page plain text by
// shelling out to poppler's pdftotext.
package textextract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"sbc-validator-backend/extraction"
)

const (
	DefaultBinary  = "pdftotext"
	DefaultTimeout = 30 * time.Second
)

// ErrNoPages is returned for an empty input document
var ErrNoPages = errors.New("document is empty")

var _ extraction.PageExtractor = (*PDFExtractor)(nil)

// PDFExtractor runs pdftotext in layout mode and splits its output on form
// feeds, one entry per page.
type PDFExtractor struct {
	binary  string
	timeout time.Duration
	runner  Runner
	logger  *slog.Logger
}

// Option configures a PDFExtractor
type Option func(*PDFExtractor)

// WithBinary sets the pdftotext executable path
func WithBinary(path string) Option {
	return func(p *PDFExtractor) {
		if path != "" {
			p.binary = path
		}
	}
}

// WithTimeout bounds a single pdftotext run. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(p *PDFExtractor) {
		p.timeout = d
	}
}

func WithRunner(r Runner) Option {
	return func(p *PDFExtractor) {
		p.runner = r
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *PDFExtractor) {
		p.logger = l
	}
}

// NewPDFExtractor creates an extractor that calls pdftotext from PATH unless
// WithBinary says otherwise.
func NewPDFExtractor(opts ...Option) *PDFExtractor {
	p := &PDFExtractor{
		binary:  DefaultBinary,
		timeout: DefaultTimeout,
		runner:  ExecRunner{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ExtractPages returns the text of each page of the PDF at path, in order.
// A document that produces no output yields zero pages and no error.
func (p *PDFExtractor) ExtractPages(ctx context.Context, path string) ([]string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	stdout, stderr, err := p.runner.Run(ctx, p.binary, p.logger,
		"-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return nil, fmt.Errorf("%s %s: %w: %s", p.binary, path, err, msg)
		}
		return nil, fmt.Errorf("%s %s: %w", p.binary, path, err)
	}

	pages := SplitPages(string(stdout))
	p.logger.Debug("extracted pdf text", "path", path, "pages", len(pages))
	return pages, nil
}

// ExtractPagesFromBytes writes data to a temporary .pdf file, extracts it
// and removes the file.
func (p *PDFExtractor) ExtractPagesFromBytes(ctx context.Context, data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, ErrNoPages
	}

	tmp, err := os.CreateTemp("", "sbc-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	return p.ExtractPages(ctx, tmp.Name())
}

// SplitPages splits pdftotext output on form feeds. pdftotext ends every
// page with a form feed, so the empty segment after the last one is dropped.
func SplitPages(out string) []string {
	if out == "" {
		return nil
	}
	pages := strings.Split(out, "\f")
	if pages[len(pages)-1] == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}
