package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"sbc-validator-backend/extraction"
	"sbc-validator-backend/textextract"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type fileResult struct {
	File string `json:"file"`
	extraction.Result
	Analysis *extraction.Analysis `json:"analysis,omitempty"`
}

// textFiles reads already-extracted text; pages are separated by form feeds
type textFiles struct{}

func (textFiles) ExtractPages(_ context.Context, path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return textextract.SplitPages(string(data)), nil
}

func (textFiles) ExtractPagesFromBytes(_ context.Context, data []byte) ([]string, error) {
	return textextract.SplitPages(string(data)), nil
}

type batch struct {
	engine      *extraction.Engine
	pages       extraction.PageExtractor
	concurrency int
	verbose     bool
}

func newBatch(pages extraction.PageExtractor, concurrency int, verbose bool) *batch {
	if concurrency < 1 {
		concurrency = 1
	}
	return &batch{
		engine:      extraction.NewEngine(extraction.WithPageExtractor(pages)),
		pages:       pages,
		concurrency: concurrency,
		verbose:     verbose,
	}
}

// run processes every path and keeps results in input order. A document that
// fails is reported in its result; only cancellation stops the batch.
func (b *batch) run(ctx context.Context, paths []string) ([]fileResult, error) {
	results := make([]fileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = b.one(gctx, path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (b *batch) one(ctx context.Context, path string) fileResult {
	if !b.verbose {
		return fileResult{File: path, Result: b.engine.ProcessFile(ctx, path)}
	}

	pages, err := b.pages.ExtractPages(ctx, path)
	if err != nil {
		return fileResult{File: path, Result: extraction.Failure(fmt.Errorf("extract text: %w", err))}
	}
	if extraction.NewDocumentText(pages).Blank() {
		return fileResult{File: path, Result: extraction.Failure(extraction.ErrNoExtractableText)}
	}
	analysis := b.engine.Analyze(pages)
	return fileResult{File: path, Result: analysis.Result, Analysis: &analysis}
}

func runExtract(cmd *cobra.Command, args []string) error {
	var pages extraction.PageExtractor = textFiles{}
	if !flags.text {
		pages = textextract.NewPDFExtractor(
			textextract.WithBinary(flags.binary),
			textextract.WithTimeout(flags.timeout),
		)
	}

	results, err := newBatch(pages, flags.concurrency, flags.verbose).run(cmd.Context(), args)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}
