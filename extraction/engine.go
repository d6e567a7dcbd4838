package extraction

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNoPageExtractor   = errors.New("no page extractor configured")
	ErrNoExtractableText = errors.New("document has no extractable text")
)

// PageExtractor turns a paginated document into per-page plain text
type PageExtractor interface {
	ExtractPages(ctx context.Context, path string) ([]string, error)
	ExtractPagesFromBytes(ctx context.Context, data []byte) ([]string, error)
}

// Result is the outcome of processing one SBC document. On success every
// classification field is set; on failure only Error is.
type Result struct {
	Success                      bool   `json:"success"`
	CompanyName                  string `json:"company_name,omitempty"`
	EssentialCoverage            Answer `json:"essential_coverage,omitempty"`
	ValueStandards               Answer `json:"value_standards,omitempty"`
	EssentialCoverageExplanation string `json:"essential_coverage_explanation,omitempty"`
	ValueStandardsExplanation    string `json:"value_standards_explanation,omitempty"`
	Error                        string `json:"error,omitempty"`
}

// Failure returns a failed Result carrying err's message
func Failure(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

// Analysis is a Result plus the intermediate findings behind it
type Analysis struct {
	Result         Result       `json:"result"`
	Facts          ContextFacts `json:"facts"`
	CompanySource  string       `json:"company_source"`
	EssentialMatch Match        `json:"essential_match"`
	ValueMatch     Match        `json:"value_match"`
	Pages          int          `json:"pages"`
}

// Engine runs the company, coverage and fact extractors over a document
// and renders the explanations. It is safe for concurrent use.
type Engine struct {
	company   *CompanyResolver
	coverage  *CoverageExtractor
	facts     *FactExtractor
	explainer *Explainer
	pages     PageExtractor
}

// EngineOption is a functional option for Engine
type EngineOption func(*Engine)

// WithExplanationConfig sets the figures quoted in explanations
func WithExplanationConfig(cfg ExplanationConfig) EngineOption {
	return func(e *Engine) {
		e.explainer = NewExplainer(cfg)
	}
}

// WithPageExtractor sets the extractor used by ProcessFile and ProcessBytes
func WithPageExtractor(px PageExtractor) EngineOption {
	return func(e *Engine) {
		e.pages = px
	}
}

// WithCoverageExtractor replaces the default coverage cascades
func WithCoverageExtractor(c *CoverageExtractor) EngineOption {
	return func(e *Engine) {
		e.coverage = c
	}
}

// NewEngine creates an engine with default extractors
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		company:   NewCompanyResolver(),
		coverage:  NewCoverageExtractor(),
		facts:     NewFactExtractor(),
		explainer: NewExplainer(DefaultExplanationConfig()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessDocument classifies already-extracted page text. It never fails:
// empty input yields "Unknown Company", Unknown answers and default phrasing.
func (e *Engine) ProcessDocument(pages []string) Result {
	return e.Analyze(pages).Result
}

// Analyze is ProcessDocument with the intermediate findings
func (e *Engine) Analyze(pages []string) Analysis {
	doc := NewDocumentText(pages)
	full := doc.Full()

	company, source := e.company.Match(doc.FirstPage())
	essential, value := e.coverage.Resolve(full)
	facts := e.facts.Extract(full)
	explanations := e.explainer.Explain(company, essential.Answer, value.Answer, facts)

	return Analysis{
		Result: Result{
			Success:                      true,
			CompanyName:                  company,
			EssentialCoverage:            essential.Answer,
			ValueStandards:               value.Answer,
			EssentialCoverageExplanation: explanations.EssentialCoverage,
			ValueStandardsExplanation:    explanations.ValueStandards,
		},
		Facts:          facts,
		CompanySource:  source,
		EssentialMatch: essential,
		ValueMatch:     value,
		Pages:          doc.PageCount(),
	}
}

// ProcessFile extracts page text from the document at path and classifies it.
// An unreadable document, or one without any text, is the only failure.
func (e *Engine) ProcessFile(ctx context.Context, path string) Result {
	if e.pages == nil {
		return Failure(ErrNoPageExtractor)
	}
	pages, err := e.pages.ExtractPages(ctx, path)
	return e.processExtracted(pages, err)
}

// ProcessBytes is ProcessFile for an in-memory document
func (e *Engine) ProcessBytes(ctx context.Context, data []byte) Result {
	if e.pages == nil {
		return Failure(ErrNoPageExtractor)
	}
	pages, err := e.pages.ExtractPagesFromBytes(ctx, data)
	return e.processExtracted(pages, err)
}

func (e *Engine) processExtracted(pages []string, err error) Result {
	if err != nil {
		return Failure(fmt.Errorf("extract text: %w", err))
	}
	if NewDocumentText(pages).Blank() {
		return Failure(ErrNoExtractableText)
	}
	return e.ProcessDocument(pages)
}

// Explain renders explanations for answers that were already decided,
// using facts found in fullText. fullText may be empty.
func (e *Engine) Explain(companyName string, essential, value Answer, fullText string) Explanations {
	return e.explainer.Explain(companyName, essential, value, e.facts.Extract(fullText))
}
