package extraction

import (
	"iter"
	"regexp"
)

// Strategy is one step of an answer cascade. Candidates yields the raw
// tokens it finds, in the order they should be tried.
type Strategy struct {
	Name       string
	Candidates func(text string) iter.Seq[string]
}

// Cascade is an ordered list of strategies, strongest first
type Cascade []Strategy

// Match is the outcome of running a cascade over a document
type Match struct {
	Answer   Answer `json:"answer"`
	Strategy string `json:"strategy,omitempty"` // empty when the cascade was exhausted
	Token    string `json:"token,omitempty"`
}

// Resolve tries each strategy in order and returns the first candidate
// that parses as Yes or No. Any other candidate is skipped.
func (c Cascade) Resolve(text string) Match {
	for _, s := range c {
		for token := range s.Candidates(text) {
			if answer := ParseAnswer(token); answer.Known() {
				return Match{Answer: answer, Strategy: s.Name, Token: token}
			}
		}
	}
	return Match{Answer: AnswerUnknown}
}

// Strategy names, in cascade order
const (
	StrategyAnchored  = "anchored"
	StrategySentence  = "sentence"
	StrategyLookahead = "lookahead"
	StrategyParagraph = "paragraph"
)

var standaloneAnswer = regexp.MustCompile(`(?i)\b(Yes|No)\b`)

// PatternStrategy yields the first capture group of every match of each
// pattern, pattern by pattern, matches in document order.
func PatternStrategy(name string, patterns ...*regexp.Regexp) Strategy {
	return Strategy{
		Name: name,
		Candidates: func(text string) iter.Seq[string] {
			return func(yield func(string) bool) {
				for _, re := range patterns {
					for _, m := range re.FindAllStringSubmatch(text, -1) {
						if len(m) < 2 {
							continue
						}
						if !yield(m[1]) {
							return
						}
					}
				}
			}
		},
	}
}

// ParagraphStrategy yields stand-alone Yes/No words found inside each
// paragraph matched by paragraph.
func ParagraphStrategy(name string, paragraph *regexp.Regexp) Strategy {
	return Strategy{
		Name: name,
		Candidates: func(text string) iter.Seq[string] {
			return func(yield func(string) bool) {
				for _, p := range paragraph.FindAllString(text, -1) {
					for _, m := range standaloneAnswer.FindAllStringSubmatch(p, -1) {
						if !yield(m[1]) {
							return
						}
					}
				}
			}
		},
	}
}

type questionPatterns struct {
	anchored  []string
	sentence  []string
	lookahead string
	paragraph string
}

func (q questionPatterns) cascade() Cascade {
	return Cascade{
		PatternStrategy(StrategyAnchored, compileAll(q.anchored)...),
		PatternStrategy(StrategySentence, compileAll(q.sentence)...),
		PatternStrategy(StrategyLookahead, compile(q.lookahead)),
		ParagraphStrategy(StrategyParagraph, compile(q.paragraph)),
	}
}

var essentialCoveragePatterns = questionPatterns{
	anchored: []string{
		`Does\s+this\s+plan\s+provide\s+Minimum\s+Essential\s+Coverage\?\s*(\w+)`,
		`Minimum\s+Essential\s+Coverage\?\s*(\w+)`,
		`Essential\s+Coverage[:\s]*(\w+)`,
		`Minimum\s+Essential[:\s]*(\w+)`,
		`Essential\s+Coverage\?\s*(\w+)`,
		`Minimum\s+Essential\s+Coverage[:\s]*(\w+)`,
	},
	sentence: []string{
		`Essential\s+Coverage[^.]*?\b(Yes|No)\b`,
		`Minimum\s+Essential[^.]*?\b(Yes|No)\b`,
	},
	lookahead: `Essential\s+Coverage.*?\b(Yes|No)\b`,
	paragraph: `Essential\s+Coverage[^.]*\.`,
}

var valueStandardsPatterns = questionPatterns{
	anchored: []string{
		`Does\s+this\s+plan\s+meet\s+the\s+Minimum\s+Value\s+Standards?\?\s*(\w+)`,
		`Minimum\s+Value\s+Standards?\?\s*(\w+)`,
		`Value\s+Standards?\b[:\s]*(\w+)`,
		`Minimum\s+Value[:\s]*(\w+)`,
		`Value\s+Standards?\?\s*(\w+)`,
		`Minimum\s+Value\s+Standards?\b[:\s]*(\w+)`,
	},
	sentence: []string{
		`Value\s+Standards?[^.]*?\b(Yes|No)\b`,
		`Minimum\s+Value[^.]*?\b(Yes|No)\b`,
	},
	lookahead: `Value\s+Standards?.*?\b(Yes|No)\b`,
	paragraph: `Value\s+Standards?[^.]*\.`,
}

// EssentialCoverageCascade returns the cascade for
// "Does this plan provide Minimum Essential Coverage?"
func EssentialCoverageCascade() Cascade {
	return essentialCoveragePatterns.cascade()
}

// ValueStandardsCascade returns the cascade for
// "Does this plan meet the Minimum Value Standards?"
func ValueStandardsCascade() Cascade {
	return valueStandardsPatterns.cascade()
}

// CoverageExtractor answers the two SBC coverage questions
type CoverageExtractor struct {
	essential Cascade
	value     Cascade
}

// NewCoverageExtractor returns an extractor with the default cascades
func NewCoverageExtractor() *CoverageExtractor {
	return NewCoverageExtractorWith(EssentialCoverageCascade(), ValueStandardsCascade())
}

// NewCoverageExtractorWith builds an extractor from custom cascades
func NewCoverageExtractorWith(essential, value Cascade) *CoverageExtractor {
	return &CoverageExtractor{essential: essential, value: value}
}

// Extract returns the essential coverage and value standards answers
func (e *CoverageExtractor) Extract(fullText string) (essential, value Answer) {
	em, vm := e.Resolve(fullText)
	return em.Answer, vm.Answer
}

// Resolve is Extract with the strategy that produced each answer
func (e *CoverageExtractor) Resolve(fullText string) (essential, value Match) {
	return e.essential.Resolve(fullText), e.value.Resolve(fullText)
}

func compile(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)` + expr)
}

func compileAll(exprs []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = compile(e)
	}
	return out
}
