package extraction

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Default phrases used when a fact cannot be found in the document
const (
	DefaultPlanType         = "Health Plan"
	DefaultDeductible       = "structured deductible"
	DefaultCoveragePeriod   = "annual coverage period"
	DefaultOutOfPocketLimit = "specified limits"
)

const minCoveragePeriodLen = 5

// ContextFacts are secondary details used only to word the explanations.
// Every field is always set, falling back to the Default* phrases.
type ContextFacts struct {
	PlanType         string `json:"plan_type"`
	Deductible       string `json:"deductible"`
	CoveragePeriod   string `json:"coverage_period"`
	OutOfPocketLimit string `json:"out_of_pocket_limit"`
}

// DefaultContextFacts returns facts made only of default phrases
func DefaultContextFacts() ContextFacts {
	return ContextFacts{
		PlanType:         DefaultPlanType,
		Deductible:       DefaultDeductible,
		CoveragePeriod:   DefaultCoveragePeriod,
		OutOfPocketLimit: DefaultOutOfPocketLimit,
	}
}

type planTypeRule struct {
	name string
	re   *regexp.Regexp
}

// First match wins. Rules match on word boundaries rather than plain
// substrings so words like "purpose" or "possible" do not read as POS.
var planTypeRules = []planTypeRule{
	{"Indemnity", regexp.MustCompile(`(?i)\bindemnity`)},
	{"HMO", regexp.MustCompile(`(?i)\bhmo`)},
	{"PPO", regexp.MustCompile(`(?i)\bppo`)},
	{"POS", regexp.MustCompile(`(?i)\bpos\b`)},
	{"High-Deductible", regexp.MustCompile(`(?i)\bhdhp|high[\s-]+deductible`)},
}

const (
	dollarAmount   = `\$\s?(\d{1,3}(?:,\d{3})+|\d+)(?:\.\d{2})?`
	// skip one other figure between an amount and "deductible"
	leadingAmount  = `(?:\$\s?[\d,]+(?:\.\d{2})?[^$]{0,30}?)?`
	trailingAmount = `(?:[^$\n]{0,30}?\$\s?[\d,]+(?:\.\d{2})?)?`
)

// Every deductible pattern needs the word "deductible" near the amount, so
// out-of-pocket figures earlier in the document are never picked up.
var (
	individualDeductiblePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)deductible[^$]{0,60}?` + dollarAmount + `\s*(?:per\s+|for\s+an?\s+|/\s*)?individual`),
		regexp.MustCompile(`(?i)` + dollarAmount + `\s*(?:per\s+|/\s*)?individual` + trailingAmount + `[^$\n]{0,40}?deductible`),
		regexp.MustCompile(`(?i)individual\s+deductible\s*[:\-]?\s*` + dollarAmount),
	}
	familyDeductiblePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)deductible[^$]{0,60}?` + leadingAmount + dollarAmount + `\s*(?:per\s+|for\s+an?\s+|/\s*)?family`),
		regexp.MustCompile(`(?i)` + dollarAmount + `\s*(?:per\s+|/\s*)?family` + trailingAmount + `[^$\n]{0,40}?deductible`),
		regexp.MustCompile(`(?i)family\s+deductible\s*[:\-]?\s*` + dollarAmount),
	}
	coveragePeriodPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Coverage\s+Period\s*:\s*([0-9A-Za-z/,.\-– ]+?)(?:\s{2,}|\s*\||\s+Coverage\s+for\b|\s+Plan\s+Type\b|\r?\n|$)`),
		regexp.MustCompile(`(?i)Plan\s+Year\s*:\s*([0-9A-Za-z/,.\-– ]+?)(?:\s{2,}|\s*\||\s+Coverage\s+for\b|\s+Plan\s+Type\b|\r?\n|$)`),
		regexp.MustCompile(`(?i)Coverage\s+for\s*:\s*([0-9A-Za-z/,.\-–+ ]+?)(?:\s{2,}|\s*\||\s+Plan\s+Type\b|\r?\n|$)`),
	}
	outOfPocketPattern = regexp.MustCompile(`(?is)out[\s-]+of[\s-]+pocket[^$]{0,80}?` + dollarAmount + `(?:[^$]{0,40}?` + dollarAmount + `)?`)
)

// FactExtractor pulls plan details used to tailor explanations
type FactExtractor struct{}

// NewFactExtractor returns a FactExtractor
func NewFactExtractor() *FactExtractor {
	return &FactExtractor{}
}

// Extract never fails; missing facts fall back to default phrases
func (f *FactExtractor) Extract(fullText string) ContextFacts {
	return ContextFacts{
		PlanType:         planType(fullText),
		Deductible:       deductible(fullText),
		CoveragePeriod:   coveragePeriod(fullText),
		OutOfPocketLimit: outOfPocketLimit(fullText),
	}
}

func planType(text string) string {
	for _, rule := range planTypeRules {
		if rule.re.MatchString(text) {
			return rule.name
		}
	}
	return DefaultPlanType
}

func deductible(text string) string {
	individual := firstAmount(text, individualDeductiblePatterns)
	family := firstAmount(text, familyDeductiblePatterns)

	switch {
	case individual != "" && family != "":
		return individual + " individual / " + family + " family deductible"
	case individual != "":
		return individual + " individual deductible"
	case family != "":
		return family + " family deductible"
	default:
		return DefaultDeductible
	}
}

func coveragePeriod(text string) string {
	for _, re := range coveragePeriodPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[1])
		if utf8.RuneCountInString(value) > minCoveragePeriodLen {
			return value
		}
	}
	return DefaultCoveragePeriod
}

func outOfPocketLimit(text string) string {
	m := outOfPocketPattern.FindStringSubmatch(text)
	if m == nil {
		return DefaultOutOfPocketLimit
	}
	if m[2] != "" {
		return "$" + m[1] + " individual / $" + m[2] + " family"
	}
	return "$" + m[1]
}

// firstAmount returns "$N" for the first pattern that matches, or ""
func firstAmount(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return "$" + m[1]
		}
	}
	return ""
}
