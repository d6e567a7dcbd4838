package extraction

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultCompanyName is returned when no stage of the cascade finds an issuer
const DefaultCompanyName = "Unknown Company"

const (
	companyScanLines    = 30
	minPatternLineLen   = 5
	minCompanyNameLen   = 3
	minFallbackLineLen  = 10
	companyLiteral      = "Company"
	companyLiteralAdded = " Company"
)

type namePattern struct {
	label string
	re    *regexp.Regexp
}

// Ordered from most to least specific. Suffix words only count as whole words,
// so "including" never reads as "Inc".
var companyPatterns = []namePattern{
	{"suffix-employee-benefits", regexp.MustCompile(`(?i)([A-Za-z\s]+\b(?:Company|Corp|Corporation|Inc|LLC|Group)\b)\s+Employee\s+Benefits`)},
	{"employee-benefits-plan", regexp.MustCompile(`(?i)([A-Za-z\s]+)\s+Employee\s+Benefits\s+Plan`)},
	{"leading-suffix", regexp.MustCompile(`(?i)^([A-Za-z\s]+\b(?:Company|Corp|Corporation|Inc|LLC)\b)`)},
	{"industry-company", regexp.MustCompile(`(?i)([A-Za-z\s]+\b(?:Delivery|Service|Solutions|Systems))\s+Company`)},
	{"benefits-plan", regexp.MustCompile(`(?i)([A-Za-z\s]+)\s+Benefits\s+Plan`)},
	{"delivery-company", regexp.MustCompile(`(?i)([A-Za-z\s]+Delivery\s+Company)`)},
	{"numbered-plan", regexp.MustCompile(`(?i)([A-Za-z\s]+)\s+Employee\s+Benefits\s+Plan:\s+Plan\s+\d+`)},
}

var (
	companyWordPattern = regexp.MustCompile(`(?i)([A-Za-z\s]+)\s+Company`)
	whitespaceRun      = regexp.MustCompile(`\s+`)
)

// CompanyResolver identifies the plan issuer from the first page of an SBC
type CompanyResolver struct {
	patterns []namePattern
}

// NewCompanyResolver returns a resolver using the built-in pattern list
func NewCompanyResolver() *CompanyResolver {
	return &CompanyResolver{patterns: companyPatterns}
}

// Resolve returns the issuer name found in the leading lines of firstPage.
// It never fails; when every stage misses it returns DefaultCompanyName.
func (r *CompanyResolver) Resolve(firstPage string) string {
	name, _ := r.Match(firstPage)
	return name
}

// Match is Resolve plus the label of the stage that produced the name
func (r *CompanyResolver) Match(firstPage string) (name, stage string) {
	lines := leadingLines(firstPage, companyScanLines)

	if found, label, ok := r.matchPatterns(lines); ok {
		return found, label
	}
	if found, ok := companyWordFallback(lines); ok {
		return found, "company-word"
	}
	if line, ok := firstSubstantialLine(lines); ok {
		return line, "first-line"
	}
	return DefaultCompanyName, "default"
}

func (r *CompanyResolver) matchPatterns(lines []string) (string, string, bool) {
	for _, line := range lines {
		if utf8.RuneCountInString(line) <= minPatternLineLen {
			continue
		}
		for _, p := range r.patterns {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := collapseWhitespace(m[1])
			if utf8.RuneCountInString(name) > minCompanyNameLen {
				return name, p.label, true
			}
		}
	}
	return "", "", false
}

func companyWordFallback(lines []string) (string, bool) {
	for _, line := range lines {
		if !strings.Contains(line, companyLiteral) || utf8.RuneCountInString(line) <= minFallbackLineLen {
			continue
		}
		m := companyWordPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		prefix := collapseWhitespace(m[1])
		if prefix == "" {
			continue
		}
		return prefix + companyLiteralAdded, true
	}
	return "", false
}

func firstSubstantialLine(lines []string) (string, bool) {
	for _, line := range lines {
		if utf8.RuneCountInString(line) <= minFallbackLineLen {
			continue
		}
		if strings.HasPrefix(line, "Summary") || strings.HasPrefix(line, "Coverage") {
			continue
		}
		return line, true
	}
	return "", false
}

// leadingLines returns up to n lines of text, each trimmed
func leadingLines(text string, n int) []string {
	if text == "" {
		return nil
	}
	raw := strings.SplitN(text, "\n", n+1)
	if len(raw) > n {
		raw = raw[:n]
	}
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

func collapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}
