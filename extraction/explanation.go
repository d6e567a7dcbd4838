package extraction

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ExplanationConfig holds the read-only figures quoted in the narratives
type ExplanationConfig struct {
	// PenaltyYear is the calendar year the per-employee figures apply to
	PenaltyYear int
	// NoCoveragePenaltyPerEmployee is the Section 4980H(a) annual amount
	NoCoveragePenaltyPerEmployee int
	// InadequateCoveragePenaltyPerEmployee is the Section 4980H(b) annual amount
	InadequateCoveragePenaltyPerEmployee int
	// IllustrativeHeadcount is the example number of affected employees
	IllustrativeHeadcount int
	// UnknownAsNegative renders Unknown answers with the negative narrative
	// instead of the neutral review narrative.
	UnknownAsNegative bool
}

// DefaultExplanationConfig returns the 2025 figures and a headcount of 50
func DefaultExplanationConfig() ExplanationConfig {
	return ExplanationConfig{
		PenaltyYear:                          2025,
		NoCoveragePenaltyPerEmployee:         2900,
		InadequateCoveragePenaltyPerEmployee: 4350,
		IllustrativeHeadcount:                50,
	}
}

// Status markers that open each narrative
const (
	MarkerAffirmative  = "✅"
	MarkerNegative     = "❌"
	MarkerUndetermined = "⚠️"
)

// Section titles
const (
	TitleKeyFacts        = "Key Facts:"
	TitleComplianceGood  = "Compliance Impact:"
	TitleComplianceRisk  = "Compliance Risk:"
	TitleFinancialImpact = "Financial Impact Illustration:"
	TitleReview          = "Review Required:"
	TitleNextSteps       = "Recommended Next Steps:"
)

// Explanations are the two narratives rendered for a document
type Explanations struct {
	EssentialCoverage string `json:"essential_coverage_explanation"`
	ValueStandards    string `json:"value_standards_explanation"`
}

// Explainer renders compliance narratives. It holds no mutable state and
// the same inputs always produce the same strings.
type Explainer struct {
	cfg ExplanationConfig
}

// NewExplainer returns an Explainer using cfg
func NewExplainer(cfg ExplanationConfig) *Explainer {
	return &Explainer{cfg: cfg}
}

// Config returns the figures the explainer quotes
func (e *Explainer) Config() ExplanationConfig {
	return e.cfg
}

type narrative int

const (
	affirmative narrative = iota
	negative
	undetermined
)

func (e *Explainer) narrativeFor(a Answer) narrative {
	switch {
	case a == AnswerYes:
		return affirmative
	case a == AnswerNo:
		return negative
	case e.cfg.UnknownAsNegative:
		return negative
	default:
		return undetermined
	}
}

// Explain renders both narratives
func (e *Explainer) Explain(companyName string, essential, value Answer, facts ContextFacts) Explanations {
	if strings.TrimSpace(companyName) == "" {
		companyName = DefaultCompanyName
	}
	facts = withDefaults(facts)

	var out Explanations
	switch e.narrativeFor(essential) {
	case affirmative:
		out.EssentialCoverage = essentialProvided(companyName, facts)
	case negative:
		out.EssentialCoverage = e.essentialNotProvided(companyName, facts)
	default:
		out.EssentialCoverage = essentialUndetermined(companyName, facts)
	}

	switch e.narrativeFor(value) {
	case affirmative:
		out.ValueStandards = valueMet(companyName, facts)
	case negative:
		out.ValueStandards = e.valueNotMet(companyName, facts)
	default:
		out.ValueStandards = valueUndetermined(companyName, facts)
	}
	return out
}

func essentialProvided(company string, f ContextFacts) string {
	return render(
		section{title: MarkerAffirmative + " Minimum Essential Coverage: Yes"},
		section{title: TitleKeyFacts, bullets: []string{
			"The SBC for " + company + " reports that its " + f.PlanType + " provides Minimum Essential Coverage",
			"Coverage period: " + f.CoveragePeriod,
			"Deductible: " + f.Deductible,
			"Out-of-pocket limit: " + f.OutOfPocketLimit,
		}},
		section{title: TitleComplianceGood, bullets: []string{
			"Enrollment in this plan satisfies the individual coverage requirement for employees and covered dependents",
			"Offering this plan to at least 95% of full-time employees and their dependents meets the Section 4980H(a) offer requirement",
		}},
		section{title: TitleNextSteps, bullets: []string{
			"Keep this SBC on file as documentation of the coverage offered for the " + f.CoveragePeriod,
			"Report the offer of coverage on Forms 1094-C and 1095-C",
			"Confirm the plan is offered to every eligible full-time employee and dependent",
		}},
	)
}

func (e *Explainer) essentialNotProvided(company string, f ContextFacts) string {
	return render(
		section{title: MarkerNegative + " Minimum Essential Coverage: No"},
		section{title: TitleKeyFacts, bullets: []string{
			"The SBC for " + company + " does not confirm that its " + f.PlanType + " provides Minimum Essential Coverage",
			"Coverage period: " + f.CoveragePeriod,
			"Deductible: " + f.Deductible,
			"Out-of-pocket limit: " + f.OutOfPocketLimit,
		}},
		section{title: TitleComplianceRisk, bullets: []string{
			"Employees enrolled only in this plan do not satisfy the individual coverage requirement",
			"An applicable large employer that does not offer Minimum Essential Coverage faces the Section 4980H(a) penalty of " +
				formatDollars(e.cfg.NoCoveragePenaltyPerEmployee) + " per full-time employee for " + strconv.Itoa(e.cfg.PenaltyYear) + ", less the first 30 employees",
			"The penalty is triggered once any full-time employee receives a premium tax credit through the Marketplace",
		}},
		section{title: TitleNextSteps, bullets: []string{
			"Add or switch to a plan that qualifies as Minimum Essential Coverage before the next plan year",
			"Review the plan design with the carrier or benefits advisor",
			"Consult benefits counsel about exposure for the " + f.CoveragePeriod,
		}},
	)
}

func essentialUndetermined(company string, f ContextFacts) string {
	return render(
		section{title: MarkerUndetermined + " Minimum Essential Coverage: Not Determined"},
		section{title: TitleKeyFacts, bullets: []string{
			"The Minimum Essential Coverage answer could not be read from the SBC for " + company,
			"Plan type: " + f.PlanType,
			"Coverage period: " + f.CoveragePeriod,
		}},
		section{title: TitleReview, bullets: []string{
			"The document may word the question differently, or the answer may sit in a table that did not extract cleanly",
			"No compliance conclusion should be drawn from this result until the answer is confirmed",
		}},
		section{title: TitleNextSteps, bullets: []string{
			"Check the \"Does this plan provide Minimum Essential Coverage?\" question in the SBC",
			"Request a current SBC from the carrier if the question is missing",
		}},
	)
}

func valueMet(company string, f ContextFacts) string {
	return render(
		section{title: MarkerAffirmative + " Minimum Value Standards: Yes"},
		section{title: TitleKeyFacts, bullets: []string{
			"The SBC for " + company + " reports that its " + f.PlanType + " meets the Minimum Value Standard of at least 60% of total allowed costs",
			"Deductible: " + f.Deductible,
			"Out-of-pocket limit: " + f.OutOfPocketLimit,
			"Coverage period: " + f.CoveragePeriod,
		}},
		section{title: TitleComplianceGood, bullets: []string{
			"The plan satisfies the minimum value part of the Section 4980H(b) employer rules",
			"Employees offered affordable coverage under this plan are not eligible for Marketplace premium tax credits",
		}},
		section{title: TitleNextSteps, bullets: []string{
			"Confirm the lowest-cost self-only option also meets the affordability threshold",
			"Keep the SBC and any minimum value calculation on file",
			"Report the offer of coverage on Forms 1094-C and 1095-C",
		}},
	)
}

func (e *Explainer) valueNotMet(company string, f ContextFacts) string {
	perEmployee := e.cfg.InadequateCoveragePenaltyPerEmployee
	headcount := e.cfg.IllustrativeHeadcount

	return render(
		section{title: MarkerNegative + " Minimum Value Standards: No"},
		section{title: TitleKeyFacts, bullets: []string{
			"The SBC for " + company + " does not confirm that its " + f.PlanType + " meets the Minimum Value Standard",
			"Deductible: " + f.Deductible,
			"Out-of-pocket limit: " + f.OutOfPocketLimit,
			"Coverage period: " + f.CoveragePeriod,
		}},
		section{title: TitleComplianceRisk, bullets: []string{
			"Full-time employees may decline this plan and qualify for Marketplace premium tax credits",
			"Each such employee can trigger the Section 4980H(b) penalty of " + formatDollars(perEmployee) + " per year for " + strconv.Itoa(e.cfg.PenaltyYear),
		}},
		section{title: TitleFinancialImpact, bullets: []string{
			"Example only: " + formatInt(headcount) + " affected employees x " + formatDollars(perEmployee) + " = " + formatDollars(headcount*perEmployee) + " per year",
			"Actual exposure depends on how many full-time employees receive a premium tax credit",
		}},
		section{title: TitleNextSteps, bullets: []string{
			"Work with the carrier to adjust cost sharing, starting with the " + f.Deductible + " and the " + f.OutOfPocketLimit + " out-of-pocket limit",
			"Obtain an actuarial minimum value calculation for the revised design",
			"Consult benefits counsel before the next plan year",
		}},
	)
}

func valueUndetermined(company string, f ContextFacts) string {
	return render(
		section{title: MarkerUndetermined + " Minimum Value Standards: Not Determined"},
		section{title: TitleKeyFacts, bullets: []string{
			"The Minimum Value Standards answer could not be read from the SBC for " + company,
			"Deductible: " + f.Deductible,
			"Out-of-pocket limit: " + f.OutOfPocketLimit,
		}},
		section{title: TitleReview, bullets: []string{
			"The document may word the question differently, or the answer may sit in a table that did not extract cleanly",
			"No compliance conclusion should be drawn from this result until the answer is confirmed",
		}},
		section{title: TitleNextSteps, bullets: []string{
			"Check the \"Does this plan meet the Minimum Value Standards?\" question in the SBC",
			"Ask the carrier for the plan's minimum value determination",
		}},
	)
}

type section struct {
	title   string
	bullets []string
}

// render joins sections with a blank line; bullets start with "• "
func render(sections ...section) string {
	var builder strings.Builder
	for i, s := range sections {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(s.title)
		for _, b := range s.bullets {
			builder.WriteString("\n• ")
			builder.WriteString(b)
		}
	}
	return builder.String()
}

func withDefaults(f ContextFacts) ContextFacts {
	d := DefaultContextFacts()
	if strings.TrimSpace(f.PlanType) == "" {
		f.PlanType = d.PlanType
	}
	if strings.TrimSpace(f.Deductible) == "" {
		f.Deductible = d.Deductible
	}
	if strings.TrimSpace(f.CoveragePeriod) == "" {
		f.CoveragePeriod = d.CoveragePeriod
	}
	if strings.TrimSpace(f.OutOfPocketLimit) == "" {
		f.OutOfPocketLimit = d.OutOfPocketLimit
	}
	return f
}

func formatInt(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

func formatDollars(n int) string {
	return "$" + formatInt(n)
}
