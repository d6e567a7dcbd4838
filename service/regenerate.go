package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"sbc-validator-backend/extraction"
	"sbc-validator-backend/models"

	"github.com/google/uuid"
)

// legacyValueStandardsYes is what the old value-standards pattern stored
// when it captured the trailing "s" of "Standards" instead of the answer.
// Those documents all answered Yes.
const legacyValueStandardsYes = "S"

// explanations this short are treated as missing
const minExplanationLen = 10

// RegenerateRequest controls RegenerateExplanations
type RegenerateRequest struct {
	// Force rewrites every record, not only invalid or unexplained ones
	Force bool
	// DryRun reports the changes without writing them
	DryRun bool
}

// RegeneratedRecord describes one record that was, or would be, rewritten
type RegeneratedRecord struct {
	ID        uuid.UUID         `json:"id"`
	GroupName string            `json:"group_name"`
	OldA      extraction.Answer `json:"old_penalty_a"`
	OldB      extraction.Answer `json:"old_penalty_b"`
	NewA      extraction.Answer `json:"penalty_a"`
	NewB      extraction.Answer `json:"penalty_b"`
}

// RegenerateResult summarizes a regeneration pass
type RegenerateResult struct {
	Checked int                 `json:"checked"`
	Updated []RegeneratedRecord `json:"updated"`
}

// RegenerateExplanations repairs stored records. Answers outside Yes/No/Unknown
// are coerced (a legacy "S" value-standards answer becomes Yes, anything else
// Unknown) and explanations are rebuilt for records whose answers changed or
// whose explanations are missing. Valid Yes/No answers are never changed.
func (s *RecordService) RegenerateExplanations(ctx context.Context, req RegenerateRequest) (*RegenerateResult, error) {
	if s.store == nil {
		return nil, errors.New("record store not set")
	}
	if s.engine == nil {
		return nil, errors.New("extraction engine not set")
	}

	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	res := &RegenerateResult{Checked: len(records), Updated: []RegeneratedRecord{}}
	for _, rec := range records {
		newA := extraction.ParseAnswer(string(rec.PenaltyA))
		newB := coerceValueStandards(rec.PenaltyB)

		answersChanged := newA != rec.PenaltyA || newB != rec.PenaltyB
		if !req.Force && !answersChanged && hasExplanations(rec) {
			continue
		}

		change := RegeneratedRecord{
			ID:        rec.ID,
			GroupName: rec.GroupName,
			OldA:      rec.PenaltyA,
			OldB:      rec.PenaltyB,
			NewA:      newA,
			NewB:      newB,
		}
		res.Updated = append(res.Updated, change)
		if req.DryRun {
			continue
		}

		explanations := s.engine.Explain(rec.GroupName, newA, newB, "")
		err := s.store.UpdateAnswers(ctx, rec.ID, models.AnswerUpdate{
			PenaltyA:            newA,
			PenaltyB:            newB,
			PenaltyAExplanation: explanations.EssentialCoverage,
			PenaltyBExplanation: explanations.ValueStandards,
		})
		if err != nil {
			return res, fmt.Errorf("update record %s: %w", rec.ID, err)
		}
		s.metrics.RecordRegenerated()
		s.logger.Info("record regenerated",
			"record_id", rec.ID,
			"penalty_a", fmt.Sprintf("%s -> %s", change.OldA, newA),
			"penalty_b", fmt.Sprintf("%s -> %s", change.OldB, newB),
		)
	}
	return res, nil
}

func coerceValueStandards(a extraction.Answer) extraction.Answer {
	if a == legacyValueStandardsYes {
		return extraction.AnswerYes
	}
	return extraction.ParseAnswer(string(a))
}

func hasExplanations(rec *models.SBCRecord) bool {
	return utf8.RuneCountInString(rec.PenaltyAExplanation) > minExplanationLen &&
		utf8.RuneCountInString(rec.PenaltyBExplanation) > minExplanationLen
}
