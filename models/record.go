package models

import (
	"time"

	"sbc-validator-backend/extraction"

	"github.com/google/uuid"
)

// UploadDateLayout is the format of SBCRecord.UploadDate
const UploadDateLayout = "2006-01-02"

// SBCRecord is one processed SBC document. PenaltyA holds the Minimum
// Essential Coverage answer and PenaltyB the Minimum Value Standards answer;
// the column names predate the engine and are kept for API compatibility.
type SBCRecord struct {
	ID                  uuid.UUID         `json:"id"`
	GroupName           string            `json:"group_name"`
	UploadDate          string            `json:"upload_date"`
	PenaltyA            extraction.Answer `json:"penalty_a"`
	PenaltyB            extraction.Answer `json:"penalty_b"`
	Filename            string            `json:"filename"`
	StoragePath         string            `json:"storage_path,omitempty"`
	S3URL               *string           `json:"s3_url"`
	PenaltyAExplanation string            `json:"penalty_a_explanation"`
	PenaltyBExplanation string            `json:"penalty_b_explanation"`
	Checksum            string            `json:"checksum,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
}

// AnswerUpdate replaces the answers and explanations of a stored record
type AnswerUpdate struct {
	PenaltyA            extraction.Answer
	PenaltyB            extraction.Answer
	PenaltyAExplanation string
	PenaltyBExplanation string
}
