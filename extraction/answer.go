package extraction

import "strings"

// Answer is the tri-state answer to one of the two SBC coverage questions
type Answer string

const (
	AnswerYes     Answer = "Yes"
	AnswerNo      Answer = "No"
	AnswerUnknown Answer = "Unknown"
)

// ParseAnswer maps a captured token to an Answer. Only "yes" and "no"
// (any case, surrounding whitespace ignored) are accepted; every other
// token, including a stray single letter, becomes AnswerUnknown.
func ParseAnswer(token string) Answer {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "yes":
		return AnswerYes
	case "no":
		return AnswerNo
	default:
		return AnswerUnknown
	}
}

// Known reports whether the answer is Yes or No
func (a Answer) Known() bool {
	return a == AnswerYes || a == AnswerNo
}

func (a Answer) String() string {
	if a == "" {
		return string(AnswerUnknown)
	}
	return string(a)
}
