package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		token string
		want  Answer
	}{
		{"Yes", AnswerYes},
		{"yes", AnswerYes},
		{"YES", AnswerYes},
		{"  Yes\n", AnswerYes},
		{"No", AnswerNo},
		{"no", AnswerNo},
		{"nO", AnswerNo},
		{"", AnswerUnknown},
		{"S", AnswerUnknown},
		{"Y", AnswerUnknown},
		{"N", AnswerUnknown},
		{"Yess", AnswerUnknown},
		{"None", AnswerUnknown},
		{"N/A", AnswerUnknown},
		{"Unknown", AnswerUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAnswer(tt.token))
		})
	}
}

func TestAnswerKnown(t *testing.T) {
	assert.True(t, AnswerYes.Known())
	assert.True(t, AnswerNo.Known())
	assert.False(t, AnswerUnknown.Known())
	assert.False(t, Answer("S").Known())
}

func TestAnswerStringDefaultsToUnknown(t *testing.T) {
	var a Answer
	assert.Equal(t, "Unknown", a.String())
	assert.Equal(t, "Yes", AnswerYes.String())
}
