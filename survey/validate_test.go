package survey

import (
	"strings"
	"testing"
	"time"

	"github.com/qforms/qforms/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSurvey(t *testing.T) {
	now := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	valid := model.Survey{Title: "Feedback", Status: model.StatusDraft}
	assert.NoError(t, Validate(valid, now))

	valid.ExpireDate = &future
	valid.Status = model.StatusPublished
	assert.NoError(t, Validate(valid, now))

	tests := []struct {
		name   string
		mutate func(*model.Survey)
		field  string
	}{
		{"missing title", func(s *model.Survey) { s.Title = " " }, "title"},
		{"title too long", func(s *model.Survey) { s.Title = strings.Repeat("x", 1001) }, "title"},
		{"bad status", func(s *model.Survey) { s.Status = "archived" }, "status"},
		{"expiry in the past", func(s *model.Survey) { s.ExpireDate = &past }, "expire_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)

			var validation ValidationError
			require.ErrorAs(t, Validate(s, now), &validation)
			assert.Equal(t, tt.field, validation.Field)
		})
	}
}

func TestQuestionDataSerialization(t *testing.T) {
	q := model.Question{
		Question: "Pick your favorites",
		Type:     model.QuestionCheckbox,
		Data:     &model.QuestionData{Options: []string{"go", "sql", "http"}},
	}

	raw, err := validateQuestion(q)
	require.NoError(t, err)

	parsed, err := ParseQuestionData(raw)
	require.NoError(t, err)
	assert.Equal(t, q.Data, parsed)
}

func TestParseQuestionDataEmpty(t *testing.T) {
	parsed, err := ParseQuestionData("")
	require.NoError(t, err)
	assert.Nil(t, parsed)
}
