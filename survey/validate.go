package survey

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/qforms/qforms/model"
)

const maxTitleLength = 1000

// Validate checks the survey payload of a create or update request.
// Questions are validated one by one during reconciliation.
func Validate(s model.Survey, now time.Time) error {
	if strings.TrimSpace(s.Title) == "" {
		return invalid("title", "required")
	}
	if len(s.Title) > maxTitleLength {
		return invalid("title", fmt.Sprintf("longer than %d characters", maxTitleLength))
	}
	if !s.Status.Valid() {
		return invalid("status", fmt.Sprintf("unknown status %q", s.Status))
	}
	if s.ExpireDate != nil && !s.ExpireDate.After(now) {
		return invalid("expire_date", "must be in the future")
	}
	return nil
}

// validateQuestion checks one submitted question and returns its
// configuration payload serialized for storage.
func validateQuestion(q model.Question) (dataJSON string, err error) {
	if strings.TrimSpace(q.Question) == "" {
		return "", invalid("question", "required")
	}
	if !q.Type.Valid() {
		return "", invalid("type", fmt.Sprintf("unknown question type %q", q.Type))
	}
	if q.Type.HasOptions() {
		if q.Data == nil || len(q.Data.Options) == 0 {
			return "", invalid("data", fmt.Sprintf("question type %q requires options", q.Type))
		}
		for _, opt := range q.Data.Options {
			if strings.TrimSpace(opt) == "" {
				return "", invalid("data", "empty option")
			}
		}
	} else if q.Data != nil && len(q.Data.Options) > 0 {
		return "", invalid("data", fmt.Sprintf("question type %q takes no options", q.Type))
	}

	if q.Data == nil {
		return "", nil
	}
	raw, err := json.Marshal(q.Data)
	if err != nil {
		return "", invalid("data", "not serializable")
	}
	return string(raw), nil
}

// ParseQuestionData deserializes a stored configuration payload.
// The empty string round-trips to nil.
func ParseQuestionData(raw string) (*model.QuestionData, error) {
	if raw == "" {
		return nil, nil
	}
	data := &model.QuestionData{}
	if err := json.Unmarshal([]byte(raw), data); err != nil {
		return nil, err
	}
	return data, nil
}
