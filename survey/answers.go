package survey

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// IngestAnswers records one public submission against a survey: a single
// answer-session row plus one answer row per question. Question ownership
// is checked for the whole map before anything is written, so a single bad
// id fails the submission with zero persisted rows once the caller rolls
// the transaction back.
//
// Map keys are question ids as they appeared in the request body.
// Returns the id of the created answer-session.
func IngestAnswers(ctx context.Context, tx *sql.Tx, surveyID int, answers map[string]any, now time.Time) (int, error) {
	if len(answers) == 0 {
		return 0, invalid("answers", "required")
	}

	existing, err := questionIDs(ctx, tx, surveyID)
	if err != nil {
		return 0, errors.Wrap(err, "load questions")
	}

	// sorted for a deterministic first-offender and insert order
	keys := make([]string, 0, len(answers))
	for key := range answers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	idByKey := make(map[string]int, len(keys))
	for _, key := range keys {
		id, err := strconv.Atoi(key)
		if err != nil || !existing[id] {
			return 0, InvalidQuestionError{ID: key}
		}
		idByKey[key] = id
	}

	var sessionID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO survey_answer (survey_id, start_date, end_date)
		VALUES (?, ?, ?)
		RETURNING id`,
		surveyID, now, now,
	).Scan(&sessionID)
	if err != nil {
		return 0, errors.Wrap(err, "insert answer session")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO survey_question_answer (question_id, answer_id, answer)
		VALUES (?, ?, ?)`)
	if err != nil {
		return 0, errors.Wrap(err, "prepare answer insert")
	}
	defer stmt.Close()

	for _, key := range keys {
		value, err := serializeAnswer(answers[key])
		if err != nil {
			return 0, invalid("answers", "value for question "+key+" not serializable")
		}
		if _, err := stmt.ExecContext(ctx, idByKey[key], sessionID, value); err != nil {
			return 0, errors.Wrap(err, "insert answer")
		}
	}

	return sessionID, nil
}

// serializeAnswer stores scalars as-is and everything else (option lists
// from checkbox questions) as JSON.
func serializeAnswer(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
}
