package survey

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/qforms/qforms/model"
)

// Reconcile converges the persisted question set of a survey to the
// submitted one: questions missing from the submission are deleted,
// entries without an id are created, entries carrying an id of an
// existing question are updated in place. A submitted id that was never
// issued for this survey aborts with UnknownQuestionError.
//
// Runs entirely inside the caller's transaction; on error the caller is
// expected to roll back, leaving the survey untouched.
//
// Returns the submitted questions with server-generated ids filled in.
func Reconcile(ctx context.Context, tx *sql.Tx, surveyID int, submitted []model.Question) ([]model.Question, error) {
	existing, err := questionIDs(ctx, tx, surveyID)
	if err != nil {
		return nil, errors.Wrap(err, "load existing questions")
	}

	submittedIDs := make(map[int]bool, len(submitted))
	for _, q := range submitted {
		if q.ID == 0 {
			continue
		}
		if !existing[q.ID] {
			return nil, UnknownQuestionError{ID: q.ID}
		}
		submittedIDs[q.ID] = true
	}

	var deleteIDs []int
	for id := range existing {
		if !submittedIDs[id] {
			deleteIDs = append(deleteIDs, id)
		}
	}
	sort.Ints(deleteIDs)
	if len(deleteIDs) > 0 {
		toDelete := make([]any, len(deleteIDs))
		for i, id := range deleteIDs {
			toDelete[i] = id
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(deleteIDs)), ",")
		_, err = tx.ExecContext(ctx, `
			DELETE FROM survey_question
			WHERE id IN (`+placeholders+`)`,
			toDelete...,
		)
		if err != nil {
			return nil, errors.Wrap(err, "delete questions")
		}
	}

	result := make([]model.Question, len(submitted))
	for i, q := range submitted {
		dataJSON, err := validateQuestion(q)
		if err != nil {
			return nil, err
		}

		if q.ID == 0 {
			err = tx.QueryRowContext(ctx, `
				INSERT INTO survey_question (survey_id, question, type, description, data)
				VALUES (?, ?, ?, ?, ?)
				RETURNING id`,
				surveyID, q.Question, q.Type, q.Description, dataJSON,
			).Scan(&q.ID)
			if err != nil {
				return nil, errors.Wrap(err, "insert question")
			}
		} else {
			_, err = tx.ExecContext(ctx, `
				UPDATE survey_question
				SET question = ?, type = ?, description = ?, data = ?
				WHERE id = ? AND survey_id = ?`,
				q.Question, q.Type, q.Description, dataJSON, q.ID, surveyID,
			)
			if err != nil {
				return nil, errors.Wrap(err, "update question")
			}
		}
		result[i] = q
	}

	return result, nil
}

func questionIDs(ctx context.Context, tx *sql.Tx, surveyID int) (map[int]bool, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id FROM survey_question
		WHERE survey_id = ?`,
		surveyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}
