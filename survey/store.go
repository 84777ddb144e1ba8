package survey

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/qforms/qforms/model"
)

// GetByID fetches one survey with its questions.
func GetByID(ctx context.Context, db *sql.DB, id int) (model.Survey, error) {
	return getSurvey(ctx, db, "s.id = ?", id)
}

// GetBySlug fetches one survey with its questions by its public slug.
func GetBySlug(ctx context.Context, db *sql.DB, slug string) (model.Survey, error) {
	return getSurvey(ctx, db, "s.slug = ?", slug)
}

func getSurvey(ctx context.Context, db *sql.DB, where string, arg any) (model.Survey, error) {
	s := model.Survey{}
	var expireDate sql.NullTime
	err := db.QueryRowContext(ctx, `
		SELECT s.id, s.user_id, s.title, s.slug, s.description, s.status,
			s.image, s.expire_date, s.created_at
		FROM survey s
		WHERE `+where,
		arg,
	).Scan(
		&s.ID, &s.UserID, &s.Title, &s.Slug, &s.Description, &s.Status,
		&s.ImageURL, &expireDate, &s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrNotFound
	}
	if err != nil {
		return s, errors.Wrap(err, "get survey")
	}
	if expireDate.Valid {
		s.ExpireDate = &expireDate.Time
	}

	s.Questions, err = Questions(ctx, db, s.ID)
	return s, err
}

// Questions loads the question list of a survey in creation order.
func Questions(ctx context.Context, db *sql.DB, surveyID int) ([]model.Question, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, question, type, description, data
		FROM survey_question
		WHERE survey_id = ?
		ORDER BY id`,
		surveyID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "get questions")
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		q := model.Question{}
		var data string
		if err := rows.Scan(&q.ID, &q.Question, &q.Type, &q.Description, &data); err != nil {
			return nil, errors.Wrap(err, "scan question")
		}
		q.Data, err = ParseQuestionData(data)
		if err != nil {
			return nil, errors.Wrap(err, "parse question data")
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ListByOwner returns one page of a user's surveys, newest first, plus the
// total count. Questions are not loaded for listings.
func ListByOwner(ctx context.Context, db *sql.DB, userID, page, perPage int) ([]model.Survey, int, error) {
	var total int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM survey
		WHERE user_id = ?`,
		userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count surveys")
	}

	rows, err := db.QueryContext(ctx, `
		SELECT s.id, s.user_id, s.title, s.slug, s.description, s.status,
			s.image, s.expire_date, s.created_at
		FROM survey s
		WHERE s.user_id = ?
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT ? OFFSET ?`,
		userID, perPage, (page-1)*perPage,
	)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list surveys")
	}
	defer rows.Close()

	surveys := []model.Survey{}
	for rows.Next() {
		s := model.Survey{}
		var expireDate sql.NullTime
		err = rows.Scan(
			&s.ID, &s.UserID, &s.Title, &s.Slug, &s.Description, &s.Status,
			&s.ImageURL, &expireDate, &s.CreatedAt,
		)
		if err != nil {
			return nil, 0, errors.Wrap(err, "scan survey")
		}
		if expireDate.Valid {
			s.ExpireDate = &expireDate.Time
		}
		surveys = append(surveys, s)
	}
	return surveys, total, rows.Err()
}
