package survey

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/qforms/qforms/model"
)

// AggregateDashboard summarizes one user's surveys: totals plus the most
// recent survey and the five most recent answer-sessions. Read-only; a
// user with no surveys gets zeros and empty collections.
func AggregateDashboard(ctx context.Context, db *sql.DB, userID int) (model.Dashboard, error) {
	dashboard := model.Dashboard{
		LatestAnswers: []model.DashboardAnswer{},
	}

	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM survey
		WHERE user_id = ?`,
		userID,
	).Scan(&dashboard.TotalSurveys)
	if err != nil {
		return dashboard, errors.Wrap(err, "count surveys")
	}

	latest := model.DashboardSurvey{}
	var expireDate sql.NullTime
	err = db.QueryRowContext(ctx, `
		SELECT
			s.id, s.title, s.slug, s.status, s.image, s.created_at, s.expire_date,
			(SELECT COUNT(*) FROM survey_question q WHERE q.survey_id = s.id),
			(SELECT COUNT(*) FROM survey_answer a WHERE a.survey_id = s.id)
		FROM survey s
		WHERE s.user_id = ?
		ORDER BY s.created_at DESC
		LIMIT 1`,
		userID,
	).Scan(
		&latest.ID, &latest.Title, &latest.Slug, &latest.Status, &latest.ImageURL,
		&latest.CreatedAt, &expireDate, &latest.Questions, &latest.Answers,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// no surveys yet
	case err != nil:
		return dashboard, errors.Wrap(err, "latest survey")
	default:
		if expireDate.Valid {
			latest.ExpireDate = &expireDate.Time
		}
		dashboard.LatestSurvey = &latest
	}

	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM survey_answer a
		INNER JOIN survey s ON (a.survey_id = s.id)
		WHERE s.user_id = ?`,
		userID,
	).Scan(&dashboard.TotalAnswers)
	if err != nil {
		return dashboard, errors.Wrap(err, "count answers")
	}

	rows, err := db.QueryContext(ctx, `
		SELECT a.id, s.title, a.start_date, a.end_date
		FROM survey_answer a
		INNER JOIN survey s ON (a.survey_id = s.id)
		WHERE s.user_id = ?
		ORDER BY a.end_date DESC
		LIMIT 5`,
		userID,
	)
	if err != nil {
		return dashboard, errors.Wrap(err, "latest answers")
	}
	defer rows.Close()

	for rows.Next() {
		a := model.DashboardAnswer{}
		if err := rows.Scan(&a.ID, &a.Survey, &a.StartDate, &a.EndDate); err != nil {
			return dashboard, errors.Wrap(err, "latest answers scan")
		}
		dashboard.LatestAnswers = append(dashboard.LatestAnswers, a)
	}
	return dashboard, rows.Err()
}
