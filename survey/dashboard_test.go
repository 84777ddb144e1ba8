package survey

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var latestSurveyColumns = []string{
	"id", "title", "slug", "status", "image", "created_at", "expire_date",
	"questions", "answers",
}

func TestAggregateDashboard(t *testing.T) {
	db, mock := newMock(t)

	createdAt := time.Date(2023, 3, 15, 9, 0, 0, 0, time.UTC)
	endDate := time.Date(2023, 3, 20, 18, 30, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM survey").
		WithArgs(42).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("ORDER BY s.created_at DESC").
		WithArgs(42).
		WillReturnRows(mock.NewRows(latestSurveyColumns).
			AddRow(5, "Customer feedback", "customer-feedback-ab12cd34", "published",
				"images/pic.png", createdAt, nil, 4, 12))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WithArgs(42).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery("ORDER BY a.end_date DESC").
		WithArgs(42).
		WillReturnRows(mock.NewRows([]string{"id", "title", "start_date", "end_date"}).
			AddRow(31, "Customer feedback", endDate, endDate).
			AddRow(30, "Customer feedback", createdAt, createdAt))

	dashboard, err := AggregateDashboard(context.Background(), db, 42)
	require.NoError(t, err)

	assert.Equal(t, 3, dashboard.TotalSurveys)
	assert.Equal(t, 12, dashboard.TotalAnswers)
	require.NotNil(t, dashboard.LatestSurvey)
	assert.Equal(t, 5, dashboard.LatestSurvey.ID)
	assert.Equal(t, "customer-feedback-ab12cd34", dashboard.LatestSurvey.Slug)
	assert.Equal(t, 4, dashboard.LatestSurvey.Questions)
	assert.Equal(t, 12, dashboard.LatestSurvey.Answers)
	assert.Nil(t, dashboard.LatestSurvey.ExpireDate)
	require.Len(t, dashboard.LatestAnswers, 2)
	assert.Equal(t, 31, dashboard.LatestAnswers[0].ID)
	assert.Equal(t, "Customer feedback", dashboard.LatestAnswers[0].Survey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregateDashboardNoSurveys(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM survey").
		WithArgs(42).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("ORDER BY s.created_at DESC").
		WithArgs(42).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WithArgs(42).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("ORDER BY a.end_date DESC").
		WithArgs(42).
		WillReturnRows(mock.NewRows([]string{"id", "title", "start_date", "end_date"}))

	dashboard, err := AggregateDashboard(context.Background(), db, 42)
	require.NoError(t, err)

	assert.Equal(t, 0, dashboard.TotalSurveys)
	assert.Equal(t, 0, dashboard.TotalAnswers)
	assert.Nil(t, dashboard.LatestSurvey)
	assert.NotNil(t, dashboard.LatestAnswers)
	assert.Empty(t, dashboard.LatestAnswers)
	assert.NoError(t, mock.ExpectationsWereMet())
}
