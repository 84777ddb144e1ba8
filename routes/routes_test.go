package routes

import (
	"context"
	"database/sql/driver"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/qforms/qforms/app"
	"github.com/qforms/qforms/config"
	"github.com/qforms/qforms/routes/middlewares"
	"github.com/stretchr/testify/require"
)

var surveyColumns = []string{
	"id", "user_id", "title", "slug", "description", "status",
	"image", "expire_date", "created_at",
}

var questionColumns = []string{"id", "question", "type", "description", "data"}

func newTestApp(t *testing.T) (app.App, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return app.App{
		DB:     db,
		Config: config.Config{TokenSecret: "test-secret", PublicDir: t.TempDir()},
	}, mock
}

func asUser(r *http.Request, userID int) *http.Request {
	return r.WithContext(middlewares.WithUserID(r.Context(), userID))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func expectGetSurvey(mock sqlmock.Sqlmock, surveyID int, row []driver.Value, questions *sqlmock.Rows) {
	mock.ExpectQuery("SELECT s.id, s.user_id").
		WithArgs(surveyID).
		WillReturnRows(mock.NewRows(surveyColumns).AddRow(row...))
	mock.ExpectQuery("SELECT id, question").
		WithArgs(surveyID).
		WillReturnRows(questions)
}
