package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSurveyByIdOwnerMismatch(t *testing.T) {
	app, mock := newTestApp(t)

	expectGetSurvey(mock, 5, publishedSurveyRow(5, 99), mock.NewRows(questionColumns))

	req := httptest.NewRequest("GET", "/api/surveys/5", nil)
	req = asUser(withURLParam(req, "id", "5"), 1)
	resp := httptest.NewRecorder()
	GetSurveyById(app)(resp, req)

	require.Equal(t, http.StatusForbidden, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSurveyByIdNotFound(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery("SELECT s.id, s.user_id").
		WithArgs(5).
		WillReturnRows(mock.NewRows(surveyColumns))

	req := httptest.NewRequest("GET", "/api/surveys/5", nil)
	req = asUser(withURLParam(req, "id", "5"), 1)
	resp := httptest.NewRecorder()
	GetSurveyById(app)(resp, req)

	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSurveyReconciles(t *testing.T) {
	app, mock := newTestApp(t)

	expectGetSurvey(mock, 5, publishedSurveyRow(5, 42),
		mock.NewRows(questionColumns).
			AddRow(1, "Old question", "text", "", "").
			AddRow(2, "Doomed question", "text", "", ""))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE survey").
		WithArgs("New title", "", "published", "", nil, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id FROM survey_question").
		WithArgs(5).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectExec("DELETE FROM survey_question").
		WithArgs(2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE survey_question").
		WithArgs("Old question, changed", "text", "", "", 1, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO survey_question").
		WithArgs(5, "Brand new", "textarea", "", "").
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectCommit()

	payload := `{
		"title": "New title",
		"status": "published",
		"questions": [
			{"id": 1, "question": "Old question, changed", "type": "text"},
			{"question": "Brand new", "type": "textarea"}
		]
	}`
	req := httptest.NewRequest("PUT", "/api/surveys/5", strings.NewReader(payload))
	req = asUser(withURLParam(req, "id", "5"), 42)
	resp := httptest.NewRecorder()
	UpdateSurvey(app)(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	questions := body["questions"].([]any)
	require.Len(t, questions, 2)
	assert.Equal(t, float64(1), questions[0].(map[string]any)["id"])
	assert.Equal(t, float64(9), questions[1].(map[string]any)["id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardNoSurveys(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM survey").
		WithArgs(42).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("ORDER BY s.created_at DESC").
		WithArgs(42).
		WillReturnRows(mock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WithArgs(42).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("ORDER BY a.end_date DESC").
		WithArgs(42).
		WillReturnRows(mock.NewRows([]string{"id", "title", "start_date", "end_date"}))

	req := asUser(httptest.NewRequest("GET", "/api/dashboard", nil), 42)
	resp := httptest.NewRecorder()
	Dashboard(app)(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(0), body["totalSurveys"])
	assert.Equal(t, float64(0), body["totalAnswers"])
	assert.Nil(t, body["latestSurvey"])
	assert.Equal(t, []any{}, body["latestAnswers"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSurveysPagination(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM survey").
		WithArgs(42).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery("SELECT s.id, s.user_id").
		WithArgs(42, 5, 5).
		WillReturnRows(mock.NewRows(surveyColumns).AddRow(publishedSurveyRow(3, 42)...))

	req := asUser(httptest.NewRequest("GET", "/api/surveys?page=2", nil), 42)
	resp := httptest.NewRecorder()
	ListSurveys(app)(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	meta := body["meta"].(map[string]any)
	assert.Equal(t, float64(7), meta["total"])
	assert.Equal(t, float64(2), meta["page"])
	require.Len(t, body["surveys"].([]any), 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSurvey(t *testing.T) {
	app, mock := newTestApp(t)

	expectGetSurvey(mock, 5, publishedSurveyRow(5, 42), mock.NewRows(questionColumns))
	mock.ExpectExec("DELETE FROM survey").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest("DELETE", "/api/surveys/5", nil)
	req = asUser(withURLParam(req, "id", "5"), 42)
	resp := httptest.NewRecorder()
	DeleteSurvey(app)(resp, req)

	require.Equal(t, http.StatusNoContent, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSurveyRejectsBadPayload(t *testing.T) {
	app, mock := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/surveys",
		strings.NewReader(`{"title":"","status":"draft","questions":[]}`))
	req = asUser(req, 42)
	resp := httptest.NewRecorder()
	CreateSurvey(app)(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "title")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginRejectsBadBody(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/login", strings.NewReader("not json"))
	resp := httptest.NewRecorder()
	Login(app)(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}
