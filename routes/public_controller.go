package routes

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/qforms/qforms/app"
	"github.com/qforms/qforms/httpx"
	"github.com/qforms/qforms/log"
	"github.com/qforms/qforms/model"
	"github.com/qforms/qforms/survey"
)

// PublicGetSurveyBySlug serves a survey to anonymous respondents.
func PublicGetSurveyBySlug(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		s, err := survey.GetBySlug(r.Context(), app.DB, slug)
		if errors.Is(err, survey.ErrNotFound) {
			httpx.LogNotFound(w, "view_survey", slug)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.view_survey", err)
			return
		}

		s.UserID = 0
		render.JSON(w, r, s)
	}
}

// PublicSubmitAnswers records one anonymous submission against a survey.
func PublicSubmitAnswers(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		submission := model.AnswerSubmission{}
		err = render.DecodeJSON(r.Body, &submission)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		s, err := survey.GetByID(r.Context(), app.DB, surveyID)
		if errors.Is(err, survey.ErrNotFound) {
			httpx.LogNotFound(w, "submit_answers", surveyID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.submit_answers", err)
			return
		}

		now := time.Now()
		if s.Status != model.StatusPublished {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "submit_answers.not_published")
			return
		}
		if s.ExpireDate != nil && s.ExpireDate.Before(now) {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "submit_answers.expired")
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		sessionID, err := survey.IngestAnswers(r.Context(), tx, surveyID, submission.Answers, now)
		if err != nil {
			renderCoreError(w, "db.insert_answers", err)
			return
		}

		if err = tx.Commit(); err != nil {
			httpx.LogInternalError(w, "db.insert_answers.commit", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": sessionID,
		})
	}
}
