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
	"github.com/qforms/qforms/routes/middlewares"
	"github.com/qforms/qforms/survey"
)

const surveysPerPage = 5

func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middlewares.UserID(r)

		s := model.Survey{}
		err := render.DecodeJSON(r.Body, &s)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if err = survey.Validate(s, time.Now()); err != nil {
			renderCoreError(w, "create_survey.validate", err)
			return
		}

		var imagePath string
		if s.Image != "" {
			imagePath, err = app.Images.Save(s.Image)
			if err != nil {
				renderCoreError(w, "create_survey.image", err)
				return
			}
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			app.Images.Delete(imagePath)
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		slug := survey.Slugify(s.Title)
		var surveyID int
		var createdAt time.Time
		err = tx.QueryRowContext(r.Context(), `
			INSERT INTO survey (user_id, title, slug, description, status, image, expire_date)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			RETURNING id, created_at`,
			userID, s.Title, slug, s.Description, s.Status, imagePath, s.ExpireDate,
		).Scan(&surveyID, &createdAt)
		if err != nil {
			app.Images.Delete(imagePath)
			httpx.LogInternalError(w, "db.insert_survey", err)
			return
		}

		questions, err := survey.Reconcile(r.Context(), tx, surveyID, s.Questions)
		if err != nil {
			app.Images.Delete(imagePath)
			renderCoreError(w, "db.insert_survey.questions", err)
			return
		}

		if err = tx.Commit(); err != nil {
			app.Images.Delete(imagePath)
			httpx.LogInternalError(w, "db.insert_survey.commit", err)
			return
		}

		s.ID = surveyID
		s.UserID = userID
		s.Slug = slug
		s.Image = ""
		s.ImageURL = imagePath
		s.CreatedAt = createdAt
		s.Questions = questions

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, s)
	}
}

func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middlewares.UserID(r)

		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 {
			page = 1
		}

		surveys, total, err := survey.ListByOwner(r.Context(), app.DB, userID, page, surveysPerPage)
		if err != nil {
			httpx.LogInternalError(w, "db.get_surveys", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"surveys": surveys,
			"meta": map[string]any{
				"total":    total,
				"page":     page,
				"per_page": surveysPerPage,
			},
		})
	}
}

func GetSurveyById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := fetchOwnSurvey(w, r, app, "get_survey")
		if !ok {
			return
		}
		render.JSON(w, r, s)
	}
}

func UpdateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stored, ok := fetchOwnSurvey(w, r, app, "update_survey")
		if !ok {
			return
		}

		s := model.Survey{}
		err := render.DecodeJSON(r.Body, &s)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if err = survey.Validate(s, time.Now()); err != nil {
			renderCoreError(w, "update_survey.validate", err)
			return
		}

		imagePath := stored.ImageURL
		if s.Image != "" {
			imagePath, err = app.Images.Save(s.Image)
			if err != nil {
				renderCoreError(w, "update_survey.image", err)
				return
			}
		}
		// a replacement image is only durable once the row update commits
		discardNewImage := func() {
			if imagePath != stored.ImageURL {
				app.Images.Delete(imagePath)
			}
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			discardNewImage()
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(r.Context(), `
			UPDATE survey
			SET title = ?, description = ?, status = ?, image = ?, expire_date = ?
			WHERE id = ?`,
			s.Title, s.Description, s.Status, imagePath, s.ExpireDate, stored.ID,
		)
		if err != nil {
			discardNewImage()
			httpx.LogInternalError(w, "db.update_survey", err)
			return
		}

		questions, err := survey.Reconcile(r.Context(), tx, stored.ID, s.Questions)
		if err != nil {
			discardNewImage()
			renderCoreError(w, "db.update_survey.questions", err)
			return
		}

		if err = tx.Commit(); err != nil {
			discardNewImage()
			httpx.LogInternalError(w, "db.update_survey.commit", err)
			return
		}

		// replaced image: drop the old file once the new path is durable
		if imagePath != stored.ImageURL {
			if err := app.Images.Delete(stored.ImageURL); err != nil {
				log.Warnf("update_survey.delete_image: %s", err)
			}
		}

		s.ID = stored.ID
		s.UserID = stored.UserID
		s.Slug = stored.Slug
		s.Image = ""
		s.ImageURL = imagePath
		s.CreatedAt = stored.CreatedAt
		s.Questions = questions

		render.JSON(w, r, s)
	}
}

func DeleteSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := fetchOwnSurvey(w, r, app, "delete_survey")
		if !ok {
			return
		}

		// questions, sessions and answers go with the survey row
		_, err := app.ExecContext(r.Context(),
			"DELETE FROM survey WHERE id = ?", s.ID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_survey", err)
			return
		}

		if err := app.Images.Delete(s.ImageURL); err != nil {
			log.Warnf("delete_survey.delete_image: %s", err)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func Dashboard(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middlewares.UserID(r)

		dashboard, err := survey.AggregateDashboard(r.Context(), app.DB, userID)
		if err != nil {
			httpx.LogInternalError(w, "db.dashboard", err)
			return
		}

		render.JSON(w, r, dashboard)
	}
}

// fetchOwnSurvey loads the survey addressed by the id URL param and
// enforces ownership: missing id or survey is reported as 404, a foreign
// owner as 403. Reports false after writing the error response.
func fetchOwnSurvey(w http.ResponseWriter, r *http.Request, app app.App, code string) (model.Survey, bool) {
	s := model.Survey{}

	surveyID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
		return s, false
	}

	s, err = survey.GetByID(r.Context(), app.DB, surveyID)
	if errors.Is(err, survey.ErrNotFound) {
		httpx.LogNotFound(w, code, surveyID)
		return s, false
	}
	if err != nil {
		httpx.LogInternalError(w, "db."+code, err)
		return s, false
	}

	if s.UserID != middlewares.UserID(r) {
		httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, code+".owner")
		return s, false
	}
	return s, true
}

// renderCoreError maps survey package errors to HTTP statuses.
func renderCoreError(w http.ResponseWriter, code string, err error) {
	var validation survey.ValidationError
	var unknownQuestion survey.UnknownQuestionError
	var invalidQuestion survey.InvalidQuestionError

	switch {
	case errors.As(err, &validation):
		httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, code, validation.Error())
	case errors.As(err, &unknownQuestion):
		httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, code, unknownQuestion.Error())
	case errors.As(err, &invalidQuestion):
		httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, code, invalidQuestion.Error())
	case errors.Is(err, survey.ErrNotFound):
		httpx.LogNotFound(w, code, nil)
	default:
		httpx.LogInternalError(w, code, err)
	}
}
