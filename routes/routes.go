package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/qforms/qforms/app"
	"github.com/qforms/qforms/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))
	root.Mount("/", http.FileServer(http.Dir(app.PublicDir)))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Post("/register", Register(app))
	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	// public answering surface
	api.Get("/view/survey/{slug}", PublicGetSurveyBySlug(app))
	api.Post(`/view/survey/{id:^\d+$}/answer`, PublicSubmitAnswers(app))

	api.Group(func(r chi.Router) {
		r.Use(middlewares.Authenticated(app.TokenSecret))

		r.Post("/logout", Logout(app))

		// CRUD survey
		r.Post("/surveys", CreateSurvey(app))
		r.Get("/surveys", ListSurveys(app))
		r.Get(`/surveys/{id:^\d+$}`, GetSurveyById(app))
		r.Put(`/surveys/{id:^\d+$}`, UpdateSurvey(app))
		r.Delete(`/surveys/{id:^\d+$}`, DeleteSurvey(app))

		r.Get("/dashboard", Dashboard(app))
	})

	return api
}
