package app

import (
	"database/sql"

	"github.com/go-chi/oauth"
	"github.com/qforms/qforms/config"
	"github.com/qforms/qforms/survey"
)

type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config
	Images survey.ImageStore
}
