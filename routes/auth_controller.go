package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-chi/render"
	"github.com/qforms/qforms/app"
	"github.com/qforms/qforms/httpx"
	"github.com/qforms/qforms/log"
	"github.com/qforms/qforms/routes/middlewares"
	"golang.org/x/crypto/bcrypt"
)

var reEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Register(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg := registration{}
		err := render.DecodeJSON(r.Body, &reg)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "register.parse_body")
			return
		}

		if msg := validateRegistration(reg); msg != "" {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "register.validate", msg)
			return
		}

		var taken bool
		err = app.QueryRowContext(r.Context(),
			"SELECT 1 FROM user WHERE email = ?", reg.Email,
		).Scan(&taken)
		if err == nil && taken {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "register.email_taken",
				"email already in use")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
		if err != nil {
			httpx.LogInternalError(w, "register.hash", err)
			return
		}

		var userID int
		err = app.QueryRowContext(r.Context(), `
			INSERT INTO user (name, email, password_hash) VALUES (?, ?, ?)
			RETURNING id`,
			reg.Name, reg.Email, hash,
		).Scan(&userID)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_user", err)
			return
		}

		token, status := issueToken(app, reg.Email, reg.Password)
		if status != http.StatusOK {
			httpx.LogStatus(w, status, log.ErrorLevel, "register.issue_token")
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"user": map[string]any{
				"id":    userID,
				"name":  reg.Name,
				"email": reg.Email,
			},
			"token": token,
		})
	}
}

func validateRegistration(reg registration) string {
	if strings.TrimSpace(reg.Name) == "" {
		return "name is required"
	}
	if !reEmail.MatchString(reg.Email) {
		return "invalid email address"
	}
	if len(reg.Password) < 8 {
		return "password must be at least 8 characters"
	}
	var upper, lower, digit bool
	for _, c := range reg.Password {
		switch {
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsLower(c):
			lower = true
		case unicode.IsDigit(c):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return "password must mix upper case, lower case and digits"
	}
	return ""
}

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds := credentials{}
		err := render.DecodeJSON(r.Body, &creds)
		if err != nil || creds.Email == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "login.parse_body")
			return
		}

		body := url.Values{
			"grant_type": {"password"},
			"username":   {creds.Email},
			"password":   {creds.Password},
		}
		r.Body = io.NopCloser(strings.NewReader(body.Encode()))
		r.Header.Set("content-type", "application/x-www-form-urlencoded")
		r.Header.Set("content-length", strconv.Itoa(len(body.Encode())))
		app.UserCredentials(w, r)
	}
}

func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("authorization")
		match := regexp.MustCompile(`(?i)^refresh\s+(.*)`).FindStringSubmatch(auth)
		if len(match) == 0 {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}
		token := match[1]

		body := url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {token},
		}

		req, err := http.NewRequest("POST", "/", strings.NewReader(body.Encode()))
		if err != nil {
			httpx.LogStatus(w, http.StatusInternalServerError, log.DebugLevel, "refresh.new_request")
			return
		}
		req.Header.Set("content-type", "application/x-www-form-urlencoded")
		req.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

		resp := httpx.NewResponseBuffer()
		app.UserCredentials(resp, req)
		resp.Flush(w)
	}
}

func Logout(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := middlewares.Credential(r)
		if email == "" {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "logout.credential")
			return
		}

		// revokes all refresh tokens; access tokens lapse with their TTL
		_, err := app.ExecContext(r.Context(),
			"DELETE FROM token WHERE username = ?", email,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_tokens", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"success": true,
		})
	}
}

// issueToken runs a password grant against the bearer server and returns
// the decoded token response.
func issueToken(app app.App, email, password string) (map[string]any, int) {
	body := url.Values{
		"grant_type": {"password"},
		"username":   {email},
		"password":   {password},
	}
	req, err := http.NewRequest("POST", "/", strings.NewReader(body.Encode()))
	if err != nil {
		return nil, http.StatusInternalServerError
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	req.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

	resp := httpx.NewResponseBuffer()
	app.UserCredentials(resp, req)
	if resp.Status() != 0 && resp.Status() != http.StatusOK {
		return nil, resp.Status()
	}

	var token map[string]any
	if err := json.Unmarshal(resp.Body(), &token); err != nil {
		return nil, http.StatusInternalServerError
	}
	return token, http.StatusOK
}
