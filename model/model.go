package model

import "time"

type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionTextarea QuestionType = "textarea"
	QuestionSelect   QuestionType = "select"
	QuestionRadio    QuestionType = "radio"
	QuestionCheckbox QuestionType = "checkbox"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionText, QuestionTextarea, QuestionSelect, QuestionRadio, QuestionCheckbox:
		return true
	}
	return false
}

// HasOptions reports whether the type carries an option list in its
// configuration payload.
func (t QuestionType) HasOptions() bool {
	switch t {
	case QuestionSelect, QuestionRadio, QuestionCheckbox:
		return true
	}
	return false
}

// QuestionData is the type-specific configuration of a question.
// Only option-bearing types (select, radio, checkbox) populate it.
type QuestionData struct {
	Options []string `json:"options,omitempty"`
}

type Question struct {
	ID          int           `json:"id,omitempty"`
	Question    string        `json:"question"`
	Type        QuestionType  `json:"type"`
	Description string        `json:"description,omitempty"`
	Data        *QuestionData `json:"data,omitempty"`
}

type SurveyStatus string

const (
	StatusDraft     SurveyStatus = "draft"
	StatusPublished SurveyStatus = "published"
	StatusClosed    SurveyStatus = "closed"
)

func (s SurveyStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusClosed:
		return true
	}
	return false
}

type Survey struct {
	ID          int          `json:"id,omitempty"`
	UserID      int          `json:"-"`
	Title       string       `json:"title"`
	Slug        string       `json:"slug,omitempty"`
	Description string       `json:"description,omitempty"`
	Status      SurveyStatus `json:"status"`
	// Image carries an inbound data-URL encoded image; never echoed back.
	Image      string     `json:"image,omitempty"`
	ImageURL   string     `json:"image_url,omitempty"`
	ExpireDate *time.Time `json:"expire_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at,omitempty"`
	Questions  []Question `json:"questions"`
}

// AnswerSubmission is one public answer POST: question id (as JSON object
// key) mapped to the submitted value, scalar or list.
type AnswerSubmission struct {
	Answers map[string]any `json:"answers"`
}

type Dashboard struct {
	TotalSurveys  int               `json:"totalSurveys"`
	LatestSurvey  *DashboardSurvey  `json:"latestSurvey"`
	TotalAnswers  int               `json:"totalAnswers"`
	LatestAnswers []DashboardAnswer `json:"latestAnswers"`
}

type DashboardSurvey struct {
	ID         int          `json:"id"`
	Title      string       `json:"title"`
	Slug       string       `json:"slug"`
	Status     SurveyStatus `json:"status"`
	ImageURL   string       `json:"image_url,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	ExpireDate *time.Time   `json:"expire_date,omitempty"`
	Questions  int          `json:"questions"`
	Answers    int          `json:"answers"`
}

type DashboardAnswer struct {
	ID        int       `json:"id"`
	Survey    string    `json:"survey"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}
