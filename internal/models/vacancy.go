package models

import "time"

// VacancyStatus is the local lifecycle state of a tracked vacancy.
type VacancyStatus string

const (
	VacancyFound   VacancyStatus = "found"
	VacancySkipped VacancyStatus = "skipped"
	VacancyApplied VacancyStatus = "applied"
	VacancyViewed  VacancyStatus = "viewed"
	VacancyInvited VacancyStatus = "invited"
	VacancyRejected VacancyStatus = "rejected"
)

// AI recommendation values returned by vacancy evaluation.
const (
	RecommendApply    = "apply"
	RecommendConsider = "consider"
	RecommendSkip     = "skip"
)

// Vacancy is a job-board vacancy observed by the search pipeline.
// AI fields are nil when evaluation failed or was skipped.
type Vacancy struct {
	ID                 int64         `json:"id"`
	RemoteID           string        `json:"remote_vacancy_id"`
	Title              string        `json:"title"`
	Company            string        `json:"company"`
	SalaryFrom         *int          `json:"salary_from,omitempty"`
	SalaryTo           *int          `json:"salary_to,omitempty"`
	Currency           *string       `json:"currency,omitempty"`
	Description        string        `json:"description"`
	URL                string        `json:"url"`
	Status             VacancyStatus `json:"status"`
	FoundAt            time.Time     `json:"found_at"`
	AppliedAt          *time.Time    `json:"applied_at,omitempty"`
	AIScore            *int          `json:"ai_score,omitempty"`
	AIRecommendation   *string       `json:"ai_recommendation,omitempty"`
	AIPriority         *int          `json:"ai_priority,omitempty"`
	AIMatchReasons     []string      `json:"ai_match_reasons,omitempty"`
	AIConcerns         []string      `json:"ai_concerns,omitempty"`
	AISalaryAssessment *string       `json:"ai_salary_assessment,omitempty"`
}

// Application is a submitted negotiation owned by one vacancy.
type Application struct {
	ID                  int64     `json:"id"`
	VacancyID           int64     `json:"vacancy_id"`
	RemoteNegotiationID string    `json:"remote_negotiation_id"`
	CoverLetter         string    `json:"cover_letter"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"created_at"`
}

// ApplicationSent is the status of a freshly submitted application.
const ApplicationSent = "sent"
