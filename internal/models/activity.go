package models

import "time"

// Activity event types.
const (
	EventSystem   = "system"
	EventSearch   = "search"
	EventAI       = "ai"
	EventApply    = "apply"
	EventResponse = "response"
	EventChat     = "chat"
	EventInvite   = "invite"
	EventError    = "error"
)

// ActivityEvent is one row of the append-only activity log.
type ActivityEvent struct {
	ID          int64     `json:"id"`
	EventType   string    `json:"event_type"`
	VacancyID   *int64    `json:"vacancy_id,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// DailyStats aggregates per-day counters, upserted by date (YYYY-MM-DD).
type DailyStats struct {
	Date                string `json:"date"`
	SearchesCount       int    `json:"searches_count"`
	VacanciesFound      int    `json:"vacancies_found"`
	ApplicationsSent    int    `json:"applications_sent"`
	InvitationsReceived int    `json:"invitations_received"`
	RejectionsReceived  int    `json:"rejections_received"`
	TelegramInvitesSent int    `json:"telegram_invites_sent"`
}
