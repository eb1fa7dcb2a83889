package models

import "time"

// Chat is a negotiation chat owned by one vacancy.
type Chat struct {
	ID               int64      `json:"id"`
	VacancyID        int64      `json:"vacancy_id"`
	RemoteChatID     string     `json:"remote_chat_id"`
	EmployerName     string     `json:"employer_name"`
	IsBot            bool       `json:"is_bot"`
	IsHumanConfirmed bool       `json:"is_human_confirmed"`
	TelegramInvited  bool       `json:"telegram_invited"`
	LastMessageAt    *time.Time `json:"last_message_at,omitempty"`
	UnreadCount      int        `json:"unread_count"`
}

// Message author types.
const (
	AuthorApplicant = "applicant"
	AuthorEmployer  = "employer"
)

// ChatMessage is a single message in a chat. RemoteMessageID is nil for
// locally originated outgoing messages.
type ChatMessage struct {
	ID              int64     `json:"id"`
	ChatID          int64     `json:"chat_id"`
	RemoteMessageID *string   `json:"remote_message_id,omitempty"`
	AuthorType      string    `json:"author_type"`
	Text            string    `json:"text"`
	IsAutoResponse  bool      `json:"is_auto_response"`
	AISentiment     *string   `json:"ai_sentiment,omitempty"`
	AIIntent        *string   `json:"ai_intent,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
