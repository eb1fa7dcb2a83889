package storage

import (
	"context"
	"errors"
	"time"

	"github.com/xaenox/hh-agent/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("storage: not found")

// ErrDuplicate is returned when an insert violates a uniqueness key
// (remote vacancy id, remote chat id, remote negotiation or message id).
var ErrDuplicate = errors.New("storage: duplicate")

// Storage is the persistence contract of the agent. It is implemented by
// PostgresStorage for production and MemoryStorage for tests.
type Storage interface {
	// OAuth tokens are append-only; only the latest pair is authoritative.
	SaveTokenPair(ctx context.Context, pair *models.OAuthTokenPair) error
	LatestTokenPair(ctx context.Context) (*models.OAuthTokenPair, error)

	// Search settings singleton, written by the admin surface.
	GetSearchSettings(ctx context.Context) (*models.SearchSettings, error)
	SaveSearchSettings(ctx context.Context, s *models.SearchSettings) error

	// Search tags, unique by (tag_type, value).
	UpsertSearchTag(ctx context.Context, tagType, value string) (*models.SearchTag, error)
	ListActiveSearchTags(ctx context.Context, tagType string) ([]*models.SearchTag, error)
	IncrementTagCounters(ctx context.Context, tagID int64, searches, found, applied int) error

	// Vacancies, unique by remote id.
	CreateVacancy(ctx context.Context, v *models.Vacancy) error
	VacancyExists(ctx context.Context, remoteID string) (bool, error)
	GetVacancyByRemoteID(ctx context.Context, remoteID string) (*models.Vacancy, error)
	GetVacancyByID(ctx context.Context, id int64) (*models.Vacancy, error)
	UpdateVacancyStatus(ctx context.Context, id int64, status models.VacancyStatus, appliedAt *time.Time) error
	LatestVacancyFoundAt(ctx context.Context) (*time.Time, error)

	CreateApplication(ctx context.Context, a *models.Application) error
	UpdateApplicationStatusByVacancy(ctx context.Context, vacancyID int64, status string) error

	CreateChat(ctx context.Context, c *models.Chat) error
	// ListActiveChats returns chats whose vacancy is applied, viewed or invited.
	ListActiveChats(ctx context.Context) ([]*models.Chat, error)
	TouchChatOnMessage(ctx context.Context, chatID int64, isBot bool) error
	MarkChatTelegramInvited(ctx context.Context, chatID int64) error

	CreateChatMessage(ctx context.Context, m *models.ChatMessage) error
	ListChatMessages(ctx context.Context, chatID int64) ([]*models.ChatMessage, error)
	ChatMessageExists(ctx context.Context, remoteMessageID string) (bool, error)
	LastRemoteMessageID(ctx context.Context, chatID int64) (string, error)

	// Activity log, append-only.
	LogActivity(ctx context.Context, eventType string, vacancyID *int64, description string) error
	ListRecentEvents(ctx context.Context, limit int) ([]*models.ActivityEvent, error)

	// Daily stats, upserted by date with relative counter additions.
	AddDailyStats(ctx context.Context, date string, delta models.DailyStats) error
	GetDailyStats(ctx context.Context, date string) (*models.DailyStats, error)

	Close() error
}

// PortfolioStore is the read contract over the externally owned portfolio.
type PortfolioStore interface {
	ListAbout(ctx context.Context) ([]models.AboutEntry, error)
	ListExperience(ctx context.Context) ([]models.ExperienceEntry, error)
	ListSkills(ctx context.Context) ([]models.Skill, error)
	GetContacts(ctx context.Context) (*models.Contacts, error)
}
