package storage

import (
	"context"
	"sync"
	"time"

	"github.com/xaenox/hh-agent/internal/models"
)

// MemoryStorage is an in-memory implementation of Storage and PortfolioStore.
// It mirrors the postgres semantics closely enough to back tests and local runs.
type MemoryStorage struct {
	mu sync.RWMutex

	nextID int64

	tokens   []*models.OAuthTokenPair
	settings *models.SearchSettings
	tags     map[string]*models.SearchTag // keyed by tag_type + "\x00" + value

	vacancies    map[string]*models.Vacancy // keyed by remote id
	applications []*models.Application
	chats        []*models.Chat
	messages     []*models.ChatMessage
	events       []*models.ActivityEvent
	stats        map[string]*models.DailyStats

	about      []models.AboutEntry
	experience []models.ExperienceEntry
	skills     []models.Skill
	contacts   *models.Contacts
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tags:      make(map[string]*models.SearchTag),
		vacancies: make(map[string]*models.Vacancy),
		stats:     make(map[string]*models.DailyStats),
	}
}

func (s *MemoryStorage) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *MemoryStorage) SaveTokenPair(ctx context.Context, pair *models.OAuthTokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair.ID = s.id()
	if pair.CreatedAt.IsZero() {
		pair.CreatedAt = time.Now()
	}
	s.tokens = append(s.tokens, pair)
	return nil
}

func (s *MemoryStorage) LatestTokenPair(ctx context.Context) (*models.OAuthTokenPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.tokens) == 0 {
		return nil, ErrNotFound
	}
	latest := *s.tokens[len(s.tokens)-1]
	return &latest, nil
}

func (s *MemoryStorage) GetSearchSettings(ctx context.Context) (*models.SearchSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return nil, ErrNotFound
	}
	settings := *s.settings
	return &settings, nil
}

func (s *MemoryStorage) SaveSearchSettings(ctx context.Context, settings *models.SearchSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *settings
	s.settings = &copied
	return nil
}

func tagKey(tagType, value string) string {
	return tagType + "\x00" + value
}

func (s *MemoryStorage) UpsertSearchTag(ctx context.Context, tagType, value string) (*models.SearchTag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tag, exists := s.tags[tagKey(tagType, value)]; exists {
		copied := *tag
		return &copied, nil
	}
	tag := &models.SearchTag{
		ID:       s.id(),
		TagType:  tagType,
		Value:    value,
		IsActive: true,
	}
	s.tags[tagKey(tagType, value)] = tag
	copied := *tag
	return &copied, nil
}

func (s *MemoryStorage) ListActiveSearchTags(ctx context.Context, tagType string) ([]*models.SearchTag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tags []*models.SearchTag
	for _, tag := range s.tags {
		if tag.TagType == tagType && tag.IsActive {
			copied := *tag
			tags = append(tags, &copied)
		}
	}
	sortTagsByID(tags)
	return tags, nil
}

func sortTagsByID(tags []*models.SearchTag) {
	for i := 1; i < len(tags); i++ {
		for j := i; j > 0 && tags[j].ID < tags[j-1].ID; j-- {
			tags[j], tags[j-1] = tags[j-1], tags[j]
		}
	}
}

func (s *MemoryStorage) IncrementTagCounters(ctx context.Context, tagID int64, searches, found, applied int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tag := range s.tags {
		if tag.ID == tagID {
			tag.SearchCount += searches
			tag.FoundCount += found
			tag.AppliedCount += applied
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStorage) CreateVacancy(ctx context.Context, v *models.Vacancy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.vacancies[v.RemoteID]; exists {
		return ErrDuplicate
	}
	v.ID = s.id()
	copied := *v
	s.vacancies[v.RemoteID] = &copied
	return nil
}

func (s *MemoryStorage) VacancyExists(ctx context.Context, remoteID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.vacancies[remoteID]
	return exists, nil
}

func (s *MemoryStorage) GetVacancyByRemoteID(ctx context.Context, remoteID string) (*models.Vacancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, exists := s.vacancies[remoteID]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (s *MemoryStorage) GetVacancyByID(ctx context.Context, id int64) (*models.Vacancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.vacancies {
		if v.ID == id {
			copied := *v
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) UpdateVacancyStatus(ctx context.Context, id int64, status models.VacancyStatus, appliedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.vacancies {
		if v.ID == id {
			if v.Status == status {
				return nil
			}
			v.Status = status
			if appliedAt != nil {
				v.AppliedAt = appliedAt
			}
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStorage) LatestVacancyFoundAt(ctx context.Context) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *time.Time
	for _, v := range s.vacancies {
		if latest == nil || v.FoundAt.After(*latest) {
			foundAt := v.FoundAt
			latest = &foundAt
		}
	}
	return latest, nil
}

func (s *MemoryStorage) CreateApplication(ctx context.Context, a *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.applications {
		if existing.RemoteNegotiationID == a.RemoteNegotiationID {
			return ErrDuplicate
		}
	}
	a.ID = s.id()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	copied := *a
	s.applications = append(s.applications, &copied)
	return nil
}

func (s *MemoryStorage) UpdateApplicationStatusByVacancy(ctx context.Context, vacancyID int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.applications {
		if a.VacancyID == vacancyID {
			a.Status = status
		}
	}
	return nil
}

func (s *MemoryStorage) CreateChat(ctx context.Context, c *models.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.chats {
		if existing.RemoteChatID == c.RemoteChatID {
			return ErrDuplicate
		}
	}
	c.ID = s.id()
	copied := *c
	s.chats = append(s.chats, &copied)
	return nil
}

func (s *MemoryStorage) ListActiveChats(ctx context.Context) ([]*models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := map[models.VacancyStatus]bool{
		models.VacancyApplied: true,
		models.VacancyViewed:  true,
		models.VacancyInvited: true,
	}

	var chats []*models.Chat
	for _, c := range s.chats {
		for _, v := range s.vacancies {
			if v.ID == c.VacancyID && active[v.Status] {
				copied := *c
				chats = append(chats, &copied)
				break
			}
		}
	}
	return chats, nil
}

func (s *MemoryStorage) TouchChatOnMessage(ctx context.Context, chatID int64, isBot bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.chats {
		if c.ID == chatID {
			now := time.Now()
			c.LastMessageAt = &now
			c.IsBot = isBot
			c.UnreadCount++
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStorage) MarkChatTelegramInvited(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.chats {
		if c.ID == chatID {
			c.TelegramInvited = true
			c.IsHumanConfirmed = true
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStorage) CreateChatMessage(ctx context.Context, m *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.RemoteMessageID != nil {
		for _, existing := range s.messages {
			if existing.RemoteMessageID != nil && *existing.RemoteMessageID == *m.RemoteMessageID {
				return ErrDuplicate
			}
		}
	}
	m.ID = s.id()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	copied := *m
	s.messages = append(s.messages, &copied)
	return nil
}

func (s *MemoryStorage) ListChatMessages(ctx context.Context, chatID int64) ([]*models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var messages []*models.ChatMessage
	for _, m := range s.messages {
		if m.ChatID == chatID {
			copied := *m
			messages = append(messages, &copied)
		}
	}
	return messages, nil
}

func (s *MemoryStorage) ChatMessageExists(ctx context.Context, remoteMessageID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.messages {
		if m.RemoteMessageID != nil && *m.RemoteMessageID == remoteMessageID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStorage) LastRemoteMessageID(ctx context.Context, chatID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	last := ""
	for _, m := range s.messages {
		if m.ChatID == chatID && m.RemoteMessageID != nil {
			last = *m.RemoteMessageID
		}
	}
	return last, nil
}

func (s *MemoryStorage) LogActivity(ctx context.Context, eventType string, vacancyID *int64, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, &models.ActivityEvent{
		ID:          s.id(),
		EventType:   eventType,
		VacancyID:   vacancyID,
		Description: description,
		CreatedAt:   time.Now(),
	})
	return nil
}

func (s *MemoryStorage) ListRecentEvents(ctx context.Context, limit int) ([]*models.ActivityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []*models.ActivityEvent
	for i := len(s.events) - 1; i >= 0 && len(events) < limit; i-- {
		copied := *s.events[i]
		events = append(events, &copied)
	}
	return events, nil
}

func (s *MemoryStorage) AddDailyStats(ctx context.Context, date string, delta models.DailyStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, exists := s.stats[date]
	if !exists {
		stats = &models.DailyStats{Date: date}
		s.stats[date] = stats
	}
	stats.SearchesCount += delta.SearchesCount
	stats.VacanciesFound += delta.VacanciesFound
	stats.ApplicationsSent += delta.ApplicationsSent
	stats.InvitationsReceived += delta.InvitationsReceived
	stats.RejectionsReceived += delta.RejectionsReceived
	stats.TelegramInvitesSent += delta.TelegramInvitesSent
	return nil
}

func (s *MemoryStorage) GetDailyStats(ctx context.Context, date string) (*models.DailyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, exists := s.stats[date]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *stats
	return &copied, nil
}

func (s *MemoryStorage) ListAbout(ctx context.Context) ([]models.AboutEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AboutEntry(nil), s.about...), nil
}

func (s *MemoryStorage) ListExperience(ctx context.Context) ([]models.ExperienceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ExperienceEntry(nil), s.experience...), nil
}

func (s *MemoryStorage) ListSkills(ctx context.Context) ([]models.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Skill(nil), s.skills...), nil
}

func (s *MemoryStorage) GetContacts(ctx context.Context) (*models.Contacts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.contacts == nil {
		return nil, ErrNotFound
	}
	copied := *s.contacts
	return &copied, nil
}

// Portfolio seed helpers used by tests and local runs.

func (s *MemoryStorage) AddAbout(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.about = append(s.about, models.AboutEntry{Content: content})
}

func (s *MemoryStorage) AddExperience(title, company, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.experience = append(s.experience, models.ExperienceEntry{Title: title, Company: company, Description: description})
}

func (s *MemoryStorage) AddSkill(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skills = append(s.skills, models.Skill{Name: name})
}

func (s *MemoryStorage) SetContacts(telegram, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = &models.Contacts{Telegram: telegram, Email: email}
}

func (s *MemoryStorage) Close() error {
	return nil
}
