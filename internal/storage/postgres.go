package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/xaenox/hh-agent/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &PostgresStorage{db: db}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

// uniqueViolation maps postgres unique-constraint failures onto ErrDuplicate.
func uniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicate
	}
	return nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

func (s *PostgresStorage) SaveTokenPair(ctx context.Context, pair *models.OAuthTokenPair) error {
	query := `
		INSERT INTO oauth_tokens (access_token, refresh_token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query,
		pair.AccessToken, pair.RefreshToken, pair.ExpiresAt,
	).Scan(&pair.ID, &pair.CreatedAt)
	if err != nil {
		return fmt.Errorf("error saving token pair: %v", err)
	}
	return nil
}

func (s *PostgresStorage) LatestTokenPair(ctx context.Context) (*models.OAuthTokenPair, error) {
	query := `
		SELECT id, access_token, refresh_token, expires_at, created_at
		FROM oauth_tokens
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	pair := &models.OAuthTokenPair{}
	err := s.db.QueryRowContext(ctx, query).Scan(
		&pair.ID, &pair.AccessToken, &pair.RefreshToken, &pair.ExpiresAt, &pair.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying latest token pair: %v", err)
	}
	return pair, nil
}

func (s *PostgresStorage) GetSearchSettings(ctx context.Context) (*models.SearchSettings, error) {
	query := `
		SELECT search_text, area_ids, salary_from, experience, schedule, employment,
		       only_with_salary, auto_tags_enabled, min_ai_score, auto_apply_enabled,
		       search_interval_minutes
		FROM search_settings
		WHERE id = 1`

	settings := &models.SearchSettings{}
	err := s.db.QueryRowContext(ctx, query).Scan(
		&settings.SearchText,
		pq.Array(&settings.AreaIDs),
		&settings.SalaryFrom,
		&settings.Experience,
		&settings.Schedule,
		&settings.Employment,
		&settings.OnlyWithSalary,
		&settings.AutoTagsEnabled,
		&settings.MinAIScore,
		&settings.AutoApplyEnabled,
		&settings.SearchIntervalMinutes,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying search settings: %v", err)
	}
	return settings, nil
}

func (s *PostgresStorage) SaveSearchSettings(ctx context.Context, settings *models.SearchSettings) error {
	query := `
		INSERT INTO search_settings (id, search_text, area_ids, salary_from, experience,
		                             schedule, employment, only_with_salary, auto_tags_enabled,
		                             min_ai_score, auto_apply_enabled, search_interval_minutes)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			search_text = EXCLUDED.search_text,
			area_ids = EXCLUDED.area_ids,
			salary_from = EXCLUDED.salary_from,
			experience = EXCLUDED.experience,
			schedule = EXCLUDED.schedule,
			employment = EXCLUDED.employment,
			only_with_salary = EXCLUDED.only_with_salary,
			auto_tags_enabled = EXCLUDED.auto_tags_enabled,
			min_ai_score = EXCLUDED.min_ai_score,
			auto_apply_enabled = EXCLUDED.auto_apply_enabled,
			search_interval_minutes = EXCLUDED.search_interval_minutes`

	_, err := s.db.ExecContext(ctx, query,
		settings.SearchText,
		pq.Array(settings.AreaIDs),
		settings.SalaryFrom,
		settings.Experience,
		settings.Schedule,
		settings.Employment,
		settings.OnlyWithSalary,
		settings.AutoTagsEnabled,
		settings.MinAIScore,
		settings.AutoApplyEnabled,
		settings.SearchIntervalMinutes,
	)
	if err != nil {
		return fmt.Errorf("error saving search settings: %v", err)
	}
	return nil
}

func (s *PostgresStorage) UpsertSearchTag(ctx context.Context, tagType, value string) (*models.SearchTag, error) {
	query := `
		INSERT INTO search_tags (tag_type, value, is_active)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (tag_type, value) DO UPDATE SET tag_type = EXCLUDED.tag_type
		RETURNING id, tag_type, value, is_active, search_count, found_count, applied_count`

	tag := &models.SearchTag{}
	err := s.db.QueryRowContext(ctx, query, tagType, value).Scan(
		&tag.ID, &tag.TagType, &tag.Value, &tag.IsActive,
		&tag.SearchCount, &tag.FoundCount, &tag.AppliedCount)
	if err != nil {
		return nil, fmt.Errorf("error upserting search tag: %v", err)
	}
	return tag, nil
}

func (s *PostgresStorage) ListActiveSearchTags(ctx context.Context, tagType string) ([]*models.SearchTag, error) {
	query := `
		SELECT id, tag_type, value, is_active, search_count, found_count, applied_count
		FROM search_tags
		WHERE tag_type = $1 AND is_active
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, tagType)
	if err != nil {
		return nil, fmt.Errorf("error querying search tags: %v", err)
	}
	defer rows.Close()

	var tags []*models.SearchTag
	for rows.Next() {
		tag := &models.SearchTag{}
		err := rows.Scan(&tag.ID, &tag.TagType, &tag.Value, &tag.IsActive,
			&tag.SearchCount, &tag.FoundCount, &tag.AppliedCount)
		if err != nil {
			return nil, fmt.Errorf("error scanning search tag: %v", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (s *PostgresStorage) IncrementTagCounters(ctx context.Context, tagID int64, searches, found, applied int) error {
	query := `
		UPDATE search_tags
		SET search_count = search_count + $1,
		    found_count = found_count + $2,
		    applied_count = applied_count + $3
		WHERE id = $4`

	_, err := s.db.ExecContext(ctx, query, searches, found, applied, tagID)
	if err != nil {
		return fmt.Errorf("error incrementing tag counters: %v", err)
	}
	return nil
}

func (s *PostgresStorage) CreateVacancy(ctx context.Context, v *models.Vacancy) error {
	reasons, err := json.Marshal(v.AIMatchReasons)
	if err != nil {
		return fmt.Errorf("error marshaling match reasons: %v", err)
	}
	concerns, err := json.Marshal(v.AIConcerns)
	if err != nil {
		return fmt.Errorf("error marshaling concerns: %v", err)
	}

	query := `
		INSERT INTO vacancies (remote_vacancy_id, title, company, salary_from, salary_to,
		                       currency, description, url, status, found_at, applied_at,
		                       ai_score, ai_recommendation, ai_priority, ai_match_reasons,
		                       ai_concerns, ai_salary_assessment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id`

	err = s.db.QueryRowContext(ctx, query,
		v.RemoteID, v.Title, v.Company, v.SalaryFrom, v.SalaryTo,
		v.Currency, v.Description, v.URL, v.Status, v.FoundAt, v.AppliedAt,
		v.AIScore, v.AIRecommendation, v.AIPriority, reasons, concerns, v.AISalaryAssessment,
	).Scan(&v.ID)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return dup
		}
		return fmt.Errorf("error creating vacancy: %v", err)
	}
	return nil
}

func (s *PostgresStorage) VacancyExists(ctx context.Context, remoteID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM vacancies WHERE remote_vacancy_id = $1)`, remoteID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking vacancy existence: %v", err)
	}
	return exists, nil
}

func (s *PostgresStorage) GetVacancyByRemoteID(ctx context.Context, remoteID string) (*models.Vacancy, error) {
	query := `
		SELECT id, remote_vacancy_id, title, company, salary_from, salary_to, currency,
		       description, url, status, found_at, applied_at, ai_score, ai_recommendation,
		       ai_priority, ai_match_reasons, ai_concerns, ai_salary_assessment
		FROM vacancies
		WHERE remote_vacancy_id = $1`

	v := &models.Vacancy{}
	var reasons, concerns []byte
	err := s.db.QueryRowContext(ctx, query, remoteID).Scan(
		&v.ID, &v.RemoteID, &v.Title, &v.Company, &v.SalaryFrom, &v.SalaryTo, &v.Currency,
		&v.Description, &v.URL, &v.Status, &v.FoundAt, &v.AppliedAt, &v.AIScore,
		&v.AIRecommendation, &v.AIPriority, &reasons, &concerns, &v.AISalaryAssessment)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying vacancy: %v", err)
	}
	if len(reasons) > 0 {
		if err := json.Unmarshal(reasons, &v.AIMatchReasons); err != nil {
			return nil, fmt.Errorf("error unmarshaling match reasons: %v", err)
		}
	}
	if len(concerns) > 0 {
		if err := json.Unmarshal(concerns, &v.AIConcerns); err != nil {
			return nil, fmt.Errorf("error unmarshaling concerns: %v", err)
		}
	}
	return v, nil
}

func (s *PostgresStorage) GetVacancyByID(ctx context.Context, id int64) (*models.Vacancy, error) {
	query := `
		SELECT id, remote_vacancy_id, title, company, salary_from, salary_to, currency,
		       description, url, status, found_at, applied_at, ai_score, ai_recommendation,
		       ai_priority, ai_match_reasons, ai_concerns, ai_salary_assessment
		FROM vacancies
		WHERE id = $1`

	v := &models.Vacancy{}
	var reasons, concerns []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.RemoteID, &v.Title, &v.Company, &v.SalaryFrom, &v.SalaryTo, &v.Currency,
		&v.Description, &v.URL, &v.Status, &v.FoundAt, &v.AppliedAt, &v.AIScore,
		&v.AIRecommendation, &v.AIPriority, &reasons, &concerns, &v.AISalaryAssessment)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying vacancy: %v", err)
	}
	if len(reasons) > 0 {
		if err := json.Unmarshal(reasons, &v.AIMatchReasons); err != nil {
			return nil, fmt.Errorf("error unmarshaling match reasons: %v", err)
		}
	}
	if len(concerns) > 0 {
		if err := json.Unmarshal(concerns, &v.AIConcerns); err != nil {
			return nil, fmt.Errorf("error unmarshaling concerns: %v", err)
		}
	}
	return v, nil
}

func (s *PostgresStorage) UpdateVacancyStatus(ctx context.Context, id int64, status models.VacancyStatus, appliedAt *time.Time) error {
	var err error
	if appliedAt != nil {
		_, err = s.db.ExecContext(ctx,
			`UPDATE vacancies SET status = $1, applied_at = $2 WHERE id = $3 AND status != $1`,
			status, appliedAt, id)
	} else {
		_, err = s.db.ExecContext(ctx,
			`UPDATE vacancies SET status = $1 WHERE id = $2 AND status != $1`,
			status, id)
	}
	if err != nil {
		return fmt.Errorf("error updating vacancy status: %v", err)
	}
	return nil
}

func (s *PostgresStorage) LatestVacancyFoundAt(ctx context.Context) (*time.Time, error) {
	var foundAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT found_at FROM vacancies ORDER BY found_at DESC LIMIT 1`,
	).Scan(&foundAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying latest vacancy: %v", err)
	}
	return &foundAt, nil
}

func (s *PostgresStorage) CreateApplication(ctx context.Context, a *models.Application) error {
	query := `
		INSERT INTO applications (vacancy_id, remote_negotiation_id, cover_letter, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query,
		a.VacancyID, a.RemoteNegotiationID, a.CoverLetter, a.Status,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return dup
		}
		return fmt.Errorf("error creating application: %v", err)
	}
	return nil
}

func (s *PostgresStorage) UpdateApplicationStatusByVacancy(ctx context.Context, vacancyID int64, status string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE applications SET status = $1 WHERE vacancy_id = $2 AND status != $1`,
		status, vacancyID)
	if err != nil {
		return fmt.Errorf("error updating application status: %v", err)
	}
	return nil
}

func (s *PostgresStorage) CreateChat(ctx context.Context, c *models.Chat) error {
	query := `
		INSERT INTO chats (vacancy_id, remote_chat_id, employer_name, is_bot,
		                   is_human_confirmed, telegram_invited, last_message_at, unread_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		c.VacancyID, c.RemoteChatID, c.EmployerName, c.IsBot,
		c.IsHumanConfirmed, c.TelegramInvited, c.LastMessageAt, c.UnreadCount,
	).Scan(&c.ID)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return dup
		}
		return fmt.Errorf("error creating chat: %v", err)
	}
	return nil
}

func (s *PostgresStorage) ListActiveChats(ctx context.Context) ([]*models.Chat, error) {
	query := `
		SELECT c.id, c.vacancy_id, c.remote_chat_id, c.employer_name, c.is_bot,
		       c.is_human_confirmed, c.telegram_invited, c.last_message_at, c.unread_count
		FROM chats c
		JOIN vacancies v ON v.id = c.vacancy_id
		WHERE v.status IN ('applied', 'viewed', 'invited')
		ORDER BY c.id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying active chats: %v", err)
	}
	defer rows.Close()

	var chats []*models.Chat
	for rows.Next() {
		c := &models.Chat{}
		err := rows.Scan(&c.ID, &c.VacancyID, &c.RemoteChatID, &c.EmployerName, &c.IsBot,
			&c.IsHumanConfirmed, &c.TelegramInvited, &c.LastMessageAt, &c.UnreadCount)
		if err != nil {
			return nil, fmt.Errorf("error scanning chat: %v", err)
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

func (s *PostgresStorage) TouchChatOnMessage(ctx context.Context, chatID int64, isBot bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE chats
		 SET last_message_at = now(), is_bot = $1, unread_count = unread_count + 1
		 WHERE id = $2`,
		isBot, chatID)
	if err != nil {
		return fmt.Errorf("error updating chat: %v", err)
	}
	return nil
}

func (s *PostgresStorage) MarkChatTelegramInvited(ctx context.Context, chatID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE chats
		 SET telegram_invited = TRUE, is_human_confirmed = TRUE
		 WHERE id = $1`,
		chatID)
	if err != nil {
		return fmt.Errorf("error marking chat invited: %v", err)
	}
	return nil
}

func (s *PostgresStorage) CreateChatMessage(ctx context.Context, m *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (chat_id, remote_message_id, author_type, text,
		                           is_auto_response, ai_sentiment, ai_intent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		m.ChatID, m.RemoteMessageID, m.AuthorType, m.Text,
		m.IsAutoResponse, m.AISentiment, m.AIIntent, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return dup
		}
		return fmt.Errorf("error creating chat message: %v", err)
	}
	return nil
}

func (s *PostgresStorage) ListChatMessages(ctx context.Context, chatID int64) ([]*models.ChatMessage, error) {
	query := `
		SELECT id, chat_id, remote_message_id, author_type, text, is_auto_response,
		       ai_sentiment, ai_intent, created_at
		FROM chat_messages
		WHERE chat_id = $1
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("error querying chat messages: %v", err)
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		m := &models.ChatMessage{}
		err := rows.Scan(&m.ID, &m.ChatID, &m.RemoteMessageID, &m.AuthorType, &m.Text,
			&m.IsAutoResponse, &m.AISentiment, &m.AIIntent, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning chat message: %v", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *PostgresStorage) ChatMessageExists(ctx context.Context, remoteMessageID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM chat_messages WHERE remote_message_id = $1)`, remoteMessageID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking chat message existence: %v", err)
	}
	return exists, nil
}

func (s *PostgresStorage) LastRemoteMessageID(ctx context.Context, chatID int64) (string, error) {
	var id sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT remote_message_id FROM chat_messages
		 WHERE chat_id = $1 AND remote_message_id IS NOT NULL
		 ORDER BY id DESC LIMIT 1`,
		chatID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("error querying last remote message id: %v", err)
	}
	return id.String, nil
}

func (s *PostgresStorage) LogActivity(ctx context.Context, eventType string, vacancyID *int64, description string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activity_events (event_type, vacancy_id, description) VALUES ($1, $2, $3)`,
		eventType, vacancyID, description)
	if err != nil {
		return fmt.Errorf("error logging activity: %v", err)
	}
	return nil
}

func (s *PostgresStorage) ListRecentEvents(ctx context.Context, limit int) ([]*models.ActivityEvent, error) {
	query := `
		SELECT id, event_type, vacancy_id, description, created_at
		FROM activity_events
		ORDER BY id DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying activity events: %v", err)
	}
	defer rows.Close()

	var events []*models.ActivityEvent
	for rows.Next() {
		e := &models.ActivityEvent{}
		err := rows.Scan(&e.ID, &e.EventType, &e.VacancyID, &e.Description, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning activity event: %v", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *PostgresStorage) AddDailyStats(ctx context.Context, date string, delta models.DailyStats) error {
	query := `
		INSERT INTO daily_stats (date, searches_count, vacancies_found, applications_sent,
		                         invitations_received, rejections_received, telegram_invites_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (date) DO UPDATE SET
			searches_count = daily_stats.searches_count + EXCLUDED.searches_count,
			vacancies_found = daily_stats.vacancies_found + EXCLUDED.vacancies_found,
			applications_sent = daily_stats.applications_sent + EXCLUDED.applications_sent,
			invitations_received = daily_stats.invitations_received + EXCLUDED.invitations_received,
			rejections_received = daily_stats.rejections_received + EXCLUDED.rejections_received,
			telegram_invites_sent = daily_stats.telegram_invites_sent + EXCLUDED.telegram_invites_sent`

	_, err := s.db.ExecContext(ctx, query, date,
		delta.SearchesCount, delta.VacanciesFound, delta.ApplicationsSent,
		delta.InvitationsReceived, delta.RejectionsReceived, delta.TelegramInvitesSent)
	if err != nil {
		return fmt.Errorf("error updating daily stats: %v", err)
	}
	return nil
}

func (s *PostgresStorage) GetDailyStats(ctx context.Context, date string) (*models.DailyStats, error) {
	query := `
		SELECT date::text, searches_count, vacancies_found, applications_sent,
		       invitations_received, rejections_received, telegram_invites_sent
		FROM daily_stats
		WHERE date = $1`

	stats := &models.DailyStats{}
	err := s.db.QueryRowContext(ctx, query, date).Scan(
		&stats.Date, &stats.SearchesCount, &stats.VacanciesFound, &stats.ApplicationsSent,
		&stats.InvitationsReceived, &stats.RejectionsReceived, &stats.TelegramInvitesSent)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying daily stats: %v", err)
	}
	return stats, nil
}

func (s *PostgresStorage) ListAbout(ctx context.Context) ([]models.AboutEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT content FROM about_me ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying about entries: %v", err)
	}
	defer rows.Close()

	var entries []models.AboutEntry
	for rows.Next() {
		var e models.AboutEntry
		if err := rows.Scan(&e.Content); err != nil {
			return nil, fmt.Errorf("error scanning about entry: %v", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStorage) ListExperience(ctx context.Context) ([]models.ExperienceEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, company, description FROM experience ORDER BY started_at DESC NULLS LAST, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying experience: %v", err)
	}
	defer rows.Close()

	var entries []models.ExperienceEntry
	for rows.Next() {
		var e models.ExperienceEntry
		if err := rows.Scan(&e.Title, &e.Company, &e.Description); err != nil {
			return nil, fmt.Errorf("error scanning experience entry: %v", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStorage) ListSkills(ctx context.Context) ([]models.Skill, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM skills ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying skills: %v", err)
	}
	defer rows.Close()

	var skills []models.Skill
	for rows.Next() {
		var sk models.Skill
		if err := rows.Scan(&sk.Name); err != nil {
			return nil, fmt.Errorf("error scanning skill: %v", err)
		}
		skills = append(skills, sk)
	}
	return skills, rows.Err()
}

func (s *PostgresStorage) GetContacts(ctx context.Context) (*models.Contacts, error) {
	var telegram, email sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT telegram, email FROM contacts ORDER BY id DESC LIMIT 1`,
	).Scan(&telegram, &email)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying contacts: %v", err)
	}
	return &models.Contacts{Telegram: telegram.String, Email: email.String}, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
