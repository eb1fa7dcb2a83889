package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xaenox/hh-agent/internal/ai"
	"github.com/xaenox/hh-agent/internal/hh"
	"github.com/xaenox/hh-agent/internal/models"
	"github.com/xaenox/hh-agent/internal/resume"
	"github.com/xaenox/hh-agent/internal/storage"
	"go.uber.org/zap"
)

// runSearchCycle is the find -> evaluate -> decide -> apply path. Missing
// settings, authorization or portfolio make it a logged no-op; per-query and
// per-vacancy failures skip the item and keep the cycle alive.
func (a *Agent) runSearchCycle(ctx context.Context) error {
	settings, err := a.store.GetSearchSettings(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		a.logger.Warn("search settings not configured, skipping search cycle")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading search settings: %w", err)
	}

	if _, err := a.tokens.AccessToken(ctx); err != nil {
		if errors.Is(err, hh.ErrNotAuthorized) {
			a.logger.Warn("not authorized, skipping search cycle")
			if logErr := a.store.LogActivity(ctx, models.EventError, nil,
				"Search skipped: job board authorization missing or expired"); logErr != nil {
				a.logger.Error("failed to log error event", zap.Error(logErr))
			}
			return nil
		}
		return fmt.Errorf("obtaining access token: %w", err)
	}

	projection, err := a.resume.Project(ctx)
	if err != nil {
		return fmt.Errorf("building resume projection: %w", err)
	}
	if !projection.HasAbout {
		a.logger.Warn("portfolio has no about entries, skipping search cycle")
		return nil
	}

	queries, tagsByQuery, err := a.buildSearchQueries(ctx, settings, projection.Text)
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		a.logger.Warn("no search queries available, skipping search cycle")
		return nil
	}
	if len(queries) > a.maxQueries {
		queries = queries[:a.maxQueries]
	}

	resumes, err := a.board.ListResumes(ctx)
	if err != nil {
		return fmt.Errorf("listing resumes: %w", err)
	}
	if len(resumes) == 0 {
		return errors.New("no resumes available on the job board")
	}
	resumeID := resumes[0].ID

	var foundTotal, appliedTotal int
	for i, query := range queries {
		if i > 0 && !a.sleep(ctx, queryDelay) {
			break
		}

		tag := tagsByQuery[query]
		if tag != nil {
			if err := a.store.IncrementTagCounters(ctx, tag.ID, 1, 0, 0); err != nil {
				a.logger.Error("failed to increment tag search count", zap.Error(err))
			}
		}

		items, err := a.board.SearchVacancies(ctx, searchParams(settings, query))
		if err != nil {
			a.logger.Error("vacancy search failed",
				zap.String("query", query), zap.Error(err))
			continue
		}
		if tag != nil && len(items) > 0 {
			if err := a.store.IncrementTagCounters(ctx, tag.ID, 0, len(items), 0); err != nil {
				a.logger.Error("failed to increment tag found count", zap.Error(err))
			}
		}

		for _, item := range items {
			inserted, applied := a.processVacancy(ctx, settings, projection, resumeID, tag, item)
			if inserted {
				foundTotal++
			}
			if applied {
				appliedTotal++
				if !a.sleep(ctx, applyDelay) {
					break
				}
			}
		}
	}

	if err := a.store.AddDailyStats(ctx, a.today(), models.DailyStats{
		SearchesCount:    1,
		VacanciesFound:   foundTotal,
		ApplicationsSent: appliedTotal,
	}); err != nil {
		a.logger.Error("failed to update daily stats", zap.Error(err))
	}

	summary := fmt.Sprintf("Search cycle finished: %d queries, %d new vacancies, %d applications",
		len(queries), foundTotal, appliedTotal)
	a.logger.Info("search cycle finished",
		zap.Int("queries", len(queries)),
		zap.Int("found", foundTotal),
		zap.Int("applied", appliedTotal))
	return a.store.LogActivity(ctx, models.EventSearch, nil, summary)
}

// buildSearchQueries assembles the ordered, deduplicated query list: the
// configured search text first, then active query tags, and as a last resort
// queries generated from the resume (persisted as new active tags).
func (a *Agent) buildSearchQueries(ctx context.Context, settings *models.SearchSettings,
	resumeText string) ([]string, map[string]*models.SearchTag, error) {
	var queries []string
	seen := make(map[string]bool)
	tagsByQuery := make(map[string]*models.SearchTag)
	add := func(q string) {
		if q != "" && !seen[q] {
			seen[q] = true
			queries = append(queries, q)
		}
	}

	add(settings.SearchText)

	if settings.AutoTagsEnabled {
		tags, err := a.store.ListActiveSearchTags(ctx, models.TagTypeQuery)
		if err != nil {
			return nil, nil, fmt.Errorf("listing search tags: %w", err)
		}
		for _, tag := range tags {
			add(tag.Value)
			tagsByQuery[tag.Value] = tag
		}
	}

	if len(queries) == 0 {
		suggested, err := a.assistant.GenerateSearchTags(ctx, resumeText)
		if err != nil {
			a.logger.Error("search tag generation failed", zap.Error(err))
			return nil, nil, nil
		}
		for _, query := range suggested {
			tag, err := a.store.UpsertSearchTag(ctx, models.TagTypeQuery, query)
			if err != nil {
				a.logger.Error("failed to persist generated tag",
					zap.String("value", query), zap.Error(err))
				continue
			}
			add(query)
			tagsByQuery[query] = tag
		}
		if len(suggested) > 0 {
			if err := a.store.LogActivity(ctx, models.EventAI, nil,
				fmt.Sprintf("Generated %d search queries from resume", len(suggested))); err != nil {
				a.logger.Error("failed to log ai event", zap.Error(err))
			}
		}
	}

	return queries, tagsByQuery, nil
}

// processVacancy handles one search result. Returns whether a vacancy row
// was inserted and whether an application was submitted.
func (a *Agent) processVacancy(ctx context.Context, settings *models.SearchSettings,
	projection *resume.Projection, resumeID string, tag *models.SearchTag, item hh.Vacancy) (bool, bool) {
	exists, err := a.store.VacancyExists(ctx, item.ID)
	if err != nil {
		a.logger.Error("vacancy existence check failed",
			zap.String("vacancy_id", item.ID), zap.Error(err))
		return false, false
	}
	if exists {
		return false, false
	}

	detail, err := a.board.GetVacancy(ctx, item.ID)
	if err != nil {
		a.logger.Error("fetching vacancy detail failed",
			zap.String("vacancy_id", item.ID), zap.Error(err))
		return false, false
	}

	evaluation, err := a.assistant.EvaluateVacancy(ctx, evaluateInput(detail, projection.Text))
	if err != nil {
		// Record the vacancy with null AI fields; a zero score never
		// clears min_ai_score except when it is zero itself.
		a.logger.Warn("vacancy evaluation failed",
			zap.String("vacancy_id", item.ID), zap.Error(err))
		evaluation = nil
	}

	score := 0
	if evaluation != nil {
		score = evaluation.Score
	}
	shouldApply := settings.AutoApplyEnabled &&
		score >= settings.MinAIScore &&
		(evaluation == nil || evaluation.Recommendation != models.RecommendSkip)

	vacancy := newVacancy(detail, evaluation, a.now(), shouldApply)
	if err := a.store.CreateVacancy(ctx, vacancy); err != nil {
		if !errors.Is(err, storage.ErrDuplicate) {
			a.logger.Error("failed to save vacancy",
				zap.String("vacancy_id", item.ID), zap.Error(err))
		}
		return false, false
	}
	if !shouldApply {
		return true, false
	}

	coverLetter, err := a.assistant.GenerateCoverLetter(ctx,
		vacancy.Title, vacancy.Description, projection.Text, projection.Telegram, projection.Email)
	if err != nil {
		a.logger.Error("cover letter generation failed",
			zap.String("vacancy_id", item.ID), zap.Error(err))
		return true, false
	}

	negotiationID, err := a.board.Apply(ctx, vacancy.RemoteID, coverLetter, resumeID)
	if err != nil {
		a.logger.Error("application failed",
			zap.String("vacancy_id", item.ID), zap.Error(err))
		return true, false
	}

	appliedAt := a.now()
	if err := a.store.UpdateVacancyStatus(ctx, vacancy.ID, models.VacancyApplied, &appliedAt); err != nil {
		a.logger.Error("failed to mark vacancy applied", zap.Error(err))
	}
	if err := a.store.CreateApplication(ctx, &models.Application{
		VacancyID:           vacancy.ID,
		RemoteNegotiationID: negotiationID,
		CoverLetter:         coverLetter,
		Status:              models.ApplicationSent,
	}); err != nil {
		a.logger.Error("failed to save application", zap.Error(err))
	}

	chat := &models.Chat{
		VacancyID:    vacancy.ID,
		RemoteChatID: negotiationID,
		EmployerName: vacancy.Company,
	}
	if err := a.store.CreateChat(ctx, chat); err != nil {
		a.logger.Error("failed to save chat", zap.Error(err))
	}

	if err := a.store.LogActivity(ctx, models.EventApply, &vacancy.ID,
		fmt.Sprintf("Applied to %q at %s", vacancy.Title, vacancy.Company)); err != nil {
		a.logger.Error("failed to log apply event", zap.Error(err))
	}

	if tag != nil {
		if err := a.store.IncrementTagCounters(ctx, tag.ID, 0, 0, 1); err != nil {
			a.logger.Error("failed to increment tag applied count", zap.Error(err))
		}
	}

	a.sendChatIntro(ctx, chat, coverLetter, projection)
	return true, true
}

// sendChatIntro posts the first chat message right after applying. Failures
// here are non-fatal: the application already went through.
func (a *Agent) sendChatIntro(ctx context.Context, chat *models.Chat, coverLetter string,
	projection *resume.Projection) {
	intro, err := a.assistant.GenerateChatIntro(ctx, coverLetter, projection.Telegram, projection.Email)
	if err != nil {
		a.logger.Warn("chat intro generation failed",
			zap.String("chat_id", chat.RemoteChatID), zap.Error(err))
		return
	}
	if err := a.board.SendMessage(ctx, chat.RemoteChatID, intro); err != nil {
		a.logger.Warn("sending chat intro failed",
			zap.String("chat_id", chat.RemoteChatID), zap.Error(err))
		return
	}
	if err := a.store.CreateChatMessage(ctx, &models.ChatMessage{
		ChatID:         chat.ID,
		AuthorType:     models.AuthorApplicant,
		Text:           intro,
		IsAutoResponse: true,
		CreatedAt:      a.now(),
	}); err != nil {
		a.logger.Error("failed to save chat intro", zap.Error(err))
	}
}

func searchParams(settings *models.SearchSettings, query string) hh.SearchParams {
	return hh.SearchParams{
		Text:           query,
		Areas:          settings.AreaIDs,
		SalaryFrom:     settings.SalaryFrom,
		Experience:     settings.Experience,
		Schedule:       settings.Schedule,
		Employment:     settings.Employment,
		OnlyWithSalary: settings.OnlyWithSalary,
	}
}

func evaluateInput(detail *hh.Vacancy, resumeText string) ai.EvaluateInput {
	in := ai.EvaluateInput{
		Title:       detail.Name,
		Description: detail.Description,
		Company:     detail.Employer.Name,
		ResumeText:  resumeText,
	}
	if detail.Salary != nil {
		in.SalaryFrom = detail.Salary.From
		in.SalaryTo = detail.Salary.To
	}
	return in
}

// newVacancy builds the local row for a fetched vacancy. Status is found
// when an application will follow, skipped otherwise.
func newVacancy(detail *hh.Vacancy, evaluation *ai.Evaluation, foundAt time.Time, shouldApply bool) *models.Vacancy {
	v := &models.Vacancy{
		RemoteID:    detail.ID,
		Title:       detail.Name,
		Company:     detail.Employer.Name,
		Description: detail.Description,
		URL:         detail.AlternateURL,
		Status:      models.VacancyFound,
		FoundAt:     foundAt,
	}
	if !shouldApply {
		v.Status = models.VacancySkipped
	}
	if detail.Salary != nil {
		v.SalaryFrom = detail.Salary.From
		v.SalaryTo = detail.Salary.To
		if detail.Salary.Currency != "" {
			currency := detail.Salary.Currency
			v.Currency = &currency
		}
	}
	if evaluation != nil {
		score := evaluation.Score
		recommendation := evaluation.Recommendation
		priority := evaluation.Priority
		assessment := evaluation.SalaryAssessment
		v.AIScore = &score
		v.AIRecommendation = &recommendation
		v.AIPriority = &priority
		v.AIMatchReasons = evaluation.MatchReasons
		v.AIConcerns = evaluation.Concerns
		v.AISalaryAssessment = &assessment
	}
	return v
}
