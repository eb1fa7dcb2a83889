package agent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/hh-agent/internal/ai"
	"github.com/xaenox/hh-agent/internal/hh"
	"github.com/xaenox/hh-agent/internal/models"
	"github.com/xaenox/hh-agent/internal/resume"
	"github.com/xaenox/hh-agent/internal/storage"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type applyCall struct {
	vacancyID   string
	coverLetter string
	resumeID    string
}

type fakeBoard struct {
	mu sync.Mutex

	searchResults []hh.Vacancy
	searchErr     error
	queries       []string

	details      map[string]*hh.Vacancy
	resumes      []hh.Resume
	negotiations []hh.Negotiation

	applyErr   error
	applyCalls []applyCall

	messages map[string][]hh.Message
	sent     map[string][]string
	sendErr  error
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{
		details:  make(map[string]*hh.Vacancy),
		resumes:  []hh.Resume{{ID: "r1", Title: "Go Developer"}},
		messages: make(map[string][]hh.Message),
		sent:     make(map[string][]string),
	}
}

func (b *fakeBoard) SearchVacancies(ctx context.Context, params hh.SearchParams) ([]hh.Vacancy, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queries = append(b.queries, params.Text)
	if b.searchErr != nil {
		return nil, b.searchErr
	}
	return b.searchResults, nil
}

func (b *fakeBoard) GetVacancy(ctx context.Context, id string) (*hh.Vacancy, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if detail, ok := b.details[id]; ok {
		return detail, nil
	}
	return nil, &hh.APIError{StatusCode: 404, Body: "not found"}
}

func (b *fakeBoard) ListResumes(ctx context.Context) ([]hh.Resume, error) {
	return b.resumes, nil
}

func (b *fakeBoard) ListNegotiations(ctx context.Context) ([]hh.Negotiation, error) {
	return b.negotiations, nil
}

func (b *fakeBoard) Apply(ctx context.Context, vacancyID, coverLetter, resumeID string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.applyErr != nil {
		return "", b.applyErr
	}
	b.applyCalls = append(b.applyCalls, applyCall{vacancyID, coverLetter, resumeID})
	return "neg_" + vacancyID, nil
}

func (b *fakeBoard) ListMessages(ctx context.Context, negotiationID string) ([]hh.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.messages[negotiationID], nil
}

func (b *fakeBoard) SendMessage(ctx context.Context, negotiationID, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return b.sendErr
	}
	b.sent[negotiationID] = append(b.sent[negotiationID], text)
	return nil
}

func (b *fakeBoard) sentTo(negotiationID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.sent[negotiationID]...)
}

type fakeAssistant struct {
	tags     []string
	tagsErr  error
	tagCalls int

	evaluation *ai.Evaluation
	evalErr    error

	coverLetter string
	coverErr    error
	intro       string
	introErr    error

	analysis    *ai.MessageAnalysis
	analysisErr error

	response    string
	responseErr error
	invite      string
	inviteErr   error
}

func (f *fakeAssistant) GenerateSearchTags(ctx context.Context, resumeText string) ([]string, error) {
	f.tagCalls++
	return f.tags, f.tagsErr
}

func (f *fakeAssistant) EvaluateVacancy(ctx context.Context, in ai.EvaluateInput) (*ai.Evaluation, error) {
	if f.evalErr != nil {
		return nil, f.evalErr
	}
	return f.evaluation, nil
}

func (f *fakeAssistant) GenerateCoverLetter(ctx context.Context, title, description, resumeText, telegram, email string) (string, error) {
	return f.coverLetter, f.coverErr
}

func (f *fakeAssistant) GenerateChatIntro(ctx context.Context, coverLetter, telegram, email string) (string, error) {
	return f.intro, f.introErr
}

func (f *fakeAssistant) AnalyzeMessage(ctx context.Context, text, chatHistory string) (*ai.MessageAnalysis, error) {
	if f.analysisErr != nil {
		return nil, f.analysisErr
	}
	return f.analysis, nil
}

func (f *fakeAssistant) GenerateChatResponse(ctx context.Context, text, resumeText, vacancyTitle string) (string, error) {
	return f.response, f.responseErr
}

func (f *fakeAssistant) GenerateTelegramInvite(ctx context.Context, text, telegram string) (string, error) {
	return f.invite, f.inviteErr
}

type stubTokens struct {
	err error
}

func (s stubTokens) AccessToken(ctx context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token", nil
}

func newTestAgent(store *storage.MemoryStorage, board *fakeBoard, assistant *fakeAssistant) *Agent {
	a := New(store, board, assistant, stubTokens{}, resume.NewProjector(store), nil, zap.NewNop())
	a.now = func() time.Time { return testNow }
	a.sleep = func(context.Context, time.Duration) bool { return true }
	return a
}

func seedPortfolio(store *storage.MemoryStorage) {
	store.AddAbout("Backend developer, 7 years of Go.")
	store.AddSkill("Go")
	store.SetContacts("https://t.me/dev", "dev@example.com")
}

func seedSettings(t *testing.T, store *storage.MemoryStorage, settings models.SearchSettings) {
	t.Helper()
	require.NoError(t, store.SaveSearchSettings(context.Background(), &settings))
}

func eventsOfType(t *testing.T, store *storage.MemoryStorage, eventType string) []*models.ActivityEvent {
	t.Helper()
	events, err := store.ListRecentEvents(context.Background(), 100)
	require.NoError(t, err)
	var matched []*models.ActivityEvent
	for _, event := range events {
		if event.EventType == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

func TestStartStop(t *testing.T) {
	store := storage.NewMemoryStorage()
	agent := newTestAgent(store, newFakeBoard(), &fakeAssistant{})
	ctx := context.Background()

	assert.False(t, agent.IsRunning())
	agent.Start(ctx)
	assert.True(t, agent.IsRunning())
	agent.Start(ctx) // idempotent
	agent.Stop(ctx)
	assert.False(t, agent.IsRunning())
	agent.Stop(ctx) // idempotent

	events := eventsOfType(t, store, models.EventSystem)
	require.Len(t, events, 2)
	assert.Equal(t, "Job search agent stopped", events[0].Description)
	assert.Equal(t, "Job search agent started", events[1].Description)
}

func TestPauseParksWithinOneSlice(t *testing.T) {
	store := storage.NewMemoryStorage()
	agent := newTestAgent(store, newFakeBoard(), &fakeAssistant{})
	ctx := context.Background()
	agent.Start(ctx)

	sleeps := 0
	agent.sleep = func(context.Context, time.Duration) bool {
		sleeps++
		agent.Stop(ctx)
		return true
	}

	assert.False(t, agent.pause(ctx))
	assert.Equal(t, 1, sleeps)
}

func TestPauseCompletesWhileRunning(t *testing.T) {
	store := storage.NewMemoryStorage()
	agent := newTestAgent(store, newFakeBoard(), &fakeAssistant{})
	ctx := context.Background()
	agent.Start(ctx)

	sleeps := 0
	agent.sleep = func(context.Context, time.Duration) bool {
		sleeps++
		return true
	}

	assert.True(t, agent.pause(ctx))
	assert.Equal(t, int(loopPause/pauseSlice), sleeps)
}

func TestSearchDue(t *testing.T) {
	store := storage.NewMemoryStorage()
	agent := newTestAgent(store, newFakeBoard(), &fakeAssistant{})
	ctx := context.Background()

	// No settings yet.
	assert.False(t, agent.searchDue(ctx))

	seedSettings(t, store, models.SearchSettings{SearchIntervalMinutes: 60})

	// No vacancies at all.
	assert.True(t, agent.searchDue(ctx))

	require.NoError(t, store.CreateVacancy(ctx, &models.Vacancy{
		RemoteID: "v1",
		Status:   models.VacancySkipped,
		FoundAt:  testNow.Add(-10 * time.Minute),
	}))
	assert.False(t, agent.searchDue(ctx))

	require.NoError(t, store.CreateVacancy(ctx, &models.Vacancy{
		RemoteID: "v2",
		Status:   models.VacancySkipped,
		FoundAt:  testNow.Add(-90 * time.Minute),
	}))
	// The most recent vacancy still gates the interval.
	assert.False(t, agent.searchDue(ctx))
}

func TestDailyHookRunsOncePerDay(t *testing.T) {
	store := storage.NewMemoryStorage()
	hookCalls := 0
	agent := New(store, newFakeBoard(), &fakeAssistant{}, stubTokens{}, resume.NewProjector(store),
		func(context.Context) error {
			hookCalls++
			return nil
		}, zap.NewNop())
	agent.sleep = func(context.Context, time.Duration) bool { return true }
	ctx := context.Background()

	inWindow := time.Date(2024, 6, 1, 3, 5, 0, 0, time.UTC)
	agent.now = func() time.Time { return inWindow }
	agent.maybeRunDailyHook(ctx)
	agent.maybeRunDailyHook(ctx)
	assert.Equal(t, 1, hookCalls)

	// Next day, same window.
	agent.now = func() time.Time { return inWindow.AddDate(0, 0, 1) }
	agent.maybeRunDailyHook(ctx)
	assert.Equal(t, 2, hookCalls)

	// Outside the window nothing fires.
	agent.now = func() time.Time { return testNow.AddDate(0, 0, 2) }
	agent.maybeRunDailyHook(ctx)
	assert.Equal(t, 2, hookCalls)
}
