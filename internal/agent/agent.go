package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xaenox/hh-agent/internal/ai"
	"github.com/xaenox/hh-agent/internal/hh"
	"github.com/xaenox/hh-agent/internal/models"
	"github.com/xaenox/hh-agent/internal/resume"
	"github.com/xaenox/hh-agent/internal/storage"
	"go.uber.org/zap"
)

const (
	// How often a stopped agent re-checks the running flag.
	idleCheckInterval = 30 * time.Second
	// The pause between loop iterations, split into slices so Stop is
	// observed within one slice.
	loopPause  = 5 * time.Minute
	pauseSlice = 10 * time.Second

	// At most this many search queries are used per cycle.
	maxQueriesPerCycle = 5

	// Inter-step delays demanded by the job-board rate limits.
	applyDelay = 3 * time.Second
	queryDelay = 2 * time.Second
	chatDelay  = time.Second

	// Local-time window in which the daily hook fires.
	dailyHookHour      = 3
	dailyHookMinuteCap = 10
)

// JobBoard is the slice of the job-board client the agent consumes.
type JobBoard interface {
	SearchVacancies(ctx context.Context, params hh.SearchParams) ([]hh.Vacancy, error)
	GetVacancy(ctx context.Context, id string) (*hh.Vacancy, error)
	ListResumes(ctx context.Context) ([]hh.Resume, error)
	ListNegotiations(ctx context.Context) ([]hh.Negotiation, error)
	Apply(ctx context.Context, vacancyID, coverLetter, resumeID string) (string, error)
	ListMessages(ctx context.Context, negotiationID string) ([]hh.Message, error)
	SendMessage(ctx context.Context, negotiationID, text string) error
}

// Assistant is the slice of the LLM client the agent consumes.
type Assistant interface {
	GenerateSearchTags(ctx context.Context, resumeText string) ([]string, error)
	EvaluateVacancy(ctx context.Context, in ai.EvaluateInput) (*ai.Evaluation, error)
	GenerateCoverLetter(ctx context.Context, title, description, resumeText, telegram, email string) (string, error)
	GenerateChatIntro(ctx context.Context, coverLetter, telegram, email string) (string, error)
	AnalyzeMessage(ctx context.Context, text, chatHistory string) (*ai.MessageAnalysis, error)
	GenerateChatResponse(ctx context.Context, text, resumeText, vacancyTitle string) (string, error)
	GenerateTelegramInvite(ctx context.Context, text, telegram string) (string, error)
}

// TokenSource yields a currently valid access token.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// ResumeSource rebuilds the resume projection for the current cycle.
type ResumeSource interface {
	Project(ctx context.Context) (*resume.Projection, error)
}

// Agent is the supervisor owning the search, chat and status cycles.
type Agent struct {
	store     storage.Storage
	board     JobBoard
	assistant Assistant
	tokens    TokenSource
	resume    ResumeSource
	dailyHook func(context.Context) error
	logger    *zap.Logger

	mu      sync.Mutex
	running bool

	maxQueries int

	// Day (YYYY-MM-DD) the daily hook last ran; loop-goroutine only.
	lastDailyHook string

	now   func() time.Time
	sleep func(context.Context, time.Duration) bool
}

// New creates the agent. dailyHook may be nil when no daily cross-subsystem
// task is wired in.
func New(store storage.Storage, board JobBoard, assistant Assistant, tokens TokenSource,
	resumeSource ResumeSource, dailyHook func(context.Context) error, logger *zap.Logger) *Agent {
	return &Agent{
		store:     store,
		board:     board,
		assistant: assistant,
		tokens:    tokens,
		resume:    resumeSource,
		dailyHook: dailyHook,
		logger:    logger,

		maxQueries: maxQueriesPerCycle,

		now:   time.Now,
		sleep: sleepContext,
	}
}

// SetMaxQueries overrides the per-cycle search query cap.
func (a *Agent) SetMaxQueries(n int) {
	if n > 0 {
		a.maxQueries = n
	}
}

// sleepContext waits for d or until the context is cancelled. Returns false
// when interrupted.
func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Start flips the agent into the running state.
func (a *Agent) Start(ctx context.Context) {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return
	}
	a.running = true
	a.mu.Unlock()

	a.logger.Info("agent started")
	if err := a.store.LogActivity(ctx, models.EventSystem, nil, "Job search agent started"); err != nil {
		a.logger.Error("failed to log start event", zap.Error(err))
	}
}

// Stop flips the agent into the stopped state. The loop parks within one
// pause slice.
func (a *Agent) Stop(ctx context.Context) {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	a.mu.Unlock()

	a.logger.Info("agent stopped")
	if err := a.store.LogActivity(ctx, models.EventSystem, nil, "Job search agent stopped"); err != nil {
		a.logger.Error("failed to log stop event", zap.Error(err))
	}
}

func (a *Agent) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Run is the supervisor loop. It returns when ctx is cancelled. Sub-cycle
// errors are logged and recorded as error events; none of them terminate
// the loop.
func (a *Agent) Run(ctx context.Context) {
	firstCycle := true
	for ctx.Err() == nil {
		if !a.IsRunning() {
			firstCycle = true
			a.sleep(ctx, idleCheckInterval)
			continue
		}

		if firstCycle {
			firstCycle = false
			a.guard(ctx, "search", a.runSearchCycle)
		}

		a.maybeRunDailyHook(ctx)
		a.guard(ctx, "status", a.runStatusCycle)
		a.guard(ctx, "chats", a.runChatCycle)

		if !a.pause(ctx) {
			continue
		}
		if a.searchDue(ctx) {
			a.guard(ctx, "search", a.runSearchCycle)
		}
	}
}

// guard runs one sub-cycle, absorbing its error into the log and the
// activity stream.
func (a *Agent) guard(ctx context.Context, name string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		a.logger.Error("cycle failed", zap.String("cycle", name), zap.Error(err))
		if logErr := a.store.LogActivity(ctx, models.EventError, nil,
			fmt.Sprintf("%s cycle failed: %v", name, err)); logErr != nil {
			a.logger.Error("failed to log error event", zap.Error(logErr))
		}
	}
}

// pause sleeps loopPause in pauseSlice steps, returning early (false) when
// the agent is stopped or the context is cancelled.
func (a *Agent) pause(ctx context.Context) bool {
	for i := 0; i < int(loopPause/pauseSlice); i++ {
		if !a.IsRunning() || ctx.Err() != nil {
			return false
		}
		if !a.sleep(ctx, pauseSlice) {
			return false
		}
	}
	return a.IsRunning()
}

// searchDue reports whether the most recent vacancy is older than the
// configured search interval. With no vacancies at all the search is due
// unconditionally.
func (a *Agent) searchDue(ctx context.Context) bool {
	settings, err := a.store.GetSearchSettings(ctx)
	if err != nil {
		return false
	}
	last, err := a.store.LatestVacancyFoundAt(ctx)
	if err != nil {
		a.logger.Error("failed to read latest vacancy time", zap.Error(err))
		return false
	}
	if last == nil {
		return true
	}
	interval := time.Duration(settings.SearchIntervalMinutes) * time.Minute
	return a.now().Sub(*last) >= interval
}

func (a *Agent) maybeRunDailyHook(ctx context.Context) {
	if a.dailyHook == nil {
		return
	}
	now := a.now()
	if now.Hour() != dailyHookHour || now.Minute() >= dailyHookMinuteCap {
		return
	}
	day := now.Format("2006-01-02")
	if a.lastDailyHook == day {
		return
	}
	a.lastDailyHook = day

	a.logger.Info("running daily hook")
	if err := a.dailyHook(ctx); err != nil {
		a.logger.Error("daily hook failed", zap.Error(err))
		if logErr := a.store.LogActivity(ctx, models.EventError, nil,
			fmt.Sprintf("daily sync failed: %v", err)); logErr != nil {
			a.logger.Error("failed to log error event", zap.Error(logErr))
		}
	}
}

func (a *Agent) today() string {
	return a.now().Format("2006-01-02")
}
