package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/hh-agent/internal/ai"
	"github.com/xaenox/hh-agent/internal/hh"
	"github.com/xaenox/hh-agent/internal/models"
	"github.com/xaenox/hh-agent/internal/storage"
)

func employerMessage(id, text string) hh.Message {
	return hh.Message{
		ID:     id,
		Author: hh.MessageAuthor{ParticipantType: models.AuthorEmployer},
		Text:   text,
	}
}

// seedChat creates an applied vacancy with its negotiation chat and returns both.
func seedChat(t *testing.T, store *storage.MemoryStorage, remoteChatID string) (*models.Vacancy, *models.Chat) {
	t.Helper()
	ctx := context.Background()

	vacancy := &models.Vacancy{
		RemoteID: "v-" + remoteChatID,
		Title:    "Go Developer",
		Company:  "Acme",
		Status:   models.VacancyApplied,
		FoundAt:  testNow,
	}
	require.NoError(t, store.CreateVacancy(ctx, vacancy))

	chat := &models.Chat{
		VacancyID:    vacancy.ID,
		RemoteChatID: remoteChatID,
		EmployerName: "Acme",
	}
	require.NoError(t, store.CreateChat(ctx, chat))
	return vacancy, chat
}

func TestChatCycle_BotMessageGetsAutoReply(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedPortfolio(store)
	_, chat := seedChat(t, store, "n1")

	board := newFakeBoard()
	board.messages["n1"] = []hh.Message{
		employerMessage("m1", "Пожалуйста, ответьте на вопросы анкеты."),
	}
	assistant := &fakeAssistant{
		analysis: &ai.MessageAnalysis{IsBot: true, Intent: "screening"},
		response: "Here are my answers.",
	}
	agent := newTestAgent(store, board, assistant)
	ctx := context.Background()

	require.NoError(t, agent.runChatCycle(ctx))

	assert.Equal(t, []string{"Here are my answers."}, board.sentTo("n1"))

	messages, err := store.ListChatMessages(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, models.AuthorEmployer, messages[0].AuthorType)
	require.NotNil(t, messages[0].AIIntent)
	assert.Equal(t, "screening", *messages[0].AIIntent)
	assert.Equal(t, models.AuthorApplicant, messages[1].AuthorType)
	assert.True(t, messages[1].IsAutoResponse)

	chats, err := store.ListActiveChats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.True(t, chats[0].IsBot)

	require.Len(t, eventsOfType(t, store, models.EventChat), 2)
}

func TestChatCycle_HumanMessageGetsOneTelegramInvite(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedPortfolio(store)
	_, chat := seedChat(t, store, "n1")

	board := newFakeBoard()
	board.messages["n1"] = []hh.Message{
		employerMessage("m1", "Hi! I liked your profile, when can we talk?"),
	}
	assistant := &fakeAssistant{
		analysis: &ai.MessageAnalysis{
			Sentiment:            "positive",
			Intent:               "interview_request",
			ShouldInviteTelegram: true,
		},
		response: "Thanks, happy to talk.",
		invite:   "You can also reach me on Telegram: https://t.me/dev",
	}
	agent := newTestAgent(store, board, assistant)
	ctx := context.Background()

	require.NoError(t, agent.runChatCycle(ctx))

	sent := board.sentTo("n1")
	require.Len(t, sent, 1)
	assert.True(t, strings.HasPrefix(sent[0], "Thanks, happy to talk.\n\n"))
	assert.Contains(t, sent[0], "https://t.me/dev")

	chats, err := store.ListActiveChats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.True(t, chats[0].TelegramInvited)
	assert.True(t, chats[0].IsHumanConfirmed)

	stats, err := store.GetDailyStats(ctx, "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TelegramInvitesSent)
	require.Len(t, eventsOfType(t, store, models.EventInvite), 1)

	// A later human message must not trigger a second invite.
	board.messages["n1"] = append(board.messages["n1"],
		employerMessage("m2", "Great, talk tomorrow?"))
	require.NoError(t, agent.runChatCycle(ctx))

	assert.Len(t, board.sentTo("n1"), 1)
	require.Len(t, eventsOfType(t, store, models.EventInvite), 1)

	messages, err := store.ListChatMessages(ctx, chat.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 3)
}

func TestChatCycle_AnalysisFailureFallsBackToHeuristic(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedPortfolio(store)
	seedChat(t, store, "n1")

	board := newFakeBoard()
	board.messages["n1"] = []hh.Message{
		employerMessage("m1", "Это автоматическое сообщение, пройдите тестовое задание."),
	}
	assistant := &fakeAssistant{
		analysisErr: errors.New("model unavailable"),
		response:    "Done.",
	}
	agent := newTestAgent(store, board, assistant)
	ctx := context.Background()

	require.NoError(t, agent.runChatCycle(ctx))

	// The heuristic classified the message as a bot and replied anyway.
	assert.Equal(t, []string{"Done."}, board.sentTo("n1"))
}

func TestChatCycle_KnownMessagesAreNotReprocessed(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedPortfolio(store)
	_, chat := seedChat(t, store, "n1")

	board := newFakeBoard()
	board.messages["n1"] = []hh.Message{
		employerMessage("m1", "Hello"),
	}
	assistant := &fakeAssistant{
		analysis: &ai.MessageAnalysis{IsBot: true},
		response: "Hi",
	}
	agent := newTestAgent(store, board, assistant)
	ctx := context.Background()

	require.NoError(t, agent.runChatCycle(ctx))
	require.NoError(t, agent.runChatCycle(ctx))

	assert.Len(t, board.sentTo("n1"), 1)
	messages, err := store.ListChatMessages(ctx, chat.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}

func TestChatCycle_ApplicantMessagesKeptAsHistoryOnly(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedPortfolio(store)
	_, chat := seedChat(t, store, "n1")

	board := newFakeBoard()
	board.messages["n1"] = []hh.Message{
		{
			ID:     "m1",
			Author: hh.MessageAuthor{ParticipantType: models.AuthorApplicant},
			Text:   "Hello, I applied earlier.",
		},
	}
	agent := newTestAgent(store, board, &fakeAssistant{})
	ctx := context.Background()

	require.NoError(t, agent.runChatCycle(ctx))

	assert.Empty(t, board.sentTo("n1"))
	messages, err := store.ListChatMessages(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, models.AuthorApplicant, messages[0].AuthorType)
	assert.Empty(t, eventsOfType(t, store, models.EventChat))
}

func TestPreviewTruncatesRuneSafe(t *testing.T) {
	assert.Equal(t, "short", preview("short"))

	long := strings.Repeat("п", chatEventPreviewLen+10)
	truncated := preview(long)
	assert.Equal(t, chatEventPreviewLen, len([]rune(truncated)))
}
