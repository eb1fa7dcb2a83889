package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/xaenox/hh-agent/internal/ai"
	"github.com/xaenox/hh-agent/internal/models"
	"github.com/xaenox/hh-agent/internal/resume"
	"go.uber.org/zap"
)

const chatEventPreviewLen = 50

// runChatCycle pulls new messages for every active chat, classifies them and
// dispatches at most one automatic reaction per incoming message.
func (a *Agent) runChatCycle(ctx context.Context) error {
	chats, err := a.store.ListActiveChats(ctx)
	if err != nil {
		return fmt.Errorf("listing active chats: %w", err)
	}
	if len(chats) == 0 {
		return nil
	}

	projection, err := a.resume.Project(ctx)
	if err != nil {
		return fmt.Errorf("building resume projection: %w", err)
	}

	for i, chat := range chats {
		if i > 0 && !a.sleep(ctx, chatDelay) {
			return nil
		}
		a.processChat(ctx, chat, projection)
	}
	return nil
}

func (a *Agent) processChat(ctx context.Context, chat *models.Chat, projection *resume.Projection) {
	remote, err := a.board.ListMessages(ctx, chat.RemoteChatID)
	if err != nil {
		a.logger.Error("listing chat messages failed",
			zap.String("chat_id", chat.RemoteChatID), zap.Error(err))
		return
	}

	saved, err := a.store.ListChatMessages(ctx, chat.ID)
	if err != nil {
		a.logger.Error("loading saved chat messages failed",
			zap.Int64("chat_id", chat.ID), zap.Error(err))
		return
	}
	var history strings.Builder
	for _, m := range saved {
		fmt.Fprintf(&history, "%s: %s\n", m.AuthorType, m.Text)
	}

	lastRemoteID, err := a.store.LastRemoteMessageID(ctx, chat.ID)
	if err != nil {
		a.logger.Error("loading last remote message id failed",
			zap.Int64("chat_id", chat.ID), zap.Error(err))
		return
	}

	vacancyTitle := ""
	if vacancy, err := a.store.GetVacancyByID(ctx, chat.VacancyID); err == nil {
		vacancyTitle = vacancy.Title
	}

	for _, msg := range remote {
		if msg.ID == lastRemoteID {
			continue
		}
		exists, err := a.store.ChatMessageExists(ctx, msg.ID)
		if err != nil {
			a.logger.Error("message existence check failed",
				zap.String("message_id", msg.ID), zap.Error(err))
			continue
		}
		if exists {
			continue
		}

		if msg.Author.ParticipantType == models.AuthorApplicant {
			// Our own outgoing message observed remotely; keep it as history.
			remoteID := msg.ID
			if err := a.store.CreateChatMessage(ctx, &models.ChatMessage{
				ChatID:          chat.ID,
				RemoteMessageID: &remoteID,
				AuthorType:      models.AuthorApplicant,
				Text:            msg.Text,
				CreatedAt:       a.now(),
			}); err != nil {
				a.logger.Error("failed to save applicant message", zap.Error(err))
			}
			fmt.Fprintf(&history, "%s: %s\n", models.AuthorApplicant, msg.Text)
			continue
		}

		analysis, err := a.assistant.AnalyzeMessage(ctx, msg.Text, history.String())
		if err != nil {
			a.logger.Warn("message analysis failed, falling back to heuristic",
				zap.String("message_id", msg.ID), zap.Error(err))
			analysis = &ai.MessageAnalysis{IsBot: ai.IsBotMessage(msg.Text)}
		}

		remoteID := msg.ID
		incoming := &models.ChatMessage{
			ChatID:          chat.ID,
			RemoteMessageID: &remoteID,
			AuthorType:      models.AuthorEmployer,
			Text:            msg.Text,
			CreatedAt:       a.now(),
		}
		if analysis.Sentiment != "" {
			sentiment := analysis.Sentiment
			incoming.AISentiment = &sentiment
		}
		if analysis.Intent != "" {
			intent := analysis.Intent
			incoming.AIIntent = &intent
		}
		if err := a.store.CreateChatMessage(ctx, incoming); err != nil {
			a.logger.Error("failed to save incoming message",
				zap.String("message_id", msg.ID), zap.Error(err))
			continue
		}

		if err := a.store.TouchChatOnMessage(ctx, chat.ID, analysis.IsBot); err != nil {
			a.logger.Error("failed to update chat", zap.Error(err))
		}
		if err := a.store.LogActivity(ctx, models.EventChat, &chat.VacancyID,
			fmt.Sprintf("New message from %s: %s", chat.EmployerName, preview(msg.Text))); err != nil {
			a.logger.Error("failed to log chat event", zap.Error(err))
		}

		switch {
		case analysis.IsBot:
			a.autoReply(ctx, chat, msg.Text, projection, vacancyTitle)
		case analysis.ShouldInviteTelegram && !chat.TelegramInvited:
			a.inviteTelegram(ctx, chat, msg.Text, projection, vacancyTitle)
		}

		fmt.Fprintf(&history, "%s: %s\n", models.AuthorEmployer, msg.Text)
	}
}

// autoReply answers a bot message with a generated response.
func (a *Agent) autoReply(ctx context.Context, chat *models.Chat, text string,
	projection *resume.Projection, vacancyTitle string) {
	reply, err := a.assistant.GenerateChatResponse(ctx, text, projection.Text, vacancyTitle)
	if err != nil {
		a.logger.Error("chat response generation failed",
			zap.String("chat_id", chat.RemoteChatID), zap.Error(err))
		return
	}
	if err := a.board.SendMessage(ctx, chat.RemoteChatID, reply); err != nil {
		a.logger.Error("sending auto-reply failed",
			zap.String("chat_id", chat.RemoteChatID), zap.Error(err))
		return
	}
	if err := a.store.CreateChatMessage(ctx, &models.ChatMessage{
		ChatID:         chat.ID,
		AuthorType:     models.AuthorApplicant,
		Text:           reply,
		IsAutoResponse: true,
		CreatedAt:      a.now(),
	}); err != nil {
		a.logger.Error("failed to save auto-reply", zap.Error(err))
	}
	if err := a.store.LogActivity(ctx, models.EventChat, &chat.VacancyID,
		"Auto-replied to bot message"); err != nil {
		a.logger.Error("failed to log chat event", zap.Error(err))
	}
}

// inviteTelegram answers a human recruiter and appends the one-time
// messenger invite.
func (a *Agent) inviteTelegram(ctx context.Context, chat *models.Chat, text string,
	projection *resume.Projection, vacancyTitle string) {
	reply, err := a.assistant.GenerateChatResponse(ctx, text, projection.Text, vacancyTitle)
	if err != nil {
		a.logger.Error("chat response generation failed",
			zap.String("chat_id", chat.RemoteChatID), zap.Error(err))
		return
	}
	invite, err := a.assistant.GenerateTelegramInvite(ctx, text, projection.Telegram)
	if err != nil {
		a.logger.Error("telegram invite generation failed",
			zap.String("chat_id", chat.RemoteChatID), zap.Error(err))
		return
	}

	body := reply + "\n\n" + invite
	if err := a.board.SendMessage(ctx, chat.RemoteChatID, body); err != nil {
		a.logger.Error("sending telegram invite failed",
			zap.String("chat_id", chat.RemoteChatID), zap.Error(err))
		return
	}

	if err := a.store.MarkChatTelegramInvited(ctx, chat.ID); err != nil {
		a.logger.Error("failed to mark chat invited", zap.Error(err))
	}
	chat.TelegramInvited = true
	chat.IsHumanConfirmed = true

	if err := a.store.CreateChatMessage(ctx, &models.ChatMessage{
		ChatID:         chat.ID,
		AuthorType:     models.AuthorApplicant,
		Text:           body,
		IsAutoResponse: true,
		CreatedAt:      a.now(),
	}); err != nil {
		a.logger.Error("failed to save invite message", zap.Error(err))
	}
	if err := a.store.AddDailyStats(ctx, a.today(), models.DailyStats{TelegramInvitesSent: 1}); err != nil {
		a.logger.Error("failed to update daily stats", zap.Error(err))
	}
	if err := a.store.LogActivity(ctx, models.EventInvite, &chat.VacancyID,
		fmt.Sprintf("Sent telegram invite to %s", chat.EmployerName)); err != nil {
		a.logger.Error("failed to log invite event", zap.Error(err))
	}
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= chatEventPreviewLen {
		return text
	}
	return string(runes[:chatEventPreviewLen])
}
