package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/xaenox/hh-agent/internal/models"
	"github.com/xaenox/hh-agent/internal/storage"
	"go.uber.org/zap"
)

// statusEventLabels name the response events emitted on a transition.
var statusEventLabels = map[models.VacancyStatus]string{
	models.VacancyInvited:  "Interview invitation",
	models.VacancyRejected: "Rejection",
	models.VacancyViewed:   "Application viewed",
}

// MapNegotiationState maps a remote negotiation state onto the local vacancy
// status. The mapping is total and idempotent: local status names map to
// themselves, anything unrecognised maps to applied (known=false so the
// caller can log it).
func MapNegotiationState(stateID string) (status models.VacancyStatus, known bool) {
	switch stateID {
	case "invitation", string(models.VacancyInvited):
		return models.VacancyInvited, true
	case "discard", string(models.VacancyRejected):
		return models.VacancyRejected, true
	case "response", string(models.VacancyViewed):
		return models.VacancyViewed, true
	case "", "active", string(models.VacancyApplied):
		return models.VacancyApplied, true
	default:
		return models.VacancyApplied, false
	}
}

// runStatusCycle reconciles remote negotiation states onto local vacancy and
// application rows, emitting response events and daily counters on
// transitions.
func (a *Agent) runStatusCycle(ctx context.Context) error {
	negotiations, err := a.board.ListNegotiations(ctx)
	if err != nil {
		a.logger.Warn("listing negotiations failed", zap.Error(err))
		return nil
	}

	for _, negotiation := range negotiations {
		if negotiation.Vacancy == nil {
			continue
		}
		status, known := MapNegotiationState(negotiation.State.ID)
		if !known {
			a.logger.Warn("unknown negotiation state",
				zap.String("state", negotiation.State.ID),
				zap.String("negotiation_id", negotiation.ID))
		}

		vacancy, err := a.store.GetVacancyByRemoteID(ctx, negotiation.Vacancy.ID)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			a.logger.Error("loading vacancy failed",
				zap.String("vacancy_id", negotiation.Vacancy.ID), zap.Error(err))
			continue
		}
		if vacancy.Status == status {
			continue
		}

		if label, ok := statusEventLabels[status]; ok {
			if err := a.store.LogActivity(ctx, models.EventResponse, &vacancy.ID,
				fmt.Sprintf("%s: %s at %s", label, vacancy.Title, vacancy.Company)); err != nil {
				a.logger.Error("failed to log response event", zap.Error(err))
			}
		}

		switch status {
		case models.VacancyInvited:
			if err := a.store.AddDailyStats(ctx, a.today(), models.DailyStats{InvitationsReceived: 1}); err != nil {
				a.logger.Error("failed to update daily stats", zap.Error(err))
			}
		case models.VacancyRejected:
			if err := a.store.AddDailyStats(ctx, a.today(), models.DailyStats{RejectionsReceived: 1}); err != nil {
				a.logger.Error("failed to update daily stats", zap.Error(err))
			}
		}

		if err := a.store.UpdateVacancyStatus(ctx, vacancy.ID, status, nil); err != nil {
			a.logger.Error("failed to update vacancy status", zap.Error(err))
			continue
		}
		if err := a.store.UpdateApplicationStatusByVacancy(ctx, vacancy.ID, string(status)); err != nil {
			a.logger.Error("failed to update application status", zap.Error(err))
		}

		a.logger.Info("negotiation status changed",
			zap.String("vacancy_id", vacancy.RemoteID),
			zap.String("from", string(vacancy.Status)),
			zap.String("to", string(status)))
	}
	return nil
}
