package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xaenox/hh-agent/internal/hh"
	"github.com/xaenox/hh-agent/internal/models"
	"github.com/xaenox/hh-agent/internal/storage"
	"go.uber.org/zap"
)

// refreshWindow is how close to expiry a token may get before it is
// proactively refreshed.
const refreshWindow = 5 * time.Minute

// Refresher trades a refresh token for a fresh pair. Implemented by hh.Client.
type Refresher interface {
	RefreshTokens(ctx context.Context, refreshToken string) (*hh.OAuthTokens, error)
}

// Authority owns the OAuth token lifecycle: it serves the latest stored
// access token and refreshes it when it is about to expire. Token pairs are
// append-only; concurrent refreshes are tolerated because only the most
// recent pair is consulted.
type Authority struct {
	store     storage.Storage
	refresher Refresher
	logger    *zap.Logger
	now       func() time.Time
}

func NewAuthority(store storage.Storage, refresher Refresher, logger *zap.Logger) *Authority {
	return &Authority{
		store:     store,
		refresher: refresher,
		logger:    logger,
		now:       time.Now,
	}
}

// AccessToken implements hh.TokenSource.
func (a *Authority) AccessToken(ctx context.Context) (string, error) {
	pair, err := a.store.LatestTokenPair(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return "", hh.ErrNotAuthorized
	}
	if err != nil {
		return "", fmt.Errorf("loading token pair: %w", err)
	}

	if pair.ExpiresAt.After(a.now().Add(refreshWindow)) {
		return pair.AccessToken, nil
	}

	tokens, err := a.refresher.RefreshTokens(ctx, pair.RefreshToken)
	if err != nil {
		a.logger.Error("token refresh failed", zap.Error(err))
		return "", hh.ErrNotAuthorized
	}

	fresh := &models.OAuthTokenPair{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    a.now().Add(time.Duration(tokens.ExpiresIn) * time.Second),
	}
	if err := a.store.SaveTokenPair(ctx, fresh); err != nil {
		return "", fmt.Errorf("saving refreshed token pair: %w", err)
	}

	a.logger.Info("access token refreshed",
		zap.Time("expires_at", fresh.ExpiresAt))
	return fresh.AccessToken, nil
}

// StoreExchanged persists a pair obtained from the authorization-code
// exchange driven by the admin surface.
func (a *Authority) StoreExchanged(ctx context.Context, tokens *hh.OAuthTokens) error {
	pair := &models.OAuthTokenPair{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    a.now().Add(time.Duration(tokens.ExpiresIn) * time.Second),
	}
	return a.store.SaveTokenPair(ctx, pair)
}
