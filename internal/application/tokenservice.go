package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mudit06mah/guardian/internal/domain/model"
	"github.com/mudit06mah/guardian/internal/domain/port/driven"
)

// TokenService owns the installation token lifecycle: minting on install,
// revoking on uninstall, and keeping the persisted token fresh before use.
type TokenService struct {
	creds    driven.CredentialProvider
	store    driven.InstallationStore
	fetchers *FetcherProvider
	logger   *slog.Logger
}

// NewTokenService creates a TokenService with all required dependencies.
func NewTokenService(
	creds driven.CredentialProvider,
	store driven.InstallationStore,
	fetchers *FetcherProvider,
	logger *slog.Logger,
) *TokenService {
	return &TokenService{
		creds:    creds,
		store:    store,
		fetchers: fetchers,
		logger:   logger,
	}
}

// Link mints a token for a new installation and stores it. If the installation
// is already known only its token is replaced.
func (s *TokenService) Link(ctx context.Context, installationID int64, accountLogin string) error {
	token, err := s.creds.RequestInstallationToken(ctx, installationID)
	if err != nil {
		return fmt.Errorf("link installation %d: %w", installationID, err)
	}

	err = s.store.Upsert(ctx, model.InstallationCredential{
		InstallationID: installationID,
		AccountLogin:   accountLogin,
		Token:          token,
	})
	if err != nil {
		return fmt.Errorf("link installation %d: %w", installationID, err)
	}

	s.logger.Info("installation linked", "installation_id", installationID, "account", accountLogin, "token", token)
	return nil
}

// Revoke forgets every credential of an installation.
func (s *TokenService) Revoke(ctx context.Context, installationID int64) error {
	removed, err := s.store.Delete(ctx, installationID)
	if err != nil {
		return fmt.Errorf("revoke installation %d: %w", installationID, err)
	}
	s.fetchers.Evict(installationID)

	s.logger.Info("installation revoked", "installation_id", installationID, "credentials_removed", removed)
	return nil
}

// EnsureFresh returns a token for cred that stays valid for at least the
// refresh buffer. A refreshed token is persisted before it is returned, so
// callers only ever use the stored token.
func (s *TokenService) EnsureFresh(ctx context.Context, cred model.InstallationCredential) (model.InstallationToken, error) {
	token, refreshed, err := s.creds.RefreshIfNeeded(ctx, cred.InstallationID, cred.Token)
	if err != nil {
		return model.InstallationToken{}, fmt.Errorf("refresh token for installation %d: %w", cred.InstallationID, err)
	}
	if !refreshed {
		return token, nil
	}

	if err := s.store.UpdateToken(ctx, cred.InstallationID, token); err != nil {
		return model.InstallationToken{}, fmt.Errorf("store refreshed token for installation %d: %w", cred.InstallationID, err)
	}

	s.logger.Debug("installation token refreshed", "installation_id", cred.InstallationID, "token", token)
	return token, nil
}

// Fetcher returns a WorkflowFetcher for the installation using a fresh token.
// Returns nil, nil if the installation has no stored credential.
func (s *TokenService) Fetcher(ctx context.Context, installationID int64) (driven.WorkflowFetcher, error) {
	cred, err := s.store.Get(ctx, installationID)
	if err != nil {
		return nil, fmt.Errorf("load credential for installation %d: %w", installationID, err)
	}
	if cred == nil {
		return nil, nil
	}

	token, err := s.EnsureFresh(ctx, *cred)
	if err != nil {
		return nil, err
	}

	return s.fetchers.Get(installationID, token.Value)
}
