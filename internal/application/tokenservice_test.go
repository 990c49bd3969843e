package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mudit06mah/guardian/internal/application"
	"github.com/mudit06mah/guardian/internal/domain/model"
	"github.com/mudit06mah/guardian/internal/domain/port/driven"
)

func newTokenService(creds *mockCredentialProvider, store *mockInstallationStore) *application.TokenService {
	fetchers := application.NewFetcherProvider(func(string) (driven.WorkflowFetcher, error) {
		return &mockFetcher{}, nil
	})
	return application.NewTokenService(creds, store, fetchers, discardLogger())
}

func TestEnsureFresh_ValidTokenIsNotPersisted(t *testing.T) {
	current := model.InstallationToken{Value: "ghs_current", ExpiresAt: time.Now().Add(2 * time.Hour)}
	store := newMockInstallationStore(model.InstallationCredential{InstallationID: 1, Token: current})
	creds := &mockCredentialProvider{}

	got, err := newTokenService(creds, store).EnsureFresh(context.Background(), store.creds[1])
	require.NoError(t, err)

	assert.Equal(t, current, got)
	assert.Zero(t, store.updateCalls)
}

func TestEnsureFresh_RefreshedTokenIsPersistedFirst(t *testing.T) {
	old := model.InstallationToken{Value: "ghs_old", ExpiresAt: time.Now().Add(5 * time.Minute)}
	fresh := model.InstallationToken{Value: "ghs_fresh", ExpiresAt: time.Now().Add(time.Hour)}
	store := newMockInstallationStore(model.InstallationCredential{InstallationID: 1, Token: old})
	creds := &mockCredentialProvider{refresh: true, token: fresh}

	got, err := newTokenService(creds, store).EnsureFresh(context.Background(), store.creds[1])
	require.NoError(t, err)

	assert.Equal(t, fresh, got)
	assert.Equal(t, 1, store.updateCalls)
	assert.Equal(t, fresh, store.token(1))
}

func TestEnsureFresh_RefreshFailureReturnsZeroToken(t *testing.T) {
	store := newMockInstallationStore(model.InstallationCredential{InstallationID: 1})
	creds := &mockCredentialProvider{err: driven.ErrTransientNetwork}

	got, err := newTokenService(creds, store).EnsureFresh(context.Background(), store.creds[1])
	require.ErrorIs(t, err, driven.ErrTransientNetwork)
	assert.True(t, got.IsZero())
	assert.Zero(t, store.updateCalls)
}

func TestFetcher_NoCredential(t *testing.T) {
	store := newMockInstallationStore()
	creds := &mockCredentialProvider{}

	fetcher, err := newTokenService(creds, store).Fetcher(context.Background(), 9)
	require.NoError(t, err)
	assert.Nil(t, fetcher)
	assert.Zero(t, creds.refreshCalls.Load())
}

func TestRevoke_UnknownInstallationIsNotAnError(t *testing.T) {
	store := newMockInstallationStore()

	err := newTokenService(&mockCredentialProvider{}, store).Revoke(context.Background(), 9)
	require.NoError(t, err)
}
