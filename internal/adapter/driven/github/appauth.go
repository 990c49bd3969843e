package github

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gh "github.com/google/go-github/v82/github"

	"github.com/mudit06mah/guardian/internal/domain/model"
	"github.com/mudit06mah/guardian/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialProvider = (*AppAuth)(nil)

const (
	// assertionBackdate absorbs clock skew between this host and GitHub.
	assertionBackdate = 60 * time.Second
	// assertionLifetime is the maximum GitHub accepts for an app JWT.
	assertionLifetime = 10 * time.Minute
	// RefreshBuffer is the minimum remaining lifetime of a token before it is replaced.
	RefreshBuffer = time.Hour
	// DefaultTimeout applies to every outbound GitHub request.
	DefaultTimeout = 10 * time.Second
)

// AppAuthConfig configures AppAuth. Only AppID and PrivateKey are required for
// production use; the rest exist so tests can point at an httptest server and
// control time.
type AppAuthConfig struct {
	AppID      string
	PrivateKey []byte // PEM, PKCS#1 or PKCS#8.
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Now        func() time.Time
}

// AppAuth authenticates as a GitHub App and mints installation tokens.
type AppAuth struct {
	appID  string
	key    *rsa.PrivateKey
	keyErr error
	gh     *gh.Client
	now    func() time.Time
}

// NewAppAuth builds an AppAuth. A missing or malformed key does not fail
// construction; it surfaces as driven.ErrSigning when a token is requested.
func NewAppAuth(cfg AppAuthConfig) (*AppAuth, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	client := gh.NewClient(httpClient)
	if cfg.BaseURL != "" {
		if err := setBaseURL(client, cfg.BaseURL); err != nil {
			return nil, err
		}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	a := &AppAuth{appID: cfg.AppID, gh: client, now: now}
	if len(cfg.PrivateKey) == 0 {
		a.keyErr = errors.New("private key not configured")
	} else {
		a.key, a.keyErr = jwt.ParseRSAPrivateKeyFromPEM(cfg.PrivateKey)
	}

	return a, nil
}

// MintAssertion signs a short-lived RS256 JWT identifying the app.
func (a *AppAuth) MintAssertion() (string, error) {
	if a.appID == "" {
		return "", fmt.Errorf("%w: app id not configured", driven.ErrSigning)
	}
	if a.keyErr != nil {
		return "", fmt.Errorf("%w: %w", driven.ErrSigning, a.keyErr)
	}

	now := a.now()
	claims := jwt.RegisteredClaims{
		Issuer:    a.appID,
		IssuedAt:  jwt.NewNumericDate(now.Add(-assertionBackdate)),
		ExpiresAt: jwt.NewNumericDate(now.Add(assertionLifetime)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(a.key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", driven.ErrSigning, err)
	}
	return signed, nil
}

// RequestInstallationToken exchanges a fresh assertion for an installation
// access token. On error the zero token is returned.
func (a *AppAuth) RequestInstallationToken(ctx context.Context, installationID int64) (model.InstallationToken, error) {
	assertion, err := a.MintAssertion()
	if err != nil {
		return model.InstallationToken{}, err
	}

	tok, resp, err := a.gh.WithAuthToken(assertion).Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return model.InstallationToken{}, fmt.Errorf("create token for installation %d: %w: %w",
			installationID, classifyTokenExchange(resp, err), err)
	}

	token := model.InstallationToken{
		Value:     tok.GetToken(),
		ExpiresAt: tok.GetExpiresAt().Time,
	}
	slog.Debug("installation token minted", "installation_id", installationID, "token", token)

	return token, nil
}

// RefreshIfNeeded returns current while it has at least RefreshBuffer left,
// otherwise a newly minted token.
func (a *AppAuth) RefreshIfNeeded(ctx context.Context, installationID int64, current model.InstallationToken) (model.InstallationToken, bool, error) {
	if !current.IsZero() && !current.ExpiresWithin(a.now(), RefreshBuffer) {
		return current, false, nil
	}

	fresh, err := a.RequestInstallationToken(ctx, installationID)
	if err != nil {
		return model.InstallationToken{}, false, err
	}
	return fresh, true, nil
}
