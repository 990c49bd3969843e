package model

import (
	"log/slog"
	"time"
)

// InstallationToken is a short-lived bearer credential scoped to one installation.
type InstallationToken struct {
	Value     string
	ExpiresAt time.Time
}

// IsZero reports whether the token has never been minted.
func (t InstallationToken) IsZero() bool {
	return t.Value == ""
}

// ExpiresWithin reports whether the token expires less than d after now.
func (t InstallationToken) ExpiresWithin(now time.Time, d time.Duration) bool {
	return t.ExpiresAt.Sub(now) < d
}

// LogValue keeps the bearer value out of structured logs.
func (t InstallationToken) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("value", "[REDACTED]"),
		slog.Time("expires_at", t.ExpiresAt),
	)
}

// InstallationCredential binds a GitHub App installation to its current token.
// There is at most one credential per InstallationID.
type InstallationCredential struct {
	InstallationID int64
	AccountLogin   string
	Token          InstallationToken
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LogValue logs the credential with its token redacted.
func (c InstallationCredential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("installation_id", c.InstallationID),
		slog.String("account", c.AccountLogin),
		slog.Any("token", c.Token),
	)
}
