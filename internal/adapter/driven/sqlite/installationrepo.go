package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mudit06mah/guardian/internal/domain/model"
	"github.com/mudit06mah/guardian/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.InstallationStore = (*InstallationRepo)(nil)

// InstallationRepo is the SQLite implementation of the InstallationStore port.
// Access tokens are encrypted before write and decrypted after read.
type InstallationRepo struct {
	db     *DB
	cipher tokenCipher
}

// NewInstallationRepo creates an InstallationRepo. key must be 32 bytes for
// AES-256-GCM, or nil, in which case every operation that touches a token
// returns driven.ErrEncryptionKeyNotSet.
func NewInstallationRepo(db *DB, key []byte) *InstallationRepo {
	return &InstallationRepo{db: db, cipher: tokenCipher{key: key}}
}

// Get returns the credential for installationID, or nil, nil if none is stored.
func (r *InstallationRepo) Get(ctx context.Context, installationID int64) (*model.InstallationCredential, error) {
	if r.cipher.key == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	const query = `
		SELECT installation_id, account_login, access_token, token_expires_at, created_at, updated_at
		FROM installations
		WHERE installation_id = ?`

	var (
		cred                 model.InstallationCredential
		sealed               string
		expiresAt            sql.NullString
		createdAt, updatedAt string
	)
	err := r.db.Reader.QueryRowContext(ctx, query, installationID).
		Scan(&cred.InstallationID, &cred.AccountLogin, &sealed, &expiresAt, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get installation %d: %w", installationID, err)
	}

	if sealed != "" {
		cred.Token.Value, err = r.cipher.open(sealed)
		if err != nil {
			return nil, fmt.Errorf("decrypt token for installation %d: %w", installationID, err)
		}
	}
	if expiresAt.Valid {
		cred.Token.ExpiresAt, err = parseTime(expiresAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse token_expires_at: %w", err)
		}
	}
	if cred.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if cred.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &cred, nil
}

// Upsert inserts the credential. When the installation already has a row only
// the token, its expiry and updated_at change; account and created_at are kept.
func (r *InstallationRepo) Upsert(ctx context.Context, cred model.InstallationCredential) error {
	sealed, err := r.cipher.seal(cred.Token.Value)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO installations
			(installation_id, account_login, access_token, token_expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (installation_id) DO UPDATE SET
			access_token     = excluded.access_token,
			token_expires_at = excluded.token_expires_at,
			updated_at       = excluded.updated_at`

	now := time.Now().UTC()
	_, err = r.db.Writer.ExecContext(ctx, query,
		cred.InstallationID, cred.AccountLogin, sealed, nullTime(cred.Token.ExpiresAt), now, now)
	if err != nil {
		return fmt.Errorf("upsert installation %d: %w", cred.InstallationID, err)
	}
	return nil
}

// UpdateToken replaces the stored token with a single UPDATE statement.
func (r *InstallationRepo) UpdateToken(ctx context.Context, installationID int64, token model.InstallationToken) error {
	sealed, err := r.cipher.seal(token.Value)
	if err != nil {
		return err
	}

	const query = `
		UPDATE installations
		SET access_token = ?, token_expires_at = ?, updated_at = ?
		WHERE installation_id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query,
		sealed, nullTime(token.ExpiresAt), time.Now().UTC(), installationID)
	if err != nil {
		return fmt.Errorf("update token for installation %d: %w", installationID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update token for installation %d: %w", installationID, driven.ErrInstallationNotFound)
	}
	return nil
}

// Delete removes every row for installationID. Deleting an unknown
// installation is not an error and reports zero rows.
func (r *InstallationRepo) Delete(ctx context.Context, installationID int64) (int64, error) {
	const query = `DELETE FROM installations WHERE installation_id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, installationID)
	if err != nil {
		return 0, fmt.Errorf("delete installation %d: %w", installationID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rows affected: %w", err)
	}
	return rows, nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
