package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

// DefaultSnapshotRetention is how many cached snapshots are kept after a save.
const DefaultSnapshotRetention = 5

// SnapshotRepository caches snapshots produced by the upstream service in the snapshot table.
// When constructed with a Fernet key the JSON payload is encrypted at rest.
type SnapshotRepository struct {
	db        *sql.DB
	key       *fernet.Key
	retention int
}

// NewSnapshotRepository creates a SnapshotRepository. encryptionKey may be empty to store plain JSON;
// otherwise it must be a base64 encoded 32 byte Fernet key.
func NewSnapshotRepository(db *sql.DB, encryptionKey string) (*SnapshotRepository, error) {
	r := &SnapshotRepository{db: db, retention: DefaultSnapshotRetention}
	if encryptionKey != "" {
		key, err := fernet.DecodeKey(encryptionKey)
		if err != nil {
			return nil, fmt.Errorf("invalid snapshot encryption key: %w", err)
		}
		r.key = key
	}
	return r, nil
}

// Save stores snap as the newest cached snapshot and prunes rows beyond the retention limit.
// Returns the generated snapshot ID.
func (r *SnapshotRepository) Save(ctx context.Context, snap *model.Snapshot) (string, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	encrypted := false
	if r.key != nil {
		payload, err = fernet.EncryptAndSign(payload, r.key)
		if err != nil {
			return "", fmt.Errorf("failed to encrypt snapshot: %w", err)
		}
		encrypted = true
	}

	id := uuid.New().String()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshot (id, payload, encrypted, last_updated, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, payload, encrypted, snap.LastUpdated, formatTime(time.Now()))
	if err != nil {
		return "", fmt.Errorf("failed to insert snapshot: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM snapshot
		WHERE rowid NOT IN (SELECT rowid FROM snapshot ORDER BY rowid DESC LIMIT ?)
	`, r.retention)
	if err != nil {
		return "", fmt.Errorf("failed to prune snapshots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return id, nil
}

// Latest returns the most recently saved snapshot.
// Returns apperrors.ErrSnapshotNotFound when the table is empty and apperrors.ErrDecryptSnapshot when an
// encrypted payload cannot be opened with the configured key.
func (r *SnapshotRepository) Latest(ctx context.Context) (*model.StoredSnapshot, error) {
	var (
		stored       model.StoredSnapshot
		payload      []byte
		lastUpdated  sql.NullString
		createdAtStr string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, payload, encrypted, last_updated, created_at
		FROM snapshot
		ORDER BY rowid DESC
		LIMIT 1
	`).Scan(&stored.ID, &payload, &stored.Encrypted, &lastUpdated, &createdAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to query snapshot table: %w", err)
	}

	if stored.Encrypted {
		if r.key == nil {
			return nil, fmt.Errorf("%w: snapshot is encrypted but no key is configured", apperrors.ErrDecryptSnapshot)
		}
		payload = fernet.VerifyAndDecrypt(payload, 0, []*fernet.Key{r.key})
		if payload == nil {
			return nil, fmt.Errorf("%w: token rejected by configured key", apperrors.ErrDecryptSnapshot)
		}
	}

	var snap model.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode cached snapshot: %w", err)
	}
	stored.Snapshot = &snap
	stored.LastUpdated = lastUpdated.String

	stored.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot created_at: %w", err)
	}
	return &stored, nil
}

// Count returns the number of cached snapshots.
func (r *SnapshotRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM snapshot").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return n, nil
}
