package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

// RefreshLogRepository provides data access methods for the refresh_log table.
type RefreshLogRepository struct {
	db *sql.DB
}

// NewRefreshLogRepository creates a new RefreshLogRepository with the provided database connection.
func NewRefreshLogRepository(db *sql.DB) *RefreshLogRepository {
	return &RefreshLogRepository{db: db}
}

// Insert records entry, assigning a new ID when entry.ID is empty. Returns the stored entry.
func (r *RefreshLogRepository) Insert(ctx context.Context, entry model.RefreshLog) (model.RefreshLog, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_log (id, kind, status, message, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Kind, entry.Status, entry.Message, formatTime(entry.StartedAt), formatTime(entry.FinishedAt))
	if err != nil {
		return model.RefreshLog{}, fmt.Errorf("failed to insert refresh log: %w", err)
	}
	return entry, nil
}

// List returns the most recent entries, newest first. limit <= 0 returns every entry.
func (r *RefreshLogRepository) List(ctx context.Context, limit int) ([]model.RefreshLog, error) {
	query := `
		SELECT id, kind, status, message, started_at, finished_at
		FROM refresh_log
		ORDER BY started_at DESC, rowid DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query refresh_log table: %w", err)
	}
	defer rows.Close()

	entries := []model.RefreshLog{}
	for rows.Next() {
		entry, err := scanRefreshLog(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating refresh_log table: %w", err)
	}
	return entries, nil
}

// GetByID returns a single entry or apperrors.ErrRefreshLogNotFound.
func (r *RefreshLogRepository) GetByID(ctx context.Context, id string) (model.RefreshLog, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, kind, status, message, started_at, finished_at
		FROM refresh_log
		WHERE id = ?
	`, id)

	entry, err := scanRefreshLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RefreshLog{}, apperrors.ErrRefreshLogNotFound
		}
		return model.RefreshLog{}, err
	}
	return entry, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRefreshLog(row rowScanner) (model.RefreshLog, error) {
	var (
		entry                 model.RefreshLog
		message               sql.NullString
		startedStr, finishStr string
	)
	if err := row.Scan(&entry.ID, &entry.Kind, &entry.Status, &message, &startedStr, &finishStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entry, err
		}
		return entry, fmt.Errorf("failed to scan refresh_log results: %w", err)
	}
	entry.Message = message.String

	var err error
	entry.StartedAt, err = ParseTime(startedStr)
	if err != nil {
		return entry, fmt.Errorf("failed to parse started_at: %w", err)
	}
	entry.FinishedAt, err = ParseTime(finishStr)
	if err != nil {
		return entry, fmt.Errorf("failed to parse finished_at: %w", err)
	}
	return entry, nil
}
