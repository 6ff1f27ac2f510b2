package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/logging"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/validation"
)

// UpstreamClient is the subset of the aggregation service API the snapshot service depends on.
// *upstream.Client satisfies it; tests substitute testutil.MockUpstreamClient.
type UpstreamClient interface {
	FetchSnapshot(ctx context.Context) (*model.Snapshot, error)
	RefreshNAV(ctx context.Context) (model.OperationResult, error)
	RefreshData(ctx context.Context) (model.OperationResult, error)
	UploadStatement(ctx context.Context, filename string, file io.Reader, password string) (model.OperationResult, error)
}

// SnapshotService owns the current analytics snapshot.
//
// The snapshot is held in memory as an immutable pointer. Readers take it under a read lock and never
// mutate it; a reload builds a complete replacement and swaps the pointer. The sqlite cache lets the
// service answer after a restart without waiting for the aggregation service.
//
// Lifecycle:
//  1. First read: memory, then the newest cached row, then a fetch from upstream
//  2. Refresh/upload: forward to upstream, record a refresh_log row, fetch and swap
//  3. Every fetched snapshot is validated and normalised before it is cached or served
type SnapshotService struct {
	upstream   UpstreamClient
	snapshots  *repository.SnapshotRepository
	refreshLog *repository.RefreshLogRepository
	logger     zerolog.Logger

	mu      sync.RWMutex
	current *model.Snapshot

	// reloadMu serialises loads so concurrent first reads trigger one upstream fetch.
	reloadMu sync.Mutex
}

// NewSnapshotService creates a new SnapshotService with the provided upstream client and repositories.
func NewSnapshotService(
	upstream UpstreamClient,
	snapshots *repository.SnapshotRepository,
	refreshLog *repository.RefreshLogRepository,
) *SnapshotService {
	return &SnapshotService{
		upstream:   upstream,
		snapshots:  snapshots,
		refreshLog: refreshLog,
		logger:     logging.Component("snapshot"),
	}
}

// Current returns the snapshot every view is computed from.
//
// Returns:
//   - *model.Snapshot: The shared snapshot; callers must treat it as read-only
//   - error: apperrors.ErrSnapshotNotFound (wrapped) when nothing is cached and upstream cannot supply one
func (s *SnapshotService) Current(ctx context.Context) (*model.Snapshot, error) {
	s.mu.RLock()
	snap := s.current
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}
	return s.load(ctx)
}

// Status reports whether a snapshot is in memory and its upstream last_updated stamp.
func (s *SnapshotService) Status() (loaded bool, lastUpdated string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return false, ""
	}
	return true, s.current.LastUpdated
}

func (s *SnapshotService) load(ctx context.Context) (*model.Snapshot, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	// Another caller may have finished loading while we waited.
	s.mu.RLock()
	snap := s.current
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	stored, err := s.snapshots.Latest(ctx)
	switch {
	case err == nil:
		verr := validation.ValidateSnapshot(stored.Snapshot)
		if verr == nil {
			s.swap(stored.Snapshot)
			s.logger.Info().
				Str("snapshot_id", stored.ID).
				Str("last_updated", stored.LastUpdated).
				Msg("loaded cached snapshot")
			return stored.Snapshot, nil
		}
		s.logger.Warn().Err(verr).Str("snapshot_id", stored.ID).Msg("cached snapshot failed validation")
	case errors.Is(err, apperrors.ErrSnapshotNotFound):
		s.logger.Info().Msg("no cached snapshot, fetching from upstream")
	default:
		s.logger.Warn().Err(err).Msg("cached snapshot unreadable, fetching from upstream")
	}

	started := time.Now()
	snap, err = s.fetchAndStore(ctx)
	s.record(ctx, model.RefreshKindReload, started, model.OperationResult{Message: "initial load"}, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrSnapshotNotFound, err)
	}
	return snap, nil
}

// Reload fetches a fresh snapshot from upstream and swaps it in. The previous snapshot stays in place
// when the fetch or validation fails.
func (s *SnapshotService) Reload(ctx context.Context) (*model.Snapshot, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	started := time.Now()
	snap, err := s.fetchAndStore(ctx)
	s.record(ctx, model.RefreshKindReload, started, model.OperationResult{Message: "snapshot reloaded"}, err)
	return snap, err
}

// RefreshNAV asks upstream to fetch the latest NAVs, then reloads the snapshot.
func (s *SnapshotService) RefreshNAV(ctx context.Context) (model.OperationResult, error) {
	return s.runOperation(ctx, model.RefreshKindNAV, s.upstream.RefreshNAV)
}

// RefreshData asks upstream to reprocess its statements, then reloads the snapshot.
func (s *SnapshotService) RefreshData(ctx context.Context) (model.OperationResult, error) {
	return s.runOperation(ctx, model.RefreshKindData, s.upstream.RefreshData)
}

// UploadStatement validates and forwards a statement upload, then reloads the snapshot.
// Invalid uploads are rejected before any upstream call and are not recorded in the refresh log.
func (s *SnapshotService) UploadStatement(ctx context.Context, filename string, file io.Reader, password string) (model.OperationResult, error) {
	if err := validation.ValidateUpload(filename, password); err != nil {
		return model.OperationResult{}, err
	}
	return s.runOperation(ctx, model.RefreshKindUpload, func(ctx context.Context) (model.OperationResult, error) {
		return s.upstream.UploadStatement(ctx, filename, file, password)
	})
}

// History returns the most recent refresh log entries, newest first.
func (s *SnapshotService) History(ctx context.Context, limit int) ([]model.RefreshLog, error) {
	entries, err := s.refreshLog.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveHistory, err)
	}
	return entries, nil
}

// HistoryEntry returns a single refresh log entry.
func (s *SnapshotService) HistoryEntry(ctx context.Context, id string) (model.RefreshLog, error) {
	return s.refreshLog.GetByID(ctx, id)
}

func (s *SnapshotService) runOperation(
	ctx context.Context,
	kind model.RefreshKind,
	op func(context.Context) (model.OperationResult, error),
) (model.OperationResult, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	started := time.Now()
	log := s.logger.With().Str("kind", string(kind)).Logger()
	log.Info().Msg("starting upstream operation")

	result, err := op(ctx)
	if err == nil {
		_, err = s.fetchAndStore(ctx)
	}
	s.record(ctx, kind, started, result, err)

	if err != nil {
		log.Error().Err(err).Dur("duration", time.Since(started)).Msg("upstream operation failed")
		if result.Status == "" {
			result.Status = string(model.RefreshStatusError)
		}
		if result.Message == "" {
			result.Message = err.Error()
		}
		return result, err
	}

	log.Info().Dur("duration", time.Since(started)).Str("message", result.Message).Msg("upstream operation completed")
	return result, nil
}

// fetchAndStore must be called with reloadMu held.
func (s *SnapshotService) fetchAndStore(ctx context.Context) (*model.Snapshot, error) {
	fetched, err := s.upstream.FetchSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateSnapshot(fetched); err != nil {
		return nil, err
	}
	snap := validation.NormalizeSnapshot(fetched)

	id, err := s.snapshots.Save(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToStoreSnapshot, err)
	}
	s.swap(snap)

	s.logger.Info().
		Str("snapshot_id", id).
		Str("last_updated", snap.LastUpdated).
		Int("schemes", len(snap.SchemeDetails)).
		Int("cash_flows", len(snap.CashFlows)).
		Msg("snapshot replaced")
	return snap, nil
}

func (s *SnapshotService) swap(snap *model.Snapshot) {
	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
}

// record writes a refresh_log row. A failed write is logged and otherwise ignored so it never masks the
// outcome of the operation itself.
func (s *SnapshotService) record(ctx context.Context, kind model.RefreshKind, started time.Time, result model.OperationResult, opErr error) {
	entry := model.RefreshLog{
		Kind:       kind,
		Status:     model.RefreshStatusSuccess,
		Message:    result.Message,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if opErr != nil {
		entry.Status = model.RefreshStatusError
		entry.Message = opErr.Error()
	}
	if _, err := s.refreshLog.Insert(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Error().Err(err).Str("kind", string(kind)).Msg("failed to record refresh log")
	}
}
