package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/database"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/version"
)

// SnapshotStatus reports whether a snapshot is loaded and when it was produced upstream.
type SnapshotStatus interface {
	Status() (loaded bool, lastUpdated string)
}

// SystemService handles system-related operations
type SystemService struct {
	db        *sql.DB
	snapshots SnapshotStatus
}

// NewSystemService creates a new SystemService. snapshots may be nil when no snapshot service is wired.
func NewSystemService(db *sql.DB, snapshots SnapshotStatus) *SystemService {
	return &SystemService{
		db:        db,
		snapshots: snapshots,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion returns the application version, the applied migration version and the in-memory
// snapshot state.
func (s *SystemService) CheckVersion(ctx context.Context) (model.VersionInfo, error) {
	dbVersion, err := database.SchemaVersion(ctx, s.db)
	if err != nil {
		return model.VersionInfo{}, fmt.Errorf("failed to read schema version: %w", err)
	}

	info := model.VersionInfo{
		AppVersion: version.Version,
		DbVersion:  strconv.FormatInt(dbVersion, 10),
	}
	if s.snapshots != nil {
		info.SnapshotLoaded, info.SnapshotUpdated = s.snapshots.Status()
	}
	return info, nil
}
