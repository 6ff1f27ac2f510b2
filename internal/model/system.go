package model

// VersionInfo contains version and schema information for the application.
type VersionInfo struct {
	AppVersion      string `json:"app_version"`
	DbVersion       string `json:"db_version"`
	SnapshotLoaded  bool   `json:"snapshot_loaded"`
	SnapshotUpdated string `json:"snapshot_updated,omitempty"`
}
