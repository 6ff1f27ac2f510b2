package model

import "time"

// RefreshKind identifies what triggered a snapshot reload.
type RefreshKind string

const (
	RefreshKindNAV    RefreshKind = "nav"
	RefreshKindData   RefreshKind = "data"
	RefreshKindUpload RefreshKind = "upload"
	RefreshKindReload RefreshKind = "reload"
)

type RefreshStatus string

const (
	RefreshStatusSuccess RefreshStatus = "success"
	RefreshStatusError   RefreshStatus = "error"
)

// RefreshLog records one upstream refresh attempt.
type RefreshLog struct {
	ID         string        `json:"id"`
	Kind       RefreshKind   `json:"kind"`
	Status     RefreshStatus `json:"status"`
	Message    string        `json:"message"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// StoredSnapshot is a cached snapshot row.
type StoredSnapshot struct {
	ID          string
	Snapshot    *Snapshot
	LastUpdated string
	Encrypted   bool
	CreatedAt   time.Time
}

// OperationResult is the {status, message} envelope returned by refresh and upload calls.
type OperationResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
