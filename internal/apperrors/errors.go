package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrSnapshotNotFound indicates that no snapshot is cached and none could be fetched upstream.
	ErrSnapshotNotFound = errors.New("analytics data not found")

	// ErrRefreshLogNotFound indicates that a refresh log entry with the given ID does not exist.
	ErrRefreshLogNotFound = errors.New("refresh log entry not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrSnapshotMalformed indicates that a snapshot failed boundary validation
	// (e.g., it carries an error field or a scheme without an ISIN).
	ErrSnapshotMalformed = errors.New("malformed snapshot")

	// ErrInvalidDateRange indicates that a range label is not one of 1M, 3M, 6M, 1Y, 3Y, 5Y or ALL.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidSortColumn indicates that a sort column is not sortable for the view.
	ErrInvalidSortColumn = errors.New("invalid sort column")

	// ErrInvalidSortOrder indicates a sort order other than asc or desc.
	ErrInvalidSortOrder = errors.New("invalid sort order")

	// ErrInvalidDimension indicates a grouping dimension other than category, amc, sector or cap.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrInvalidPeriod indicates a rolling period other than 1Y, 3Y or 5Y.
	ErrInvalidPeriod = errors.New("invalid rolling period")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// Statement upload validation
	ErrMissingFile     = errors.New("no file part")
	ErrEmptyFileName   = errors.New("no selected file")
	ErrInvalidFileType = errors.New("invalid file type: only PDF statements are accepted")
	ErrMissingPassword = errors.New("password is required for statement upload")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
// These errors indicate that an operation failed, but not due to missing entities or validation issues.
var (
	// Upstream aggregation service errors
	ErrUpstreamUnavailable = errors.New("upstream analytics service unavailable")
	ErrUpstreamRejected    = errors.New("upstream analytics service rejected the request")

	// Snapshot storage errors
	ErrFailedToStoreSnapshot    = errors.New("failed to store snapshot")
	ErrFailedToRetrieveSnapshot = errors.New("failed to retrieve snapshot")
	ErrDecryptSnapshot          = errors.New("failed to decrypt cached snapshot")

	// Refresh log errors
	ErrFailedToRetrieveHistory = errors.New("failed to retrieve refresh history")

	// Dashboard errors
	ErrFailedToBuildDashboard = errors.New("failed to build dashboard")
	ErrFailedToExport         = errors.New("failed to export investments")

	// System operation errors
	ErrFailedToGetVersionInfo = errors.New("failed to get version information")
)
