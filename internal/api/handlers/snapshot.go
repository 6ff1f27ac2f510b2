package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/service"
)

// SnapshotHandler serves the raw snapshot and forwards refresh and upload requests to the aggregation
// service.
type SnapshotHandler struct {
	snapshots   *service.SnapshotService
	externalURL string
	maxUpload   int64
}

// NewSnapshotHandler creates a new SnapshotHandler. maxUpload caps the statement upload body in bytes.
func NewSnapshotHandler(snapshots *service.SnapshotService, externalURL string, maxUpload int64) *SnapshotHandler {
	return &SnapshotHandler{
		snapshots:   snapshots,
		externalURL: externalURL,
		maxUpload:   maxUpload,
	}
}

// ConfigResponse is the client configuration returned by /api/config.
type ConfigResponse struct {
	ExternalURL string `json:"external_url"`
}

// Data handles GET requests for the current snapshot as cached.
//
// Endpoint: GET /api/data
// Response: 200 OK with model.Snapshot
// Error: 404 Not Found if no snapshot is cached and upstream cannot supply one
func (h *SnapshotHandler) Data(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshots.Current(r.Context())
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveSnapshot.Error(), err)
		return
	}
	response.RespondJSON(w, http.StatusOK, snap)
}

// Config handles GET /api/config.
func (h *SnapshotHandler) Config(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, ConfigResponse{ExternalURL: h.externalURL})
}

// RefreshNAV handles POST requests to refresh NAVs upstream and reload the snapshot.
//
// Endpoint: POST /api/refresh/nav
// Response: 200 OK with model.OperationResult
// Error: 502/503 with model.OperationResult (status "error") if upstream fails
func (h *SnapshotHandler) RefreshNAV(w http.ResponseWriter, r *http.Request) {
	result, err := h.snapshots.RefreshNAV(r.Context())
	respondOperation(w, result, err)
}

// RefreshData handles POST requests to reprocess statements upstream and reload the snapshot.
//
// Endpoint: POST /api/refresh/data
// Response: 200 OK with model.OperationResult
// Error: 502/503 with model.OperationResult (status "error") if upstream fails
func (h *SnapshotHandler) RefreshData(w http.ResponseWriter, r *http.Request) {
	result, err := h.snapshots.RefreshData(r.Context())
	respondOperation(w, result, err)
}

// Upload handles multipart statement uploads with a "file" part and a "password" field.
//
// Endpoint: POST /api/upload
// Response: 200 OK with model.OperationResult
// Error: 400 Bad Request if the file is missing, not a PDF or the password is empty
// Error: 413 Request Entity Too Large if the body exceeds the configured limit
// Error: 502/503 if upstream fails
func (h *SnapshotHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondOperation(w, model.OperationResult{}, err)
			return
		}
		respondOperation(w, model.OperationResult{}, fmt.Errorf("%w: %v", apperrors.ErrMissingFile, err))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondOperation(w, model.OperationResult{}, fmt.Errorf("%w: %v", apperrors.ErrMissingFile, err))
		return
	}
	defer file.Close()

	result, err := h.snapshots.UploadStatement(r.Context(), header.Filename, file, r.FormValue("password"))
	respondOperation(w, result, err)
}

// History handles GET requests for recent refresh log entries, newest first.
//
// Endpoint: GET /api/refresh/history?limit=50
// Response: 200 OK with array of model.RefreshLog
// Error: 400 Bad Request if limit is not a positive integer
func (h *SnapshotHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, err := request.ParseHistoryLimit(r.URL.Query().Get("limit"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid limit", err.Error())
		return
	}

	entries, err := h.snapshots.History(r.Context(), limit)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveHistory.Error(), err)
		return
	}
	response.RespondJSON(w, http.StatusOK, entries)
}

// HistoryEntry handles GET requests for a single refresh log entry.
//
// Endpoint: GET /api/refresh/history/{uuid}
// Error: 400 Bad Request if the ID is invalid (validated by middleware)
// Error: 404 Not Found if the entry does not exist
func (h *SnapshotHandler) HistoryEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.snapshots.HistoryEntry(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveHistory.Error(), err)
		return
	}
	response.RespondJSON(w, http.StatusOK, entry)
}

// respondOperation writes the {status, message} envelope refresh and upload callers expect, including
// on failure.
func respondOperation(w http.ResponseWriter, result model.OperationResult, err error) {
	if err == nil {
		if result.Status == "" {
			result.Status = string(model.RefreshStatusSuccess)
		}
		response.RespondJSON(w, http.StatusOK, result)
		return
	}

	status := statusFor(err)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	result.Status = string(model.RefreshStatusError)
	if result.Message == "" {
		result.Message = err.Error()
	}
	response.RespondJSON(w, status, result)
}
