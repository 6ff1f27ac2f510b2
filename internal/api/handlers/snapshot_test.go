package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/testutil"
)

const testExternalURL = "https://statements.example.com/cas"

func TestSnapshotHandler_Data(t *testing.T) {
	t.Run("returns the snapshot fetched from upstream", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		client := testutil.NewMockUpstreamClient()
		handler := NewSnapshotHandler(testutil.NewTestSnapshotService(t, db, client), testExternalURL, 1<<20)

		req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
		w := httptest.NewRecorder()

		handler.Data(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Snapshot
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response.SchemeDetails) != 4 {
			t.Errorf("Expected 4 schemes, got %d", len(response.SchemeDetails))
		}
		if response.LastUpdated != "2024-06-30 18:00:00" {
			t.Errorf("Expected last_updated '2024-06-30 18:00:00', got '%s'", response.LastUpdated)
		}
	})

	t.Run("returns 404 when nothing is cached and upstream is down", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		client := testutil.NewMockUpstreamClient().WithError(fmt.Errorf("%w: connection refused", apperrors.ErrUpstreamUnavailable))
		handler := NewSnapshotHandler(testutil.NewTestSnapshotService(t, db, client), testExternalURL, 1<<20)

		req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
		w := httptest.NewRecorder()

		handler.Data(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}

		var response map[string]string
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response["error"] != apperrors.ErrSnapshotNotFound.Error() {
			t.Errorf("Expected error '%s', got '%s'", apperrors.ErrSnapshotNotFound.Error(), response["error"])
		}
	})
}

func TestSnapshotHandler_Config(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewSnapshotHandler(testutil.NewTestSnapshotService(t, db, testutil.NewMockUpstreamClient()), testExternalURL, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	w := httptest.NewRecorder()

	handler.Config(w, req)

	var response ConfigResponse
	//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
	json.NewDecoder(w.Body).Decode(&response)

	if response.ExternalURL != testExternalURL {
		t.Errorf("Expected external_url '%s', got '%s'", testExternalURL, response.ExternalURL)
	}
}

func TestSnapshotHandler_Refresh(t *testing.T) {
	t.Run("nav refresh reports success and records history", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		client := testutil.NewMockUpstreamClient()
		handler := NewSnapshotHandler(testutil.NewTestSnapshotService(t, db, client), testExternalURL, 1<<20)

		req := httptest.NewRequest(http.MethodPost, "/api/refresh/nav", nil)
		w := httptest.NewRecorder()

		handler.RefreshNAV(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.OperationResult
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Status != "success" {
			t.Errorf("Expected status 'success', got '%s'", response.Status)
		}
		if got := testutil.CountRows(t, db, "refresh_log"); got != 1 {
			t.Errorf("Expected 1 refresh_log row, got %d", got)
		}
	})

	t.Run("rejected data refresh keeps the envelope", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		client := testutil.NewMockUpstreamClient().
			WithOperationError(fmt.Errorf("%w: statement parser crashed", apperrors.ErrUpstreamRejected))
		handler := NewSnapshotHandler(testutil.NewTestSnapshotService(t, db, client), testExternalURL, 1<<20)

		req := httptest.NewRequest(http.MethodPost, "/api/refresh/data", nil)
		w := httptest.NewRecorder()

		handler.RefreshData(w, req)

		if w.Code != http.StatusBadGateway {
			t.Errorf("Expected 502, got %d: %s", w.Code, w.Body.String())
		}

		var response model.OperationResult
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Status != "error" {
			t.Errorf("Expected status 'error', got '%s'", response.Status)
		}
		if !strings.Contains(response.Message, "statement parser crashed") {
			t.Errorf("Expected upstream message, got '%s'", response.Message)
		}
	})

	t.Run("unreachable upstream returns 503", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		client := testutil.NewMockUpstreamClient().WithError(fmt.Errorf("%w: timeout", apperrors.ErrUpstreamUnavailable))
		handler := NewSnapshotHandler(testutil.NewTestSnapshotService(t, db, client), testExternalURL, 1<<20)

		req := httptest.NewRequest(http.MethodPost, "/api/refresh/nav", nil)
		w := httptest.NewRecorder()

		handler.RefreshNAV(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestSnapshotHandler_Upload(t *testing.T) {
	setupHandler := func(t *testing.T, maxUpload int64) (*SnapshotHandler, *testutil.MockUpstreamClient) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		client := testutil.NewMockUpstreamClient()
		return NewSnapshotHandler(testutil.NewTestSnapshotService(t, db, client), testExternalURL, maxUpload), client
	}

	t.Run("forwards a valid statement", func(t *testing.T) {
		handler, client := setupHandler(t, 1<<20)

		req := testutil.NewMultipartRequest(t, "/api/upload", "cas_2024.pdf", []byte("%PDF-1.4"), map[string]string{
			"password": "secret",
		})
		w := httptest.NewRecorder()

		handler.Upload(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if client.LastUpload.Filename != "cas_2024.pdf" {
			t.Errorf("Expected filename 'cas_2024.pdf', got '%s'", client.LastUpload.Filename)
		}
		if client.LastUpload.Password != "secret" {
			t.Errorf("Expected password to be forwarded, got '%s'", client.LastUpload.Password)
		}
		if client.LastUpload.Body != "%PDF-1.4" {
			t.Errorf("Expected file body to be forwarded, got '%s'", client.LastUpload.Body)
		}
	})

	tests := []struct {
		name     string
		filename string
		fields   map[string]string
	}{
		{"missing file part", "", map[string]string{"password": "secret"}},
		{"non-pdf file", "cas.xlsx", map[string]string{"password": "secret"}},
		{"missing password", "cas.pdf", nil},
	}

	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			handler, client := setupHandler(t, 1<<20)

			req := testutil.NewMultipartRequest(t, "/api/upload", tt.filename, []byte("%PDF-1.4"), tt.fields)
			w := httptest.NewRecorder()

			handler.Upload(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if client.OperationCount != 0 {
				t.Errorf("Expected no upstream call, got %d", client.OperationCount)
			}
		})
	}

	t.Run("rejects oversized uploads", func(t *testing.T) {
		handler, client := setupHandler(t, 64)

		req := testutil.NewMultipartRequest(t, "/api/upload", "cas.pdf", []byte(strings.Repeat("x", 4096)), map[string]string{
			"password": "secret",
		})
		w := httptest.NewRecorder()

		handler.Upload(w, req)

		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("Expected 413, got %d: %s", w.Code, w.Body.String())
		}
		if client.OperationCount != 0 {
			t.Errorf("Expected no upstream call, got %d", client.OperationCount)
		}
	})
}

func TestSnapshotHandler_History(t *testing.T) {
	t.Run("lists newest entries first with a limit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewSnapshotHandler(testutil.NewTestSnapshotService(t, db, testutil.NewMockUpstreamClient()), testExternalURL, 1<<20)

		base := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
		testutil.CreateRefreshLog(t, db, model.RefreshKindNAV, model.RefreshStatusSuccess, base)
		newest := testutil.CreateRefreshLog(t, db, model.RefreshKindData, model.RefreshStatusError, base.Add(time.Hour))

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/refresh/history", map[string]string{"limit": "1"})
		w := httptest.NewRecorder()

		handler.History(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.RefreshLog
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 1 {
			t.Fatalf("Expected 1 entry, got %d", len(response))
		}
		if response[0].ID != newest.ID {
			t.Errorf("Expected newest entry %s, got %s", newest.ID, response[0].ID)
		}
	})

	t.Run("returns 400 for an invalid limit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewSnapshotHandler(testutil.NewTestSnapshotService(t, db, testutil.NewMockUpstreamClient()), testExternalURL, 1<<20)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/refresh/history", map[string]string{"limit": "many"})
		w := httptest.NewRecorder()

		handler.History(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestSnapshotHandler_HistoryEntry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewSnapshotHandler(testutil.NewTestSnapshotService(t, db, testutil.NewMockUpstreamClient()), testExternalURL, 1<<20)
	entry := testutil.CreateRefreshLog(t, db, model.RefreshKindUpload, model.RefreshStatusSuccess, time.Now().UTC())

	t.Run("returns an existing entry", func(t *testing.T) {
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/refresh/history/"+entry.ID, map[string]string{"uuid": entry.ID})
		w := httptest.NewRecorder()

		handler.HistoryEntry(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.RefreshLog
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Kind != model.RefreshKindUpload {
			t.Errorf("Expected kind 'upload', got '%s'", response.Kind)
		}
	})

	t.Run("returns 404 for an unknown entry", func(t *testing.T) {
		id := "550e8400-e29b-41d4-a716-446655440000"
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/refresh/history/"+id, map[string]string{"uuid": id})
		w := httptest.NewRecorder()

		handler.HistoryEntry(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestRespondOperation(t *testing.T) {
	w := httptest.NewRecorder()

	respondOperation(w, model.OperationResult{}, &http.MaxBytesError{Limit: 10})

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	respondOperation(w, model.OperationResult{}, errors.New("boom"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
}
