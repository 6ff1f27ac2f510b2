package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/analytics"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/export"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/testutil"
)

// withDimension adds the {dimension} route parameter to a request built with query parameters.
func withDimension(req *http.Request, d string) *http.Request {
	params := testutil.NewRequestWithURLParams(req.Method, req.URL.Path, map[string]string{"dimension": d})
	return req.WithContext(params.Context())
}

func TestDashboardHandler_Dashboard(t *testing.T) {
	setupHandler := func(t *testing.T) (*DashboardHandler, *testutil.MockUpstreamClient) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		dashboard, client := testutil.NewTestDashboardService(t, db)
		return NewDashboardHandler(dashboard), client
	}

	t.Run("returns every section for the default view", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
		w := httptest.NewRecorder()

		handler.Dashboard(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Dashboard
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Overview.SchemeCount != 3 {
			t.Errorf("Expected 3 schemes with zero holdings hidden, got %d", response.Overview.SchemeCount)
		}
		if response.Overview.CurrentValue != 21150 {
			t.Errorf("Expected current value 21150, got %f", response.Overview.CurrentValue)
		}
		if len(response.Schemes.Rows) != 3 {
			t.Errorf("Expected 3 scheme rows, got %d", len(response.Schemes.Rows))
		}
		if response.LastUpdated == "" {
			t.Error("Expected last_updated to be populated")
		}
	})

	t.Run("applies filters from the query", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/dashboard", map[string]string{
			"amc":       "Beta MF",
			"hide_zero": "false",
		})
		w := httptest.NewRecorder()

		handler.Dashboard(w, req)

		var response model.Dashboard
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Overview.SchemeCount != 2 {
			t.Errorf("Expected 2 Beta MF schemes including the closed one, got %d", response.Overview.SchemeCount)
		}
	})

	t.Run("returns 400 for an invalid range", func(t *testing.T) {
		handler, client := setupHandler(t)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/dashboard", map[string]string{"growth_range": "2W"})
		w := httptest.NewRecorder()

		handler.Dashboard(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
		if client.Fetches() != 0 {
			t.Errorf("Expected no snapshot load for a rejected query, got %d fetches", client.Fetches())
		}
	})

	t.Run("returns 404 when no snapshot is available", func(t *testing.T) {
		handler, client := setupHandler(t)
		client.WithError(errors.New("connection refused"))

		req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
		w := httptest.NewRecorder()

		handler.Dashboard(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestDashboardHandler_Sections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	dashboard, _ := testutil.NewTestDashboardService(t, db)
	handler := NewDashboardHandler(dashboard)

	t.Run("overview reports a converged XIRR", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard/overview", nil)
		w := httptest.NewRecorder()

		handler.Overview(w, req)

		var response model.Overview
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if !response.XIRR.Converged {
			t.Error("Expected XIRR to converge")
		}
		if response.XIRR.Rate <= 0 {
			t.Errorf("Expected a positive XIRR, got %f", response.XIRR.Rate)
		}
	})

	t.Run("schemes honour search and sort", func(t *testing.T) {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/dashboard/schemes", map[string]string{
			"q":     "fund",
			"sort":  analytics.SchemeNameColumn,
			"order": "asc",
		})
		w := httptest.NewRecorder()

		handler.Schemes(w, req)

		var response model.SchemeTable
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response.Rows) != 3 {
			t.Fatalf("Expected 3 rows, got %d", len(response.Rows))
		}
		if response.Rows[0].FundName != "Alpha Bluechip Fund" {
			t.Errorf("Expected Alpha first, got '%s'", response.Rows[0].FundName)
		}
	})

	t.Run("schemes reject an unknown sort column", func(t *testing.T) {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/dashboard/schemes", map[string]string{"sort": "nav"})
		w := httptest.NewRecorder()

		handler.Schemes(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("allocations group by dimension", func(t *testing.T) {
		req := withDimension(httptest.NewRequest(http.MethodGet, "/api/dashboard/allocations/category", nil), "category")
		w := httptest.NewRecorder()

		handler.Allocations(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.AllocationSlice
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 2 {
			t.Fatalf("Expected Equity and Debt slices, got %d", len(response))
		}
		if response[0].Label != "Equity" || response[0].Value != 18000 {
			t.Errorf("Expected Equity 18000 first, got %s %f", response[0].Label, response[0].Value)
		}
	})

	t.Run("allocations reject an unknown dimension", func(t *testing.T) {
		req := withDimension(httptest.NewRequest(http.MethodGet, "/api/dashboard/allocations/colour", nil), "colour")
		w := httptest.NewRecorder()

		handler.Allocations(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("segments return one bar per group", func(t *testing.T) {
		req := withDimension(httptest.NewRequest(http.MethodGet, "/api/dashboard/segments/amc", nil), "amc")
		w := httptest.NewRecorder()

		handler.Segments(w, req)

		var response []model.SegmentReturn
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 2 {
			t.Errorf("Expected Alpha MF and Beta MF segments, got %d", len(response))
		}
	})

	t.Run("transitions carry items only for expanded buckets", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard/transitions", nil)
		w := httptest.NewRecorder()

		handler.Transitions(w, req)

		var response []model.TaxBucket
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		for _, bucket := range response {
			if len(bucket.Items) != 0 {
				t.Errorf("Expected collapsed bucket %s to omit items", bucket.Label)
			}
		}
	})

	t.Run("rolling defaults to 1Y", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard/rolling", nil)
		w := httptest.NewRecorder()

		handler.Rolling(w, req)

		var response model.RollingView
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Period != model.Period1Y {
			t.Errorf("Expected period 1Y, got '%s'", response.Period)
		}
		if len(response.Rows) != 3 {
			t.Errorf("Expected 3 rows, got %d", len(response.Rows))
		}
	})

	t.Run("investments and trend share the pivot rows", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Investments(w, httptest.NewRequest(http.MethodGet, "/api/dashboard/investments", nil))

		var pivot model.PivotTable
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&pivot)

		if pivot.GrandTotal.Total != 20000 {
			t.Errorf("Expected grand total 20000, got %f", pivot.GrandTotal.Total)
		}

		w = httptest.NewRecorder()
		handler.Trend(w, httptest.NewRequest(http.MethodGet, "/api/dashboard/investments/trend", nil))

		var trend []model.TrendPoint
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&trend)

		var sum float64
		for _, p := range trend {
			sum += p.Amount
		}
		if sum != 20000 {
			t.Errorf("Expected trend to sum to 20000, got %f", sum)
		}
	})

	t.Run("growth and comparison respond", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Growth(w, httptest.NewRequest(http.MethodGet, "/api/dashboard/growth", nil))
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200 from growth, got %d", w.Code)
		}

		w = httptest.NewRecorder()
		handler.Comparison(w, httptest.NewRequest(http.MethodGet, "/api/dashboard/comparison", nil))
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200 from comparison, got %d", w.Code)
		}
	})
}

func TestDashboardHandler_Export(t *testing.T) {
	db := testutil.SetupTestDB(t)
	dashboard, _ := testutil.NewTestDashboardService(t, db)
	handler := NewDashboardHandler(dashboard)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/investments/export", nil)
	w := httptest.NewRecorder()

	handler.Export(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Expected xlsx content type, got '%s'", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "investments_") {
		t.Errorf("Expected dated attachment name, got '%s'", cd)
	}

	f, err := excelize.OpenReader(w.Body)
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	name, err := f.GetCellValue(export.PivotSheet, "A1")
	if err != nil {
		t.Fatalf("Failed to read A1: %v", err)
	}
	if name != "Fund Name" {
		t.Errorf("Expected 'Fund Name' header, got '%s'", name)
	}
}
