package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/export"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardHandler handles HTTP requests for the dashboard views.
// Every endpoint reads the same view-state query parameters (filters, hide_zero, search, ranges, sort and
// expansion state) and returns the section computed for them.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler with the provided service dependency.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
	}
}

// viewState parses the query into a ViewState, writing a 400 and returning false when it is invalid.
func viewState(w http.ResponseWriter, r *http.Request) (model.ViewState, bool) {
	v, err := request.ParseViewState(r.URL.Query())
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameters", err.Error())
		return model.ViewState{}, false
	}
	return v, true
}

// dimension reads the {dimension} URL parameter, writing a 400 and returning false when it is unknown.
func dimension(w http.ResponseWriter, r *http.Request) (model.Dimension, bool) {
	d, err := request.ParseDimension(chi.URLParam(r, "dimension"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid dimension", err.Error())
		return "", false
	}
	return d, true
}

// serveView is the shared shape of the single-section endpoints.
func serveView[T any](w http.ResponseWriter, r *http.Request, compute func(model.ViewState) (T, error)) {
	v, ok := viewState(w, r)
	if !ok {
		return
	}
	result, err := compute(v)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToBuildDashboard.Error(), err)
		return
	}
	response.RespondJSON(w, http.StatusOK, result)
}

// Dashboard handles GET requests for every section at once.
//
// Endpoint: GET /api/dashboard
// Response: 200 OK with model.Dashboard
// Error: 400 Bad Request if a query parameter is invalid
// Error: 404 Not Found if no snapshot is available
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	serveView(w, r, func(v model.ViewState) (model.Dashboard, error) {
		return h.dashboard.Build(r.Context(), v)
	})
}

// Overview handles GET /api/dashboard/overview.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	serveView(w, r, func(v model.ViewState) (model.Overview, error) {
		return h.dashboard.Overview(r.Context(), v)
	})
}

// Schemes handles GET /api/dashboard/schemes.
func (h *DashboardHandler) Schemes(w http.ResponseWriter, r *http.Request) {
	serveView(w, r, func(v model.ViewState) (model.SchemeTable, error) {
		return h.dashboard.Schemes(r.Context(), v)
	})
}

func (h *DashboardHandler) Growth(w http.ResponseWriter, r *http.Request) {
	serveView(w, r, func(v model.ViewState) ([]model.GrowthSeriesPoint, error) {
		return h.dashboard.Growth(r.Context(), v)
	})
}

func (h *DashboardHandler) Investments(w http.ResponseWriter, r *http.Request) {
	serveView(w, r, func(v model.ViewState) (model.PivotTable, error) {
		return h.dashboard.Investments(r.Context(), v)
	})
}

func (h *DashboardHandler) Trend(w http.ResponseWriter, r *http.Request) {
	serveView(w, r, func(v model.ViewState) ([]model.TrendPoint, error) {
		return h.dashboard.Trend(r.Context(), v)
	})
}

// Transitions handles GET /api/dashboard/transitions. Buckets named in expanded_buckets carry their items.
func (h *DashboardHandler) Transitions(w http.ResponseWriter, r *http.Request) {
	serveView(w, r, func(v model.ViewState) ([]model.TaxBucket, error) {
		return h.dashboard.Transitions(r.Context(), v)
	})
}

func (h *DashboardHandler) Rolling(w http.ResponseWriter, r *http.Request) {
	serveView(w, r, func(v model.ViewState) (model.RollingView, error) {
		return h.dashboard.Rolling(r.Context(), v)
	})
}

func (h *DashboardHandler) Comparison(w http.ResponseWriter, r *http.Request) {
	serveView(w, r, func(v model.ViewState) ([]model.ComparisonRow, error) {
		return h.dashboard.Comparison(r.Context(), v)
	})
}

// Allocations handles GET /api/dashboard/allocations/{dimension}.
//
// Error: 400 Bad Request if dimension is not one of category, amc, sector, cap
func (h *DashboardHandler) Allocations(w http.ResponseWriter, r *http.Request) {
	d, ok := dimension(w, r)
	if !ok {
		return
	}
	serveView(w, r, func(v model.ViewState) ([]model.AllocationSlice, error) {
		return h.dashboard.Allocation(r.Context(), v, d)
	})
}

// Segments handles GET /api/dashboard/segments/{dimension}.
//
// Error: 400 Bad Request if dimension is not one of category, amc, sector, cap
func (h *DashboardHandler) Segments(w http.ResponseWriter, r *http.Request) {
	d, ok := dimension(w, r)
	if !ok {
		return
	}
	serveView(w, r, func(v model.ViewState) ([]model.SegmentReturn, error) {
		return h.dashboard.Segment(r.Context(), v, d)
	})
}

// Export handles GET requests for the investment pivot as an XLSX workbook.
// The workbook is rendered into memory first so a failure still produces a JSON error.
//
// Endpoint: GET /api/dashboard/investments/export
// Response: 200 OK with an attachment named investments_YYYY-MM-DD.xlsx
// Error: 500 Internal Server Error if the workbook cannot be written
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	v, ok := viewState(w, r)
	if !ok {
		return
	}
	table, err := h.dashboard.Investments(r.Context(), v)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToExport.Error(), err)
		return
	}

	var buf bytes.Buffer
	if err := export.WritePivot(&buf, table); err != nil {
		respondServiceError(w, apperrors.ErrFailedToExport.Error(), err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(time.Now().Format(time.DateOnly))))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
