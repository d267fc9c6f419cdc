package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/Francelinojr/teste-gener/internal/errors"
	"github.com/Francelinojr/teste-gener/internal/store"
	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

// Record paging limits
const (
	DefaultRecordLimit = 500
	MaxRecordLimit     = 10000
)

// TableSummary describes one table in GET /api/v1/tables
type TableSummary struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

// RecordView is a canonical record with its derived male count
type RecordView struct {
	domain.EnrollmentRecord
	Male domain.Count `json:"male_enrolled"`
}

// RecordsResponse is a page of canonical records
type RecordsResponse struct {
	Total   int          `json:"total"`
	Offset  int          `json:"offset"`
	Limit   int          `json:"limit"`
	Records []RecordView `json:"records"`
}

// RecordFilter selects canonical records
type RecordFilter struct {
	Year   int
	Region domain.Region
	// Target restricts to in-target (true) or out-of-target (false) records
	Target *bool
}

// Match reports whether rec passes the filter
func (f RecordFilter) Match(rec domain.EnrollmentRecord) bool {
	if f.Year != 0 && rec.Year != f.Year {
		return false
	}
	if f.Region != "" && rec.Region != f.Region {
		return false
	}
	if f.Target != nil && rec.InTarget != *f.Target {
		return false
	}
	return true
}

// DataHandler serves the tables and records of the current run
type DataHandler struct {
	results      ResultProvider
	runs         RunLister
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler. runs may be nil.
func NewDataHandler(results ResultProvider, runs RunLister, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		results:      results,
		runs:         runs,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Group(func(r chi.Router) {
		r.Use(h.ResultCtx)
		r.Get("/years", h.GetYears)
		r.Get("/tables", h.GetTables)
		r.Get("/tables/{name}", h.GetTable)
		r.Get("/records", h.GetRecords)
	})
	r.Get("/runs", h.GetRuns)

	return r
}

// ResultCtx answers 503 while no run is available
func (h *DataHandler) ResultCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.results.Result() == nil {
			h.errorHandler.HandleError(w, r, apierrors.Unavailable("No pipeline run is available yet"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetYears handles GET /api/v1/years
func (h *DataHandler) GetYears(w http.ResponseWriter, r *http.Request) {
	res := h.results.Result()
	render.JSON(w, r, map[string]interface{}{
		"run_id":         res.RunID,
		"years":          res.Years,
		"loaded_years":   res.LoadedYears,
		"reference_year": res.ReferenceYear,
		"year_results":   res.YearResults,
	})
}

// GetTables handles GET /api/v1/tables
func (h *DataHandler) GetTables(w http.ResponseWriter, r *http.Request) {
	res := h.results.Result()
	out := make([]TableSummary, 0, len(res.Tables))
	for _, t := range res.Tables {
		out = append(out, TableSummary{Name: t.Name, Columns: t.Columns, Rows: len(t.Rows)})
	}
	render.JSON(w, r, out)
}

// GetTable handles GET /api/v1/tables/{name}
func (h *DataHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	t, ok := h.results.Result().Table(name)
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError(fmt.Sprintf("table %q", name)))
		return
	}
	if t.Rows == nil {
		t.Rows = [][]string{}
	}
	render.JSON(w, r, t)
}

// GetRecords handles GET /api/v1/records?year=&region=&target=&offset=&limit=
func (h *DataHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	filter, err := parseRecordFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	offset, limit, err := parsePage(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp := RecordsResponse{Offset: offset, Limit: limit, Records: []RecordView{}}
	for _, rec := range h.results.Result().Records {
		if !filter.Match(rec) {
			continue
		}
		if resp.Total >= offset && len(resp.Records) < limit {
			resp.Records = append(resp.Records, RecordView{EnrollmentRecord: rec, Male: rec.Male()})
		}
		resp.Total++
	}

	h.logger.DebugContext(r.Context(), "records served",
		slog.Int("total", resp.Total),
		slog.Int("returned", len(resp.Records)))
	render.JSON(w, r, resp)
}

// GetRuns handles GET /api/v1/runs
func (h *DataHandler) GetRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("run store"))
		return
	}
	runs, err := h.runs.Runs(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if runs == nil {
		runs = []store.RunInfo{}
	}
	render.JSON(w, r, runs)
}

func parseRecordFilter(r *http.Request) (RecordFilter, error) {
	q := r.URL.Query()
	var f RecordFilter

	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return f, apierrors.ErrValidation("year", "year must be an integer")
		}
		f.Year = year
	}
	if v := q.Get("region"); v != "" {
		region, ok := parseRegion(v)
		if !ok {
			return f, apierrors.ErrValidation("region", fmt.Sprintf("unknown region %q", v))
		}
		f.Region = region
	}
	if v := q.Get("target"); v != "" {
		target, err := strconv.ParseBool(v)
		if err != nil {
			return f, apierrors.ErrValidation("target", "target must be true or false")
		}
		f.Target = &target
	}
	return f, nil
}

// parseRegion accepts a region name or its two-letter tag, case-insensitively
func parseRegion(v string) (domain.Region, bool) {
	for _, region := range append(domain.Regions(), domain.RegionUnknown) {
		if strings.EqualFold(v, string(region)) || strings.EqualFold(v, region.Abbreviation()) {
			return region, true
		}
	}
	return "", false
}

func parsePage(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	offset, limit := 0, DefaultRecordLimit
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, apierrors.ErrValidation("offset", "offset must be a non-negative integer")
		}
		offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxRecordLimit {
			return 0, 0, apierrors.ErrValidation("limit", fmt.Sprintf("limit must be between 1 and %d", MaxRecordLimit))
		}
		limit = n
	}
	return offset, limit, nil
}
