package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bet-ledger-lab/internal/domain"
	"bet-ledger-lab/internal/export"
	"bet-ledger-lab/internal/reporting"
	"bet-ledger-lab/internal/risk"
	"bet-ledger-lab/internal/storage"
)

const dayLayout = "2006-01-02"

var errBadDay = errors.New("day must be YYYY-MM-DD")

// Handler serves read-only analytics recomputed from the ledger store on every request.
type Handler struct {
	store     storage.LedgerStore
	engine    *risk.Engine
	generator *reporting.Generator
	logger    *log.Logger
}

// NewHandler creates a handler over a ledger store.
func NewHandler(store storage.LedgerStore, engine *risk.Engine, currency string, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Handler{
		store:     store,
		engine:    engine,
		generator: reporting.NewGenerator(store, engine, currency),
		logger:    logger,
	}
}

// WithClock fixes the report timestamp for deterministic responses.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.generator.WithClock(now)
	return h
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Currency    string           `json:"currency"`
	Entries     int              `json:"entries"`
	Settled     int              `json:"settled"`
	FirstDay    string           `json:"first_day,omitempty"`
	LastDay     string           `json:"last_day,omitempty"`
	Stats       domain.RiskStats `json:"stats"`
}

// DailyRow is one day of GET /api/daily.
type DailyRow struct {
	Day        string  `json:"day"`
	ProfitLoss float64 `json:"profit_loss"`
	Equity     float64 `json:"equity"`
}

// DrawdownRow is one day of GET /api/drawdown.
type DrawdownRow struct {
	Day         string  `json:"day"`
	Equity      float64 `json:"equity"`
	RollMax     float64 `json:"roll_max"`
	Drawdown    float64 `json:"drawdown"`
	DrawdownPct float64 `json:"drawdown_pct"`
}

// TableRef names one table of GET /api/tables.
type TableRef struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ErrorResponse is written for every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthCheck reports whether the ledger store answers.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	n, err := h.store.Count(ctx)
	if err != nil {
		h.respondError(w, http.StatusServiceUnavailable, "ledger store unhealthy", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"entries":   n,
		"timestamp": time.Now().UTC(),
	})
}

// GetStats returns the headline stats over the whole ledger.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	report, ok := h.generate(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, StatsResponse{
		GeneratedAt: report.GeneratedAt,
		Currency:    report.Currency,
		Entries:     report.Summary.Entries,
		Settled:     report.Summary.Dated,
		FirstDay:    report.Summary.FirstDay,
		LastDay:     report.Summary.LastDay,
		Stats:       report.Risk.Stats,
	})
}

// GetDaily returns the daily series with its equity curve.
// Query params: from, to (YYYY-MM-DD, inclusive). Equity restarts at the range start.
func (h *Handler) GetDaily(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	from, err := parseDayParam(r, "from", "0001-01-01")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid from", err)
		return
	}
	to, err := parseDayParam(r, "to", "9999-12-31")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid to", err)
		return
	}
	if from > to {
		h.respondError(w, http.StatusBadRequest, "from is after to", nil)
		return
	}

	ledger, err := h.store.GetByDayRange(ctx, from, to)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to load ledger", err)
		return
	}

	daily := risk.AggregateDaily(ledger)
	equity := risk.EquityCurve(daily)
	rows := make([]DailyRow, len(daily))
	for i, p := range daily {
		rows[i] = DailyRow{
			Day:        p.Day.Format(dayLayout),
			ProfitLoss: p.ProfitLoss,
			Equity:     equity[i].Equity,
		}
	}

	respondJSON(w, http.StatusOK, rows)
}

// GetDrawdown returns the drawdown frame.
func (h *Handler) GetDrawdown(w http.ResponseWriter, r *http.Request) {
	report, ok := h.generate(w, r)
	if !ok {
		return
	}

	rows := make([]DrawdownRow, len(report.Risk.Drawdown))
	for i, p := range report.Risk.Drawdown {
		rows[i] = DrawdownRow{
			Day:         p.Day.Format(dayLayout),
			Equity:      p.Equity,
			RollMax:     p.Peak,
			Drawdown:    p.Drawdown,
			DrawdownPct: p.Fraction,
		}
	}

	respondJSON(w, http.StatusOK, rows)
}

// ListTables returns the names of the summary tables the ledger produces.
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	report, ok := h.generate(w, r)
	if !ok {
		return
	}

	refs := make([]TableRef, len(report.Tables))
	for i, t := range report.Tables {
		refs[i] = TableRef{Name: t.Name, Slug: export.Slug(t.Name)}
	}
	respondJSON(w, http.StatusOK, refs)
}

// GetTable returns one summary table by slug or display name.
func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	want := export.Slug(name)

	report, ok := h.generate(w, r)
	if !ok {
		return
	}

	for _, t := range report.Tables {
		if export.Slug(t.Name) == want {
			respondJSON(w, http.StatusOK, export.NewStoredTable(t, report.GeneratedAt))
			return
		}
	}
	h.respondError(w, http.StatusNotFound, "unknown table "+name, nil)
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) (*reporting.Report, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	report, err := h.generator.Generate(ctx)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to compute report", err)
		return nil, false
	}
	return report, true
}

func parseDayParam(r *http.Request, param, defaultValue string) (string, error) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, nil
	}
	if _, err := time.Parse(dayLayout, value); err != nil {
		return "", errBadDay
	}
	return value, nil
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("error encoding response: %v", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		h.logger.Printf("error: %s - %v", message, err)
		message = message + ": " + err.Error()
	}
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
