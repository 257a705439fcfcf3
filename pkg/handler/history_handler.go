package handler

import (
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/yumyai/protlit/logger"
	"github.com/yumyai/protlit/pkg/db"
	"github.com/yumyai/protlit/pkg/render"
)

func parsePositiveIntFallback(v string, fallback int) int {
	num, err := strconv.Atoi(v)
	if err != nil || num <= 0 {
		return fallback
	}
	return num
}

// HistoryPage lists stored reports, newest first.
func (app *AppContext) HistoryPage(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveIntFallback(r.URL.Query().Get("limit"), db.DefaultHistoryLimit)

	entries, err := app.History.List(r.Context(), limit)
	if err != nil {
		logger.Error("list history", zap.Error(err))
		http.Error(w, "Could not load history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.RenderHistoryPage(w, entries); err != nil {
		logger.Error("render history page", zap.Error(err))
	}
}

// HistoryReportPage re-renders one stored report.
func (app *AppContext) HistoryReportPage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	report, err := app.History.Get(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error("load report", zap.String("report_id", id), zap.Error(err))
		http.Error(w, "Could not load report", http.StatusInternalServerError)
		return
	}

	app.writeReportPage(w, report, true)
}
