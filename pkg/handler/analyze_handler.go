package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/yumyai/protlit/logger"
	"github.com/yumyai/protlit/pkg/handler/request"
	"github.com/yumyai/protlit/pkg/model"
	"github.com/yumyai/protlit/pkg/render"
)

const genericAnalyzeError = "Something went wrong while analyzing this entry. Please try again later."

// analyzeStatus maps a pipeline error to an HTTP status and a message that
// is safe to show.
func analyzeStatus(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid input: " + err.Error()
	case errors.Is(err, model.ErrNoStructureMatch):
		return http.StatusNotFound, "Could not find a matching PDB ID for the sequence."
	default:
		return http.StatusBadGateway, genericAnalyzeError
	}
}

// record stores the report; history is best effort.
func (app *AppContext) record(r *http.Request, report *model.Report) {
	if app.History == nil {
		return
	}
	if err := app.History.Insert(r.Context(), report); err != nil {
		logger.Warn("could not store report", zap.String("report_id", report.ID), zap.Error(err))
	}
}

// AnalyzePage runs the full pipeline for the form on the index page.
func (app *AppContext) AnalyzePage(w http.ResponseWriter, r *http.Request) {
	req, err := request.AnalyzeFromForm(r)
	if err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	logger.Info("Running analysis",
		zap.String("input_type", string(req.InputType)),
		zap.String("pdb_id", req.PDBID),
		zap.Int("sequence_length", len(req.Sequence)),
	)

	report, err := app.Analyzer.Analyze(r.Context(), req)
	if err != nil {
		status, msg := analyzeStatus(err)
		logger.Error("analysis failed", zap.Int("status", status), zap.Error(err))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = render.RenderErrorPage(w, msg)
		return
	}
	app.record(r, report)

	app.writeReportPage(w, report, false)
}

func (app *AppContext) writeReportPage(w http.ResponseWriter, report *model.Report, fromHistory bool) {
	data, err := render.NewReportPageData(report, fromHistory)
	if err != nil {
		logger.Error("prepare report page", zap.Error(err))
		http.Error(w, genericAnalyzeError, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.RenderReportPage(w, data); err != nil {
		logger.Error("render report page", zap.Error(err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", zap.Error(err))
	}
}

// AnalyzeAPI is the JSON form of AnalyzePage.
func (app *AppContext) AnalyzeAPI(w http.ResponseWriter, r *http.Request) {
	var req model.AnalyzeRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		logger.Error(err.Error())
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	report, err := app.Analyzer.Analyze(r.Context(), req)
	if err != nil {
		status, msg := analyzeStatus(err)
		logger.Error("analysis failed", zap.Int("status", status), zap.Error(err))
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}
	app.record(r, report)

	writeJSON(w, http.StatusOK, report)
}
