package main

import (
	"mime"
	"net/http"

	"github.com/yumyai/protlit/logger"
	"github.com/yumyai/protlit/pkg/handler"
	"github.com/yumyai/protlit/pkg/middle"
	"github.com/yumyai/protlit/pkg/render"
)

func NewRouter(app *handler.AppContext) http.Handler {
	mux := http.NewServeMux()

	// Error route
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	// Main routes
	mux.HandleFunc("GET /", app.MainPage)
	mux.HandleFunc("POST /analyze", app.AnalyzePage)
	mux.HandleFunc("POST /mutation", app.MutationPredict)
	mux.HandleFunc("POST /blast", app.BlastSubmit)
	mux.HandleFunc("GET /blast/{job_id}", app.BlastJobPage)
	mux.HandleFunc("GET /redirect/blastp", app.BlastPRedirectPage)
	mux.HandleFunc("GET /conservation", app.ConservationForm)
	mux.HandleFunc("POST /conservation", app.ConservationPage)
	mux.HandleFunc("GET /history", app.HistoryPage)
	mux.HandleFunc("GET /history/{id}", app.HistoryReportPage)

	// API routes
	mux.HandleFunc("GET /api/v1/health", handler.HealthCheck)
	mux.HandleFunc("POST /api/v1/analyze", app.AnalyzeAPI)

	// Get sequences
	mux.HandleFunc("GET /sequence/{pdb_id}", app.GetStructureSequenceHandler)

	// Static files
	setupStaticFiles(mux)

	return middle.Chain(mux,
		middle.RequestIDMiddleware(),
		middle.LoggingMiddleware(logger.L()),
	)
}

// The stylesheet is compiled into the binary.
func setupStaticFiles(mux *http.ServeMux) {
	_ = mime.AddExtensionType(".js", "text/javascript")
	_ = mime.AddExtensionType(".css", "text/css")
	fs := http.FileServer(http.FS(render.Static()))
	mux.Handle("GET /static/", http.StripPrefix("/static/", fs))
}
