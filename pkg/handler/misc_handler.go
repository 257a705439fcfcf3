// Handler for miscellaneous endpoints such as health check

package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yumyai/protlit/logger"
	"github.com/yumyai/protlit/pkg/model"
	"github.com/yumyai/protlit/pkg/render"
)

type HealthResponse struct {
	Health    string    `json:"health"`
	Timestamp time.Time `json:"timestamp"`
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {

	response := HealthResponse{
		Health:    "ok",
		Timestamp: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)

}

// MainPage shows the analysis form.
func (app *AppContext) MainPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := render.RenderIndexPage(w, render.IndexPageData{
		DefaultQuestion: model.DefaultQuestion,
		LLMEnabled:      app.LLMEnabled,
	})
	if err != nil {
		logger.Error("render index page", zap.Error(err))
	}
}
