package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/yumyai/protlit/logger"
	"github.com/yumyai/protlit/pkg/handler/request"
	"github.com/yumyai/protlit/pkg/model"
	"github.com/yumyai/protlit/pkg/render"
)

// maxAlignmentBytes bounds the pasted alignment.
const maxAlignmentBytes = 4 << 20

func (app *AppContext) ConservationForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.RenderConservationPage(w, render.ConservationPageData{}); err != nil {
		logger.Error("render conservation page", zap.Error(err))
	}
}

// ConservationPage scores an aligned FASTA pasted into the form.
func (app *AppContext) ConservationPage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAlignmentBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}
	req := request.ConservationRequest{Alignment: r.PostFormValue("alignment")}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	fail := func(err error) {
		w.WriteHeader(http.StatusBadRequest)
		data := render.ConservationPageData{Alignment: req.Alignment, ErrorMessage: err.Error()}
		if rerr := render.RenderConservationPage(w, data); rerr != nil {
			logger.Error("render conservation page", zap.Error(rerr))
		}
	}

	seqs, err := model.ParseAlignment(req.Alignment)
	if err != nil {
		fail(err)
		return
	}
	scores, err := model.ConservationScores(seqs)
	if err != nil {
		fail(err)
		return
	}

	data, err := render.NewConservationPageData(req.Alignment, len(seqs), scores)
	if err != nil {
		logger.Error("build conservation plot", zap.Error(err))
		http.Error(w, "Could not build plot", http.StatusInternalServerError)
		return
	}
	if err := render.RenderConservationPage(w, data); err != nil {
		logger.Error("render conservation page", zap.Error(err))
	}
}
