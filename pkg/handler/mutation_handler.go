package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/yumyai/protlit/logger"
	"github.com/yumyai/protlit/pkg/handler/request"
	"github.com/yumyai/protlit/pkg/predict"
	"github.com/yumyai/protlit/pkg/render"
)

// MutationPredict returns an HTML fragment with the predicted ΔΔG.
func (app *AppContext) MutationPredict(w http.ResponseWriter, r *http.Request) {
	req, err := request.MutationFromForm(r)
	if err != nil {
		http.Error(w, "Invalid mutation request: "+err.Error(), http.StatusBadRequest)
		return
	}

	data, err := app.loadStructure(r.Context(), req.PDBID)
	if err != nil {
		logger.Error("load structure", zap.String("pdb_id", req.PDBID), zap.Error(err))
		http.Error(w, "Structure not available", http.StatusBadGateway)
		return
	}

	logger.Info("Predicting mutation",
		zap.String("pdb_id", req.PDBID),
		zap.String("service", string(req.Service)),
		zap.String("chain", req.Chain),
		zap.Int("resnum", req.ResNum),
		zap.String("mutation", req.Mutation),
	)

	pred, err := app.Predictor.Predict(r.Context(), req.Service, data, predict.MutationRequest{
		Chain:    req.Chain,
		ResNum:   req.ResNum,
		Mutation: req.Mutation,
	})
	if err != nil {
		logger.Error("prediction failed", zap.String("service", string(req.Service)), zap.Error(err))
		http.Error(w, "Prediction service failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = render.RenderPrediction(w, render.PredictionData{
		PDBID:      req.PDBID,
		Site:       req.Site,
		Mutation:   req.Mutation,
		Prediction: pred,
	})
	if err != nil {
		logger.Error("render prediction", zap.Error(err))
	}
}
