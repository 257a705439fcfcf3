package handler

// DI for all handlers and models alike.

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/yumyai/protlit/pkg/blast"
	"github.com/yumyai/protlit/pkg/db"
	"github.com/yumyai/protlit/pkg/model"
	"github.com/yumyai/protlit/pkg/predict"
)

type ReportAnalyzer interface {
	Analyze(ctx context.Context, req model.AnalyzeRequest) (*model.Report, error)
}

type StructureSource interface {
	DownloadStructure(ctx context.Context, id string) ([]byte, error)
}

type MutationPredictor interface {
	Predict(ctx context.Context, service predict.Service, structure []byte, mut predict.MutationRequest) (*predict.Prediction, error)
}

type BlastService interface {
	Submit(ctx context.Context, query string) (blast.Submission, error)
	Poll(ctx context.Context, rid string) (blast.SearchInfo, error)
	Fetch(ctx context.Context, rid string) (string, error)
}

type AppContext struct {
	Analyzer   ReportAnalyzer
	Entries    StructureSource
	Structures *db.StructureStore
	History    *db.HistoryStore
	Predictor  MutationPredictor
	Blast      BlastService
	BlastJobs  *BlastJobManager

	BlastProgram   string
	BlastDatabase  string
	LLMEnabled     bool
	RefreshSeconds int
}

// loadStructure serves the cached coordinate file, downloading it on a miss.
func (app *AppContext) loadStructure(ctx context.Context, id string) ([]byte, error) {
	data, err := app.Structures.Load(id)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	data, err = app.Entries.DownloadStructure(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := app.Structures.Save(id, data); err != nil {
		return nil, err
	}
	return data, nil
}
