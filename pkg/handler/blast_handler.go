package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/yumyai/protlit/logger"
	"github.com/yumyai/protlit/pkg/blast"
	"github.com/yumyai/protlit/pkg/db"
	"github.com/yumyai/protlit/pkg/handler/request"
	"github.com/yumyai/protlit/pkg/model"
	"github.com/yumyai/protlit/pkg/rcsb"
	"github.com/yumyai/protlit/pkg/render"
	"github.com/yumyai/protlit/pkg/structure"
)

const defaultRefreshSeconds = 5

var errChainNotFound = errors.New("chain not found")

// chainSequence returns the one-letter sequence of a chain of a stored or
// freshly downloaded entry.
func (app *AppContext) chainSequence(ctx context.Context, pdbID, chain string) (string, error) {
	data, err := app.loadStructure(ctx, pdbID)
	if err != nil {
		return "", err
	}
	s, err := structure.ParsePDB(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	for _, cs := range s.Sequences() {
		if cs.Chain == chain && cs.Sequence != "" {
			return cs.Sequence, nil
		}
	}
	return "", errors.Wrapf(errChainNotFound, "%s chain %s", pdbID, chain)
}

// BlastSubmit starts a remote search and sends the browser to the job page.
func (app *AppContext) BlastSubmit(w http.ResponseWriter, r *http.Request) {
	req, err := request.BlastSubmitFromForm(r)
	if err != nil {
		http.Error(w, "Invalid BLAST request: "+err.Error(), http.StatusBadRequest)
		return
	}

	var query, label string
	if req.FromStructure() {
		query, err = app.chainSequence(r.Context(), req.PDBID, req.Chain)
		if errors.Is(err, errChainNotFound) {
			http.Error(w, "Chain not found", http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Error("could not load chain sequence", zap.String("pdb_id", req.PDBID), zap.Error(err))
			http.Error(w, "Could not load structure", http.StatusBadGateway)
			return
		}
		label = fmt.Sprintf("%s chain %s", req.PDBID, req.Chain)
	} else {
		query, err = model.CleanSequence(req.Sequence)
		if err != nil {
			http.Error(w, "Invalid sequence: "+err.Error(), http.StatusBadRequest)
			return
		}
		label = fmt.Sprintf("sequence (%d aa)", len(query))
	}

	job := app.BlastJobs.NewJob(app.BlastProgram, app.BlastDatabase, label)

	sub, err := app.Blast.Submit(r.Context(), query)
	if err != nil {
		logger.Error("BLAST submission failed", zap.String("job_id", job.ID), zap.Error(err))
		app.BlastJobs.FailJob(job.ID, "NCBI did not accept the search. Please try again later.")
	} else {
		logger.Info("BLAST submitted", zap.String("job_id", job.ID), zap.String("rid", sub.RID), zap.Duration("rtoe", sub.RTOE))
		app.BlastJobs.SetRunning(job.ID, sub.RID)
	}

	http.Redirect(w, r, "/blast/"+job.ID, http.StatusSeeOther)
}

// BlastJobPage polls NCBI at most once per view.
func (app *AppContext) BlastJobPage(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	job, ok := app.BlastJobs.GetJob(jobID)
	if !ok {
		http.Error(w, "BLAST job not found", http.StatusNotFound)
		return
	}

	if job.Status == BlastJobRunning {
		app.pollBlast(r.Context(), job)
		job, _ = app.BlastJobs.GetJob(jobID)
	}

	refresh := app.RefreshSeconds
	if refresh <= 0 {
		refresh = defaultRefreshSeconds
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := render.RenderBLASTPage(w, render.BlastPageData{
		JobID:                  job.ID,
		Program:                job.Program,
		Database:               job.Database,
		QueryLabel:             job.QueryLabel,
		RID:                    job.RID,
		Status:                 string(job.Status),
		BlastReport:            job.Result,
		ErrorMessage:           job.Error,
		ShouldRefresh:          !job.Finished(),
		RefreshIntervalSeconds: refresh,
	})
	if err != nil {
		logger.Error("render blast page", zap.Error(err))
	}
}

func (app *AppContext) pollBlast(ctx context.Context, job BlastJob) {
	info, err := app.Blast.Poll(ctx, job.RID)
	if err != nil {
		// the next refresh tries again
		logger.Warn("BLAST poll failed", zap.String("job_id", job.ID), zap.String("rid", job.RID), zap.Error(err))
		return
	}

	switch info.Status {
	case blast.StatusWaiting:
	case blast.StatusReady:
		if !info.HasHits {
			app.BlastJobs.CompleteJob(job.ID, "No significant similarity found.")
			return
		}
		report, err := app.Blast.Fetch(ctx, job.RID)
		if err != nil {
			logger.Warn("BLAST fetch failed", zap.String("job_id", job.ID), zap.Error(err))
			return
		}
		app.BlastJobs.CompleteJob(job.ID, report)
	case blast.StatusFailed:
		app.BlastJobs.FailJob(job.ID, "NCBI reported that the search failed.")
	default:
		app.BlastJobs.FailJob(job.ID, "NCBI no longer knows this search; it may have expired.")
	}
}

// BlastPRedirectPage opens NCBI's web BLAST pre-filled with a chain sequence.
func (app *AppContext) BlastPRedirectPage(w http.ResponseWriter, r *http.Request) {
	rawID := r.URL.Query().Get("pdb_id")
	chain := strings.TrimSpace(r.URL.Query().Get("chain"))

	if rawID == "" || chain == "" {
		http.Error(w, "Missing pdb_id or chain", http.StatusBadRequest)
		return
	}
	pdbID, err := rcsb.NormalizeID(rawID)
	if err != nil {
		http.Error(w, "Invalid pdb_id", http.StatusBadRequest)
		return
	}

	seq, err := app.chainSequence(r.Context(), pdbID, chain)
	switch {
	case errors.Is(err, errChainNotFound), errors.Is(err, db.ErrNotFound):
		http.Error(w, "Chain not found", http.StatusNotFound)
		return
	case err != nil:
		logger.Error("could not load chain sequence", zap.String("pdb_id", pdbID), zap.Error(err))
		http.Error(w, "Could not load structure", http.StatusBadGateway)
		return
	}

	program := app.BlastProgram
	if program == "" {
		program = "blastp"
	}
	http.Redirect(w, r, blast.WebURL(program, seq), http.StatusFound)
}
