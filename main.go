package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yumyai/protlit/internal/config"
	"github.com/yumyai/protlit/logger"
	"github.com/yumyai/protlit/pkg/blast"
	"github.com/yumyai/protlit/pkg/db"
	"github.com/yumyai/protlit/pkg/handler"
	"github.com/yumyai/protlit/pkg/httpx"
	"github.com/yumyai/protlit/pkg/llm"
	"github.com/yumyai/protlit/pkg/mcsa"
	"github.com/yumyai/protlit/pkg/model"
	"github.com/yumyai/protlit/pkg/paper"
	"github.com/yumyai/protlit/pkg/pdbe"
	"github.com/yumyai/protlit/pkg/predict"
	"github.com/yumyai/protlit/pkg/rcsb"
	"github.com/yumyai/protlit/pkg/structure"
	"github.com/yumyai/protlit/pkg/uniprot"
	"github.com/yumyai/protlit/pkg/unpaywall"
)

const VERSION = "0.1.0"

// blastJobTTL is how long a finished BLAST job stays viewable.
const blastJobTTL = 2 * time.Hour

// staleBlastJobTTL drops searches nobody came back to poll.
const staleBlastJobTTL = 24 * time.Hour

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:          "protlit",
		Short:        "Protein structure and literature dashboard",
		Version:      VERSION,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load before reading the environment")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(envFile)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return serveHTTP(cmd.Context(), cfg)
		},
	}

	var question string
	analyze := &cobra.Command{
		Use:   "analyze <PDB_ID|SEQUENCE>",
		Short: "Build one report and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(envFile)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return analyzeOnce(cmd.Context(), cfg, args[0], question)
		},
	}
	analyze.Flags().StringVarP(&question, "question", "q", "", "question to answer from the primary citation")

	root.AddCommand(serve, analyze)
	// Running the bare binary starts the server.
	root.RunE = serve.RunE
	return root
}

// setup loads configuration and starts the package logger.
func setup(envFile string) (*config.Config, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, dotenvLoaded, err := config.Load(files...)
	if err != nil {
		return nil, err
	}
	if err := logger.InitLogger(logger.ParseLevel(cfg.LogLevel)); err != nil {
		return nil, errors.Wrap(err, "init logger")
	}
	if !dotenvLoaded {
		logger.Warn("No .env found, using local environment")
	}
	return cfg, nil
}

type services struct {
	store    *db.Store
	entries  *rcsb.Client
	analyzer *model.Analyzer
	predict  *predict.Client
	blast    *blast.Client
}

func newServices(cfg *config.Config) (*services, error) {
	store, err := db.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	hc := httpx.New(httpx.Options{
		Timeout:           cfg.HTTPTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		UserAgent:         cfg.UserAgent,
	})

	entries := rcsb.NewClient(rcsb.Config{
		DataURL:   cfg.RCSBDataURL,
		FilesURL:  cfg.RCSBFilesURL,
		SearchURL: cfg.RCSBSearchURL,
	}, hc)

	analyzer := &model.Analyzer{
		Entries:     entries,
		Mappings:    pdbe.NewClient(cfg.PDBeURL, hc),
		Annotations: uniprot.NewClient(cfg.UniProtURL, hc),
		Sites:       mcsa.NewClient(cfg.MCSAURL, hc),
		Papers:      unpaywall.NewClient(cfg.UnpaywallURL, cfg.UnpaywallEmail, hc),
		PaperText:   paper.NewFetcher(hc),
		Structures:  store.Structures,
		Hotspots: structure.HotspotOptions{
			DistanceCutoff:   cfg.HotspotDistanceCutoff,
			ContactThreshold: cfg.HotspotContactThreshold,
		},
		PaperMaxChars: cfg.PaperMaxChars,
	}
	if cfg.LLMEnabled() {
		analyzer.LLM = llm.NewClient(llm.Config{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			Temperature: &cfg.OpenAITemperature,
		}, hc)
	} else {
		logger.Warn("No OpenAI API key configured, summaries and paper answers are disabled")
	}

	return &services{
		store:    store,
		entries:  entries,
		analyzer: analyzer,
		predict:  predict.NewClient(cfg.DynaMutURL, cfg.MCSMPPIURL, hc),
		blast: blast.NewClient(blast.Config{
			URL:      cfg.BlastURL,
			Program:  cfg.BlastProgram,
			Database: cfg.BlastDatabase,
		}, hc),
	}, nil
}

func serveHTTP(ctx context.Context, cfg *config.Config) error {
	svc, err := newServices(cfg)
	if err != nil {
		return err
	}
	defer svc.store.Close()

	app := &handler.AppContext{
		Analyzer:      svc.analyzer,
		Entries:       svc.entries,
		Structures:    svc.store.Structures,
		History:       svc.store.History,
		Predictor:     svc.predict,
		Blast:         svc.blast,
		BlastJobs:     handler.NewBlastJobManager(),
		BlastProgram:  cfg.BlastProgram,
		BlastDatabase: cfg.BlastDatabase,
		LLMEnabled:    cfg.LLMEnabled(),
	}

	logger.Info("Start:", zap.String("Version", VERSION))
	logger.Info("Open data directory", zap.String("DATA_DIR", cfg.DataDir))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go pruneBlastJobs(ctx, app.BlastJobs)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
		// analysis waits on several upstream services in sequence
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("addr", cfg.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("Error starting server:", zap.Error(err))
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func pruneBlastJobs(ctx context.Context, jobs *handler.BlastJobManager) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := jobs.Prune(blastJobTTL, staleBlastJobTTL); n > 0 {
				logger.Debug("Pruned BLAST jobs", zap.Int("count", n))
			}
		}
	}
}

// analyzeOnce runs the pipeline for one input and writes the report to stdout.
// Anything that parses as a PDB identifier is treated as one.
func analyzeOnce(ctx context.Context, cfg *config.Config, input, question string) error {
	svc, err := newServices(cfg)
	if err != nil {
		return err
	}
	defer svc.store.Close()

	req := model.AnalyzeRequest{Question: question}
	if _, err := rcsb.NormalizeID(input); err == nil {
		req.InputType, req.PDBID = model.InputPDB, input
	} else {
		req.InputType, req.Sequence = model.InputSequence, strings.TrimSpace(input)
	}

	report, err := svc.analyzer.Analyze(ctx, req)
	if err != nil {
		return err
	}
	if err := svc.store.History.Insert(ctx, report); err != nil {
		logger.Warn("could not store report", zap.String("report_id", report.ID), zap.Error(err))
	}
	for _, w := range report.Warnings {
		logger.Warn(w, zap.String("pdb_id", report.PDBID))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
