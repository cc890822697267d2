package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/assignment-feedback/internal/analyzer"
	"github.com/joseph-ayodele/assignment-feedback/internal/chunk"
	"github.com/joseph-ayodele/assignment-feedback/internal/common"
	"github.com/joseph-ayodele/assignment-feedback/internal/entity"
	"github.com/joseph-ayodele/assignment-feedback/internal/extract"
	"github.com/joseph-ayodele/assignment-feedback/internal/report"
	"github.com/joseph-ayodele/assignment-feedback/internal/repository"
)

type analyzeOptions struct {
	requirements string
	markdownOut  string
	pdfOut       string
	jsonOutput   bool
	noSave       bool
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze <document>",
		Short: "Assess a student document and print the feedback report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.requirements, "requirements", "r", "", "assignment requirements (text, markdown or PDF file)")
	cmd.Flags().StringVar(&opts.markdownOut, "markdown", "", "also write the Markdown report to this path")
	cmd.Flags().StringVar(&opts.pdfOut, "pdf", "", "also write a PDF report to this path")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print the analysis result as JSON instead of Markdown")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "do not record the run in the history store even when DB_URL is set")
	return cmd
}

func runAnalyze(ctx context.Context, cmd *cobra.Command, path string, opts *analyzeOptions) error {
	logger := slog.Default()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reqID := uuid.New().String()
	ctx = common.WithRequestID(ctx, reqID)
	logger = logger.With("req_id", reqID)

	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	extractor := newExtractor(cfg.Extract, logger)

	requirements, err := readRequirements(ctx, extractor, opts.requirements)
	if err != nil {
		return err
	}

	provider, err := newProvider(cfg.LLM, logger)
	if err != nil {
		return err
	}
	a, err := analyzer.New(analyzer.ConfigFrom(cfg), extractor, chunk.NewParagraphChunker(), provider, logger)
	if err != nil {
		return err
	}

	res, err := a.Analyze(ctx, doc, requirements)
	if err != nil {
		return err
	}

	if err := writeReports(res, opts); err != nil {
		return err
	}
	if cfg.Store.DSN != "" && !opts.noSave {
		if err := saveHistory(ctx, cfg.Store, res, logger); err != nil {
			// the assessment is still printed; history is best effort
			logger.Warn("history.save_failed", "error", err)
		}
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err = fmt.Fprint(out, report.Markdown(res))
	return err
}

// readRequirements returns the requirements text; PDFs go through the same extractor as
// student documents.
func readRequirements(ctx context.Context, extractor extract.TextExtractor, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	doc, err := readDocument(path)
	if err != nil {
		return "", fmt.Errorf("requirements: %w", err)
	}
	text := extractor.Extract(ctx, doc)
	if !text.OK {
		return "", common.NewAppError("INVALID_INPUT",
			"could not read text from requirements file "+filepath.Base(path), common.ErrUnsupported)
	}
	return strings.TrimSpace(text.Text), nil
}

func writeReports(res *entity.AnalysisResult, opts *analyzeOptions) error {
	if opts.markdownOut != "" {
		if err := os.WriteFile(opts.markdownOut, []byte(report.Markdown(res)), 0o644); err != nil {
			return fmt.Errorf("write markdown report: %w", err)
		}
	}
	if opts.pdfOut != "" {
		b, err := report.PDF(res)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.pdfOut, b, 0o644); err != nil {
			return fmt.Errorf("write pdf report: %w", err)
		}
	}
	return nil
}

func openStore(ctx context.Context, cfg common.StoreConfig, logger *slog.Logger) (*repository.DB, error) {
	return repository.Open(ctx, repository.Config{
		DSN:         cfg.DSN,
		MaxConns:    int32(cfg.MaxConns), // #nosec G115 -- small configured value
		DialTimeout: cfg.DialTimeout,
	}, logger)
}

func saveHistory(ctx context.Context, cfg common.StoreConfig, res *entity.AnalysisResult, logger *slog.Logger) error {
	db, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repository.Close(db, logger)
	return repository.NewAnalysisRepository(db, logger).Save(ctx, res)
}
