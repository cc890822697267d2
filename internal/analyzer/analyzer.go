// Package analyzer drives one document through extraction, strategy selection,
// provider calls and merging into a single FinalAssessment.
package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/assignment-feedback/constants"
	"github.com/joseph-ayodele/assignment-feedback/internal/chunk"
	"github.com/joseph-ayodele/assignment-feedback/internal/common"
	"github.com/joseph-ayodele/assignment-feedback/internal/entity"
	"github.com/joseph-ayodele/assignment-feedback/internal/extract"
	"github.com/joseph-ayodele/assignment-feedback/internal/llm"
)

type Analyzer struct {
	cfg       Config
	extractor extract.TextExtractor
	chunker   chunk.Chunker
	provider  llm.AssessmentProvider
	parser    *llm.Parser
	retry     llm.RetryPolicy
	logger    *slog.Logger
}

// New wires an Analyzer. The provider may be shared with other analyzers; it must not hold
// per-request state.
func New(cfg Config, extractor extract.TextExtractor, chunker chunk.Chunker, provider llm.AssessmentProvider, logger *slog.Logger) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if extractor == nil || chunker == nil || provider == nil {
		return nil, common.NewAppError("CONFIG_ERROR", "extractor, chunker and provider are required", common.ErrInvalidInput)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		cfg:       cfg,
		extractor: extractor,
		chunker:   chunker,
		provider:  provider,
		parser:    llm.NewParser(logger),
		retry: llm.RetryPolicy{
			MaxRetries:  cfg.MaxRetries,
			BackoffBase: cfg.BackoffBase,
			BackoffMax:  cfg.BackoffMax,
			Jitter:      true,
			Logger:      logger,
		},
		logger: logger,
	}, nil
}

// run carries the per-call state of one Analyze invocation.
type run struct {
	requirements string
	logger       *slog.Logger
	calls        atomic.Int64
	fallback     bool
}

// Analyze produces exactly one FinalAssessment for doc, or an *AnalysisError.
func (a *Analyzer) Analyze(ctx context.Context, doc extract.RawDocument, requirements string) (*entity.AnalysisResult, error) {
	if len(doc.Data) == 0 {
		return nil, newAnalysisError(InvalidInput, common.ErrInvalidInput, "document %q is empty", doc.Name)
	}

	start := time.Now()
	runID := uuid.New()
	ctx = common.WithRunID(ctx, runID.String())
	sum := sha256.Sum256(doc.Data)

	r := &run{
		requirements: requirements,
		logger:       a.logger.With("run_id", runID.String(), "document", doc.Name),
	}
	res := &entity.AnalysisResult{
		RunID:           runID,
		DocumentName:    doc.Name,
		DocumentSHA256:  hex.EncodeToString(sum[:]),
		Model:           a.cfg.Model,
		HasRequirements: strings.TrimSpace(requirements) != "",
		StartedAt:       start.UTC(),
	}
	r.logger.Info("analyzer.start", "bytes", len(doc.Data), "media_type", doc.MediaType, "has_requirements", res.HasRequirements)

	text := a.extractor.Extract(ctx, doc)
	res.Format = text.Format
	if err := ctx.Err(); err != nil {
		return nil, newAnalysisError(Canceled, err, "canceled during extraction")
	}

	var (
		final entity.FinalAssessment
		err   error
	)
	switch {
	case !text.OK:
		res.Strategy = constants.StrategyNative
		final, err = a.native(ctx, r, doc)
	case text.Length <= a.cfg.SinglePassThreshold:
		res.Strategy = constants.StrategyDirect
		res.TextLength, res.WordCount, res.ChunkCount = text.Length, len(strings.Fields(text.Text)), 1
		final, err = a.direct(ctx, r, text.Text)
	default:
		res.Strategy = constants.StrategyChunked
		res.TextLength, res.WordCount = text.Length, len(strings.Fields(text.Text))
		final, res.ChunkCount, err = a.chunked(ctx, r, text.Text)
	}
	res.ProviderCalls = int(r.calls.Load())
	res.FallbackMerge = r.fallback
	res.Duration = time.Since(start)

	if err != nil {
		r.logger.Error("analyzer.failed", "strategy", res.Strategy, "provider_calls", res.ProviderCalls, "error", err,
			"elapsed_ms", res.Duration.Milliseconds())
		return nil, err
	}
	res.Assessment = final
	r.logger.Info("analyzer.ok",
		"strategy", res.Strategy,
		"chunks", res.ChunkCount,
		"provider_calls", res.ProviderCalls,
		"fallback_merge", res.FallbackMerge,
		"score", final.Score,
		"grade", final.Grade,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (a *Analyzer) direct(ctx context.Context, r *run, text string) (entity.FinalAssessment, error) {
	prompt := llm.BuildDirectPrompt(r.requirements)
	final, err := a.callFinal(ctx, r, constants.CallDirect, func(ctx context.Context) (string, error) {
		return a.provider.AssessText(ctx, prompt, text)
	})
	if err != nil {
		return entity.FinalAssessment{}, a.classify(ctx, constants.CallDirect, err)
	}
	return final, nil
}

func (a *Analyzer) native(ctx context.Context, r *run, doc extract.RawDocument) (entity.FinalAssessment, error) {
	mediaType := extract.DetectMediaType(doc.Data, doc.MediaType)
	prompt := llm.BuildNativePrompt(r.requirements)
	r.logger.Info("analyzer.native", "media_type", mediaType)

	final, err := a.callFinal(ctx, r, constants.CallNative, func(ctx context.Context) (string, error) {
		return a.provider.AssessDocument(ctx, prompt, doc.Data, mediaType)
	})
	if err != nil {
		return entity.FinalAssessment{}, a.classify(ctx, constants.CallNative, err)
	}
	return final, nil
}

// callFinal performs one retried provider call whose reply must parse as a FinalAssessment.
func (a *Analyzer) callFinal(ctx context.Context, r *run, call constants.CallType, invoke func(context.Context) (string, error)) (entity.FinalAssessment, error) {
	var final entity.FinalAssessment
	_, err := a.retry.Do(ctx, call, string(call), func(ctx context.Context) error {
		r.calls.Add(1)
		raw, err := invoke(ctx)
		if err != nil {
			return err
		}
		final, err = a.parser.ParseFinal(raw)
		return err
	})
	return final, err
}

// classify turns a terminal call failure into the caller-facing error.
func (a *Analyzer) classify(ctx context.Context, call constants.CallType, err error) *AnalysisError {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return newAnalysisError(Canceled, err, "%s call canceled", call)
	}
	if llm.IsParseError(err) {
		return newAnalysisError(ParseExhausted, err, "%s reply could not be parsed", call)
	}
	var pe *llm.ProviderError
	if call == constants.CallNative && errors.As(err, &pe) && unprocessable(pe.StatusCode) {
		return newAnalysisError(ExtractionExhausted, err, "text extraction failed and the provider could not ingest the document")
	}
	if llm.IsTransient(err) {
		return newAnalysisError(ProviderExhausted, err, "%s call still failing after %d retries", call, a.cfg.MaxRetries)
	}
	return newAnalysisError(ProviderExhausted, err, "%s call failed", call)
}

func unprocessable(status int) bool {
	return status == http.StatusBadRequest ||
		status == http.StatusUnsupportedMediaType ||
		status == http.StatusUnprocessableEntity
}

func chunkLabel(c chunk.Chunk, total int) string {
	return fmt.Sprintf("chunk %d/%d", c.Index+1, total)
}
