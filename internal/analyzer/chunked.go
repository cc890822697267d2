package analyzer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/assignment-feedback/constants"
	"github.com/joseph-ayodele/assignment-feedback/internal/chunk"
	"github.com/joseph-ayodele/assignment-feedback/internal/entity"
	"github.com/joseph-ayodele/assignment-feedback/internal/llm"
)

// chunked fans the chunk calls out, waits for every one of them, then merges.
func (a *Analyzer) chunked(ctx context.Context, r *run, text string) (entity.FinalAssessment, int, error) {
	chunks, err := a.chunker.Chunk(text, a.cfg.MaxChunkSize)
	if err != nil {
		return entity.FinalAssessment{}, 0, newAnalysisError(InvalidInput, err, "chunking failed")
	}
	r.logger.Info("analyzer.chunked", "chunks", len(chunks), "max_chunk_size", a.cfg.MaxChunkSize, "concurrency", a.cfg.Concurrency)

	partials, err := a.runChunks(ctx, r, chunks)
	if err != nil {
		return entity.FinalAssessment{}, len(chunks), err
	}
	final, err := a.merge(ctx, r, partials)
	return final, len(chunks), err
}

// runChunks assesses every chunk with at most Concurrency calls in flight. Results are stored
// by chunk index so the merge sees them in document order whatever the completion order.
// The first chunk that exhausts its retries cancels the rest.
func (a *Analyzer) runChunks(ctx context.Context, r *run, chunks []chunk.Chunk) ([]entity.PartialAssessment, error) {
	partials := make([]entity.PartialAssessment, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Concurrency)
	for _, c := range chunks {
		c := c
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			p, err := a.assessChunk(gctx, r, c, len(chunks))
			if err != nil {
				if gctx.Err() != nil {
					// canceled by a failing sibling or the caller; errgroup keeps the first error only
					r.logger.Debug("analyzer.chunk.canceled", "chunk", c.Index, "error", err)
					return err
				}
				r.logger.Error("analyzer.chunk.failed", "chunk", c.Index, "error", err)
				return chunkFailure(a.classify(ctx, constants.CallChunk, err), c, len(chunks))
			}
			partials[c.Index] = p
			r.logger.Info("analyzer.chunk.ok", "chunk", c.Index, "length", c.Length, "mean", p.CategoryScores.Mean())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, newAnalysisError(Canceled, ctx.Err(), "canceled while assessing chunks")
		}
		return nil, err
	}
	return partials, nil
}

func (a *Analyzer) assessChunk(ctx context.Context, r *run, c chunk.Chunk, total int) (entity.PartialAssessment, error) {
	prompt := llm.BuildChunkPrompt(r.requirements, c.Index, total)
	var partial entity.PartialAssessment
	_, err := a.retry.Do(ctx, constants.CallChunk, chunkLabel(c, total), func(ctx context.Context) error {
		r.calls.Add(1)
		raw, err := a.provider.AssessText(ctx, prompt, c.Text)
		if err != nil {
			return err
		}
		partial, err = a.parser.ParsePartial(raw)
		return err
	})
	if err != nil {
		return entity.PartialAssessment{}, err
	}
	partial.ChunkIndex = c.Index
	partial.ChunkLength = c.Length
	return partial, nil
}

func chunkFailure(err *AnalysisError, c chunk.Chunk, total int) *AnalysisError {
	err.Message = chunkLabel(c, total) + ": " + err.Message
	return err
}

// merge asks the provider to reconcile the partial assessments. Replies that never parse
// fall back to a deterministic client-side merge; provider failures abort.
func (a *Analyzer) merge(ctx context.Context, r *run, partials []entity.PartialAssessment) (entity.FinalAssessment, error) {
	prompt, evidence := llm.BuildMergePrompt(r.requirements, partials)
	final, err := a.callFinal(ctx, r, constants.CallMerge, func(ctx context.Context) (string, error) {
		return a.provider.AssessText(ctx, prompt, evidence)
	})
	if err == nil {
		return final, nil
	}
	if ctx.Err() == nil && llm.IsParseError(err) {
		r.logger.Warn("analyzer.merge.fallback", "error", err, "chunks", len(partials))
		r.fallback = true
		return fallbackMerge(partials), nil
	}
	return entity.FinalAssessment{}, a.classify(ctx, constants.CallMerge, err)
}
