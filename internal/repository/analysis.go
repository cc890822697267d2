package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/assignment-feedback/constants"
	"github.com/joseph-ayodele/assignment-feedback/internal/entity"
)

// ErrNotFound is returned when no analysis has the requested ID.
var ErrNotFound = errors.New("analysis not found")

// timestamps are stored as fixed-width UTC text so they sort the same in both dialects
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ListFilter narrows List. Zero values mean no restriction.
type ListFilter struct {
	DocumentSHA256 string
	Since          *time.Time
	Limit          int
}

// AnalysisRepository keeps the history of completed analyses. Documents themselves are
// never stored, only their hash and the resulting assessment.
type AnalysisRepository interface {
	Save(ctx context.Context, res *entity.AnalysisResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisResult, error)
	List(ctx context.Context, filter ListFilter) ([]*entity.AnalysisResult, error)
}

type analysisRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewAnalysisRepository(db *DB, logger *slog.Logger) AnalysisRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &analysisRepo{db: db, logger: logger}
}

const analysisColumns = `id, document_name, document_sha256, format, strategy, model, text_length, word_count,
	chunk_count, provider_calls, fallback_merge, has_requirements, grade, score, assessment, started_at, duration_ms`

func (r *analysisRepo) Save(ctx context.Context, res *entity.AnalysisResult) error {
	assessment, err := json.Marshal(res.Assessment)
	if err != nil {
		return fmt.Errorf("encode assessment: %w", err)
	}
	q := r.db.rebind(`INSERT INTO analyses (` + analysisColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = r.db.ExecContext(ctx, q,
		res.RunID.String(),
		res.DocumentName,
		res.DocumentSHA256,
		res.Format,
		string(res.Strategy),
		res.Model,
		res.TextLength,
		res.WordCount,
		res.ChunkCount,
		res.ProviderCalls,
		res.FallbackMerge,
		res.HasRequirements,
		res.Assessment.Grade,
		res.Assessment.Score,
		string(assessment),
		res.StartedAt.UTC().Format(timeLayout),
		res.Duration.Milliseconds(),
	)
	if err != nil {
		r.logger.Error("failed to save analysis", "run_id", res.RunID, "error", err)
		return fmt.Errorf("%s: save analysis: %w", r.db.Dialect, err)
	}
	r.logger.Debug("analysis saved", "run_id", res.RunID, "document", res.DocumentName)
	return nil
}

func (r *analysisRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisResult, error) {
	q := r.db.rebind(`SELECT ` + analysisColumns + ` FROM analyses WHERE id = ?`)
	res, err := scanAnalysis(r.db.QueryRowContext(ctx, q, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to get analysis", "run_id", id, "error", err)
		return nil, fmt.Errorf("%s: get analysis: %w", r.db.Dialect, err)
	}
	return res, nil
}

// List returns analyses newest first.
func (r *analysisRepo) List(ctx context.Context, filter ListFilter) ([]*entity.AnalysisResult, error) {
	q := `SELECT ` + analysisColumns + ` FROM analyses WHERE 1=1`
	var args []any
	if filter.DocumentSHA256 != "" {
		q += ` AND document_sha256 = ?`
		args = append(args, filter.DocumentSHA256)
	}
	if filter.Since != nil {
		q += ` AND started_at >= ?`
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}
	q += ` ORDER BY started_at DESC, id`
	if filter.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, r.db.rebind(q), args...)
	if err != nil {
		r.logger.Error("failed to list analyses", "error", err)
		return nil, fmt.Errorf("%s: list analyses: %w", r.db.Dialect, err)
	}
	defer rows.Close()

	var out []*entity.AnalysisResult
	for rows.Next() {
		res, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan analysis: %w", r.db.Dialect, err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iter analyses: %w", r.db.Dialect, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(s scanner) (*entity.AnalysisResult, error) {
	var (
		res        entity.AnalysisResult
		id         string
		strategy   string
		grade      string
		score      float64
		assessment string
		startedAt  string
		durationMS int64
	)
	err := s.Scan(&id, &res.DocumentName, &res.DocumentSHA256, &res.Format, &strategy, &res.Model,
		&res.TextLength, &res.WordCount, &res.ChunkCount, &res.ProviderCalls, &res.FallbackMerge,
		&res.HasRequirements, &grade, &score, &assessment, &startedAt, &durationMS)
	if err != nil {
		return nil, err
	}
	if res.RunID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse id: %w", err)
	}
	if err := json.Unmarshal([]byte(assessment), &res.Assessment); err != nil {
		return nil, fmt.Errorf("decode assessment: %w", err)
	}
	if res.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	res.Strategy = constants.Strategy(strategy)
	res.Duration = time.Duration(durationMS) * time.Millisecond
	return &res, nil
}
