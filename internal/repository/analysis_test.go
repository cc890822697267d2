package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/assignment-feedback/constants"
	"github.com/joseph-ayodele/assignment-feedback/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{DSN: filepath.Join(t.TempDir(), "history.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db, nil) })
	return db
}

func result(name, sha string, startedAt time.Time, score float64) *entity.AnalysisResult {
	return &entity.AnalysisResult{
		RunID:          uuid.New(),
		DocumentName:   name,
		DocumentSHA256: sha,
		Format:         constants.PDF,
		Strategy:       constants.StrategyChunked,
		Model:          "gemini-2.0-flash",
		TextLength:     19999,
		WordCount:      3100,
		ChunkCount:     3,
		ProviderCalls:  4,
		FallbackMerge:  true,
		StartedAt:      startedAt,
		Duration:       1500 * time.Millisecond,
		Assessment: entity.FinalAssessment{
			Grade:            "B",
			Score:            score,
			Summary:          "Solid.",
			Strengths:        []string{"Clear"},
			Improvements:     []string{"Cite more"},
			DetailedFeedback: []string{"Paragraph."},
			CategoryScores:   entity.CategoryScores{constants.Content: score, constants.References: 70},
		},
	}
}

func TestDialectFor(t *testing.T) {
	assert.Equal(t, DialectPostgres, DialectFor("postgres://u:p@localhost/db"))
	assert.Equal(t, DialectPostgres, DialectFor("POSTGRESQL://localhost/db"))
	assert.Equal(t, DialectSQLite, DialectFor("/var/lib/feedback/history.db"))
	assert.Equal(t, DialectSQLite, DialectFor("file:history.db?mode=rwc"))
}

func TestRebind(t *testing.T) {
	pg := &DB{Dialect: DialectPostgres}
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))
	lite := &DB{Dialect: DialectSQLite}
	assert.Equal(t, "x = ?", lite.rebind("x = ?"))
}

func TestAnalysisRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalysisRepository(openTestDB(t), nil)

	in := result("essay.pdf", "abc", time.Date(2026, 3, 1, 10, 0, 0, 123456789, time.UTC), 84.5)
	require.NoError(t, repo.Save(ctx, in))

	got, err := repo.GetByID(ctx, in.RunID)
	require.NoError(t, err)
	assert.Equal(t, in.RunID, got.RunID)
	assert.Equal(t, in.DocumentName, got.DocumentName)
	assert.Equal(t, constants.StrategyChunked, got.Strategy)
	assert.True(t, got.FallbackMerge)
	assert.False(t, got.HasRequirements)
	assert.True(t, in.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, in.Duration, got.Duration)
	assert.Equal(t, 84.5, got.Assessment.Score)
	assert.Equal(t, 84.5, got.Assessment.CategoryScores[constants.Content])
	assert.Equal(t, []string{"Cite more"}, got.Assessment.Improvements)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, repo.Save(ctx, in), "duplicate run id")
}

func TestAnalysisRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalysisRepository(openTestDB(t), nil)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, result("a.pdf", "aaa", base, 70)))
	require.NoError(t, repo.Save(ctx, result("b.pdf", "bbb", base.Add(time.Hour), 80)))
	require.NoError(t, repo.Save(ctx, result("a-v2.pdf", "aaa", base.Add(2*time.Hour), 90)))

	all, err := repo.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a-v2.pdf", all[0].DocumentName)
	assert.Equal(t, "a.pdf", all[2].DocumentName)

	same, err := repo.List(ctx, ListFilter{DocumentSHA256: "aaa"})
	require.NoError(t, err)
	assert.Len(t, same, 2)

	since := base.Add(30 * time.Minute)
	recent, err := repo.List(ctx, ListFilter{Since: &since, Limit: 1})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "a-v2.pdf", recent[0].DocumentName)
}

func TestHealthCheck(t *testing.T) {
	require.NoError(t, HealthCheck(context.Background(), openTestDB(t), time.Second, nil))
}
