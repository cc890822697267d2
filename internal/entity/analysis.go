package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/assignment-feedback/constants"
)

// AnalysisResult wraps a FinalAssessment with the metadata of the run that produced it.
type AnalysisResult struct {
	RunID           uuid.UUID          `json:"run_id"`
	DocumentName    string             `json:"document_name,omitempty"`
	DocumentSHA256  string             `json:"document_sha256"`
	Format          string             `json:"format"`
	Strategy        constants.Strategy `json:"strategy"`
	Model           string             `json:"model,omitempty"`
	TextLength      int                `json:"text_length"`
	WordCount       int                `json:"word_count"`
	ChunkCount      int                `json:"chunk_count"`
	ProviderCalls   int                `json:"provider_calls"`
	FallbackMerge   bool               `json:"fallback_merge"`
	HasRequirements bool               `json:"has_requirements"`
	Assessment      FinalAssessment    `json:"assessment"`
	StartedAt       time.Time          `json:"started_at"`
	Duration        time.Duration      `json:"duration"`
}
