package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/assignment-feedback/constants"
	"github.com/joseph-ayodele/assignment-feedback/internal/common"
	"github.com/joseph-ayodele/assignment-feedback/internal/extract"
	"github.com/joseph-ayodele/assignment-feedback/internal/llm"
	"github.com/joseph-ayodele/assignment-feedback/internal/llm/gemini"
	"github.com/joseph-ayodele/assignment-feedback/internal/llm/openai"
)

func newProvider(cfg common.LLMConfig, logger *slog.Logger) (llm.AssessmentProvider, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewClient(gemini.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger), nil
	case "openai":
		return openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger), nil
	default:
		return nil, common.NewAppError("CONFIG_ERROR", "unknown LLM provider "+cfg.Provider, common.ErrInvalidInput)
	}
}

func newExtractor(cfg common.ExtractConfig, logger *slog.Logger) *extract.Extractor {
	return extract.NewExtractor(extract.Config{
		Pdftotext:    cfg.Pdftotext,
		MinTextRunes: cfg.MinTextRunes,
		MaxPages:     cfg.MaxPages,
	}, logger)
}

// readDocument loads a student document from disk. The declared media type comes from the
// extension; the extractor sniffs the content when it is missing.
func readDocument(path string) (extract.RawDocument, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return extract.RawDocument{}, common.NewAppError("INVALID_INPUT",
			fmt.Sprintf("unsupported file extension %q", ext), common.ErrUnsupported)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return extract.RawDocument{}, fmt.Errorf("read %s: %w", path, err)
	}
	return extract.RawDocument{
		Data:      data,
		MediaType: constants.MapExtToMediaType(ext),
		Name:      filepath.Base(path),
	}, nil
}
