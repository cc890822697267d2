package extract

import (
	"context"
	"time"
)

// RawDocument is the caller-owned payload handed to the pipeline for one analysis.
// It is never mutated.
type RawDocument struct {
	Data      []byte
	MediaType string // declared media type; may be empty
	Name      string // optional, used for logs and provider hints
}

// TextExtractor is Stage 1: document bytes -> plain text.
// Implementations never fail; an unusable document yields OK == false.
type TextExtractor interface {
	Extract(ctx context.Context, doc RawDocument) ExtractedText
}

type ExtractedText struct {
	Text     string
	OK       bool
	Length   int    // runes in Text
	Pages    int    // 0 when not paginated
	Format   string // constants.PDF | constants.TEXT | constants.IMAGE | constants.UNKNOWN
	Method   string // "pdf-native" | "pdftotext" | "plain-text" | ""
	Duration time.Duration
	Warnings []string
}

func failed(format string, warnings []string) ExtractedText {
	return ExtractedText{Format: format, Warnings: warnings}
}
