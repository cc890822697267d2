package extract

import (
	"context"
	"log/slog"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/joseph-ayodele/assignment-feedback/constants"
)

type Config struct {
	Pdftotext    string // binary name or absolute path; empty disables the external fallback
	MinTextRunes int    // letters/digits required to call an extraction usable, default 50
	MaxPages     int    // 0 = no limit
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinTextRunes <= 0 {
		cfg.MinTextRunes = 50
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner swaps the command runner used for the pdftotext fallback.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// Extract picks a strategy based on the (declared or sniffed) media type.
func (e *Extractor) Extract(ctx context.Context, doc RawDocument) ExtractedText {
	start := time.Now()
	mediaType := DetectMediaType(doc.Data, doc.MediaType)
	format := constants.MapMediaTypeToFormat(mediaType)
	e.logger.Debug("extract.start", "name", doc.Name, "media_type", mediaType, "format", format, "bytes", len(doc.Data))

	var res ExtractedText
	switch format {
	case constants.PDF:
		res = e.extractPDF(ctx, doc.Data)
	case constants.TEXT:
		res = e.extractPlain(doc.Data)
	default:
		res = failed(format, []string{"no text extractor for media type " + mediaType})
	}
	res.Format = format
	res.Duration = time.Since(start)

	if res.OK && meaningfulRunes(res.Text) < e.cfg.MinTextRunes {
		res.Warnings = append(res.Warnings, "extracted text below minimum length; treating as image-only")
		res = ExtractedText{Format: format, Method: res.Method, Pages: res.Pages, Duration: res.Duration, Warnings: res.Warnings}
	}

	if res.OK {
		e.logger.Info("extract.ok", "name", doc.Name, "method", res.Method, "pages", res.Pages, "length", res.Length, "elapsed_ms", res.Duration.Milliseconds())
	} else {
		e.logger.Warn("extract.unusable", "name", doc.Name, "format", format, "warnings", res.Warnings, "elapsed_ms", res.Duration.Milliseconds())
	}
	return res
}

func (e *Extractor) extractPlain(data []byte) ExtractedText {
	if !utf8.Valid(data) {
		return failed(constants.TEXT, []string{"text document is not valid UTF-8"})
	}
	return succeeded(Normalize(string(data)), 0, "plain-text", nil)
}

func succeeded(text string, pages int, method string, warnings []string) ExtractedText {
	return ExtractedText{
		Text:     text,
		OK:       text != "",
		Length:   utf8.RuneCountInString(text),
		Pages:    pages,
		Method:   method,
		Warnings: warnings,
	}
}

func meaningfulRunes(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
