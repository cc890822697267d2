package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

func (e *Extractor) extractPDF(ctx context.Context, data []byte) ExtractedText {
	text, pages, warns, err := e.pdfNative(data)
	if err == nil && meaningfulRunes(text) >= e.cfg.MinTextRunes {
		return succeeded(text, pages, "pdf-native", warns)
	}
	if err != nil {
		warns = append(warns, "native decode: "+err.Error())
	}
	if e.cfg.Pdftotext == "" {
		return succeeded(text, pages, "pdf-native", warns)
	}

	e.logger.Debug("extract.pdf.fallback", "tool", e.cfg.Pdftotext)
	text2, pages2, warns2, err := e.pdfToText(ctx, data)
	warns = append(warns, warns2...)
	if err != nil {
		warns = append(warns, "pdftotext: "+err.Error())
		return succeeded(text, pages, "pdf-native", warns)
	}
	return succeeded(text2, pages2, "pdftotext", warns)
}

// pdfNative decodes the PDF in-process. The decoder panics on some malformed inputs;
// those are turned into errors.
func (e *Extractor) pdfNative(data []byte) (text string, pages int, warnings []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, pages = "", 0
			err = fmt.Errorf("pdf decoder panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, nil, fmt.Errorf("open pdf: %w", err)
	}

	pages = reader.NumPage()
	limit := pages
	if e.cfg.MaxPages > 0 && limit > e.cfg.MaxPages {
		limit = e.cfg.MaxPages
		warnings = append(warnings, fmt.Sprintf("page limit reached: %d of %d pages decoded", limit, pages))
	}

	var b strings.Builder
	for i := 1; i <= limit; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		txt, perr := page.GetPlainText(nil)
		if perr != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: %v", i, perr))
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(txt)
	}
	return Normalize(b.String()), pages, warnings, nil
}

// pdfToText runs the external pdftotext tool over a scratch copy of the document.
// The scratch directory is removed on every return path.
func (e *Extractor) pdfToText(ctx context.Context, data []byte) (text string, pages int, warnings []string, err error) {
	tmpDir, err := os.MkdirTemp("", "fb-pdf-*")
	if err != nil {
		return "", 0, nil, err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			e.logger.Warn("extract.scratch_cleanup_failed", "dir", path, "error", err)
		}
	}(tmpDir)

	in := filepath.Join(tmpDir, "document.pdf")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return "", 0, nil, fmt.Errorf("write scratch pdf: %w", err)
	}

	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", fmt.Sprintf("%d", e.cfg.MaxPages))
	}
	// pdftotext -layout -enc UTF-8 -eol unix <in> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, append(args, in, "-")...)
	if err != nil {
		return "", 0, []string{truncate(string(errb), 512)}, err
	}
	raw := string(out)
	// form-feed separates pages
	pages = 1 + strings.Count(strings.TrimRight(raw, "\f"), "\f")
	return Normalize(raw), pages, nil, nil
}
