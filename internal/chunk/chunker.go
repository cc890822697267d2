// Package chunk splits extracted text into bounded, ordered segments for per-chunk analysis.
package chunk

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrInvalidChunkSize is returned when the bound is not positive.
var ErrInvalidChunkSize = errors.New("max chunk size must be > 0")

// Chunk is one ordered text segment. Index is 0-based and gap-free.
type Chunk struct {
	Index  int
	Text   string
	Length int // runes
}

// Chunker turns text into a deterministic sequence of chunks no longer than maxChunkSize
// runes, except where a single indivisible unit is longer on its own.
type Chunker interface {
	Chunk(text string, maxChunkSize int) ([]Chunk, error)
}

// ParagraphChunker packs paragraphs greedily, falling back to sentences and then words
// for paragraphs that do not fit. It holds no state.
type ParagraphChunker struct{}

func NewParagraphChunker() *ParagraphChunker {
	return &ParagraphChunker{}
}

const (
	paragraphSep = "\n\n"
	inlineSep    = " "
)

var (
	reParagraph   = regexp.MustCompile(`\n[ \t]*\n`)
	reSentenceEnd = regexp.MustCompile(`[.!?]+["'”’)\]]*\s+`)
)

type unit struct {
	text string
	sep  string // joins this unit to the previous one inside a chunk
	n    int
}

func (c *ParagraphChunker) Chunk(text string, maxChunkSize int) ([]Chunk, error) {
	if maxChunkSize <= 0 {
		return nil, ErrInvalidChunkSize
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if n := utf8.RuneCountInString(text); n <= maxChunkSize {
		return []Chunk{{Index: 0, Text: text, Length: n}}, nil
	}

	var (
		chunks []Chunk
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen == 0 {
			return
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Text: cur.String(), Length: curLen})
		cur.Reset()
		curLen = 0
	}

	for _, u := range splitUnits(text, maxChunkSize) {
		if curLen > 0 && curLen+utf8.RuneCountInString(u.sep)+u.n > maxChunkSize {
			flush()
		}
		if curLen > 0 {
			cur.WriteString(u.sep)
			curLen += utf8.RuneCountInString(u.sep)
		}
		cur.WriteString(u.text)
		curLen += u.n
	}
	flush()
	return chunks, nil
}

// splitUnits breaks text into the largest units that fit the bound:
// paragraphs, else sentences, else words.
func splitUnits(text string, max int) []unit {
	var units []unit
	for _, para := range reParagraph.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		first := true
		emit := func(s string) {
			sep := inlineSep
			if first {
				sep = paragraphSep
				first = false
			}
			units = append(units, unit{text: s, sep: sep, n: utf8.RuneCountInString(s)})
		}

		if utf8.RuneCountInString(para) <= max {
			emit(para)
			continue
		}
		for _, sentence := range splitSentences(para) {
			if utf8.RuneCountInString(sentence) <= max {
				emit(sentence)
				continue
			}
			// a sentence longer than the bound: fall back to words; an oversized word stays whole
			for _, w := range strings.Fields(sentence) {
				emit(w)
			}
		}
	}
	return units
}

func splitSentences(para string) []string {
	var out []string
	start := 0
	for _, loc := range reSentenceEnd.FindAllStringIndex(para, -1) {
		if s := strings.TrimSpace(para[start:loc[1]]); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(para[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
