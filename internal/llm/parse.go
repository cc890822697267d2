package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/assignment-feedback/constants"
	"github.com/joseph-ayodele/assignment-feedback/internal/entity"
)

// ParseErrorKind tells why a model reply could not be turned into an assessment.
type ParseErrorKind string

const (
	ParseMalformed    ParseErrorKind = "malformed"
	ParseMissingField ParseErrorKind = "missing_field"
	ParseOutOfRange   ParseErrorKind = "out_of_range"
)

// ParseError is returned by ParseFinal and ParsePartial.
type ParseError struct {
	Kind  ParseErrorKind
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse %s (%s): %v", e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

var (
	reJSONFence = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	reAnyFence  = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*\\s*(.*?)```")
)

// Parser turns raw model replies into validated assessments.
type Parser struct {
	logger *slog.Logger
}

// NewParser builds a Parser; a nil logger falls back to slog.Default().
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

type finalWire struct {
	Title            string             `json:"title"`
	Grade            string             `json:"grade"`
	Score            float64            `json:"score"`
	Summary          string             `json:"summary"`
	Strengths        []string           `json:"strengths"`
	Improvements     []string           `json:"areas_for_improvement"`
	DetailedFeedback []string           `json:"detailed_feedback"`
	CategoryScores   map[string]float64 `json:"category_scores"`
}

type partialWire struct {
	Observations   string             `json:"observations"`
	Strengths      []string           `json:"strengths"`
	Improvements   []string           `json:"areas_for_improvement"`
	CategoryScores map[string]float64 `json:"category_scores"`
}

// ParseFinal locates the JSON payload in raw, normalizes it and validates it into a FinalAssessment.
func (p *Parser) ParseFinal(raw string) (entity.FinalAssessment, error) {
	final, _, err := compiledSchemas()
	if err != nil {
		return entity.FinalAssessment{}, fmt.Errorf("schema setup: %w", err)
	}
	doc, err := locatePayload(raw)
	if err != nil {
		return entity.FinalAssessment{}, err
	}
	allowed := append([]string{keyTitle}, finalRequired...)
	clamped, err := normalizeAssessment(doc, finalRequired, allowed, p.logger)
	if err != nil {
		return entity.FinalAssessment{}, err
	}
	var w finalWire
	if err := p.decodeValidated(final, doc, &w); err != nil {
		return entity.FinalAssessment{}, err
	}
	return entity.FinalAssessment{
		Title:            w.Title,
		Grade:            w.Grade,
		Score:            w.Score,
		Summary:          w.Summary,
		Strengths:        nonNil(w.Strengths),
		Improvements:     nonNil(w.Improvements),
		DetailedFeedback: nonNil(w.DetailedFeedback),
		CategoryScores:   toCategoryScores(w.CategoryScores),
		Clamped:          clamped,
	}, nil
}

// ParsePartial is ParseFinal for a single chunk's reply. ChunkIndex and ChunkLength are left
// for the caller to fill in.
func (p *Parser) ParsePartial(raw string) (entity.PartialAssessment, error) {
	_, partial, err := compiledSchemas()
	if err != nil {
		return entity.PartialAssessment{}, fmt.Errorf("schema setup: %w", err)
	}
	doc, err := locatePayload(raw)
	if err != nil {
		return entity.PartialAssessment{}, err
	}
	// chunk replies often call their observations a summary
	if _, ok := doc[keyObservations]; !ok {
		if s, ok := doc[keySummary]; ok {
			doc[keyObservations] = s
		}
	}
	allowed := []string{keyObservations, keyStrengths, keyImprovements, keyCategories}
	clamped, err := normalizeAssessment(doc, partialRequired, allowed, p.logger)
	if err != nil {
		return entity.PartialAssessment{}, err
	}
	var w partialWire
	if err := p.decodeValidated(partial, doc, &w); err != nil {
		return entity.PartialAssessment{}, err
	}
	return entity.PartialAssessment{
		Observations:   w.Observations,
		Strengths:      nonNil(w.Strengths),
		Improvements:   nonNil(w.Improvements),
		CategoryScores: toCategoryScores(w.CategoryScores),
		Clamped:        clamped,
	}, nil
}

func (p *Parser) decodeValidated(schema *jsonschema.Schema, doc map[string]any, out any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return &ParseError{Kind: ParseMalformed, Err: fmt.Errorf("re-encode payload: %w", err)}
	}
	if err := validateDoc(schema, b); err != nil {
		p.logger.Warn("llm.parse.schema_invalid", "error", err)
		return &ParseError{Kind: ParseMalformed, Err: err}
	}
	if err := json.Unmarshal(b, out); err != nil {
		return &ParseError{Kind: ParseMalformed, Err: fmt.Errorf("decode payload: %w", err)}
	}
	return nil
}

// locatePayload finds the JSON object in a model reply. Scopes are tried in order:
// a ```json fence, any other fence, then the whole reply.
func locatePayload(raw string) (map[string]any, error) {
	var scopes []string
	if m := reJSONFence.FindStringSubmatch(raw); m != nil {
		scopes = append(scopes, m[1])
	}
	for _, m := range reAnyFence.FindAllStringSubmatch(raw, -1) {
		scopes = append(scopes, m[1])
	}
	scopes = append(scopes, raw)

	for _, scope := range scopes {
		if doc, ok := firstObject(scope); ok {
			return doc, nil
		}
	}
	if strings.TrimSpace(raw) == "" {
		return nil, &ParseError{Kind: ParseMalformed, Err: errors.New("empty reply")}
	}
	return nil, &ParseError{Kind: ParseMalformed, Err: fmt.Errorf("no JSON object found in reply: %s", truncate(raw, 120))}
}

// firstObject returns the first balanced {...} span of s that decodes as a JSON object.
// A start that never closes or does not decode is abandoned and the scan resumes at the
// next '{' after it, so stray braces in surrounding prose are skipped.
func firstObject(s string) (map[string]any, bool) {
	for from := 0; from < len(s); {
		i := strings.IndexByte(s[from:], '{')
		if i < 0 {
			return nil, false
		}
		start := from + i
		if end := closingBrace(s, start); end > 0 {
			var doc map[string]any
			if err := json.Unmarshal([]byte(s[start:end+1]), &doc); err == nil && doc != nil {
				return doc, true
			}
		}
		from = start + 1
	}
	return nil, false
}

// closingBrace returns the index of the '}' matching the '{' at start, honoring string
// literals and escapes, or -1 when the object never closes.
func closingBrace(s string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func toCategoryScores(m map[string]float64) entity.CategoryScores {
	out := make(entity.CategoryScores, len(m))
	for k, v := range m {
		out[constants.Category(k)] = v
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
