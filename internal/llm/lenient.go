package llm

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/assignment-feedback/constants"
)

var (
	reScoreSuffix = regexp.MustCompile(`(?i)\s*(/\s*100|%|points?|pts)\s*$`)
	reParagraphs  = regexp.MustCompile(`\n\s*\n`)
)

// synonyms the models use for our wire keys, in precedence order: when a reply carries
// several synonyms of one key and not the key itself, the first listed wins.
var keySynonyms = []struct{ from, to string }{
	{"improvements", keyImprovements},
	{"areas_of_improvement", keyImprovements},
	{"weaknesses", keyImprovements},
	{"overall_score", keyScore},
	{"letter_grade", keyGrade},
	{"feedback", keyDetailed},
	{"categories", keyCategories},
	{"scores", keyCategories},
	{"key_points", keyObservations},
}

type normalizer struct {
	allowed  map[string]struct{}
	required []string
	clamped  []string
	dropped  []string
}

// normalizeAssessment rewrites a decoded payload in place so it can be validated strictly:
//   - renames known synonyms
//   - coerces numeric strings ("85", "85/100", "85%") to numbers and clamps them to [0,100]
//   - canonicalizes category names, dropping unknown ones
//   - turns a prose detailed_feedback into paragraphs and single strings into lists
//   - removes unknown keys
//
// Required fields are never filled in.
func normalizeAssessment(m map[string]any, required []string, allowed []string, logger *slog.Logger) ([]string, error) {
	n := &normalizer{required: required, allowed: map[string]struct{}{}}
	for _, k := range allowed {
		n.allowed[k] = struct{}{}
	}

	for _, syn := range keySynonyms {
		if v, ok := m[syn.from]; ok {
			if _, exists := m[syn.to]; !exists {
				m[syn.to] = v
			}
			delete(m, syn.from)
		}
	}

	for _, k := range n.required {
		if v, ok := m[k]; !ok || v == nil {
			return nil, &ParseError{Kind: ParseMissingField, Field: k, Err: fmt.Errorf("required field %q is absent", k)}
		}
	}

	if v, ok := m[keyScore]; ok {
		f, err := n.score(keyScore, v)
		if err != nil {
			return nil, err
		}
		m[keyScore] = f
	}

	if v, ok := m[keyCategories]; ok {
		scores, err := n.categories(v)
		if err != nil {
			return nil, err
		}
		m[keyCategories] = scores
	}

	for _, k := range []string{keyStrengths, keyImprovements} {
		if v, ok := m[k]; ok {
			m[k] = n.list(k, v, false)
		}
	}
	if v, ok := m[keyDetailed]; ok {
		m[keyDetailed] = n.list(keyDetailed, v, true)
	}

	for _, k := range []string{keyTitle, keyGrade, keySummary, keyObservations} {
		switch v := m[k].(type) {
		case string:
			m[k] = strings.TrimSpace(v)
		case nil:
			delete(m, k)
		}
	}

	for k := range m {
		if _, ok := n.allowed[k]; !ok {
			delete(m, k)
			n.dropped = append(n.dropped, k+"(unknown)")
		}
	}

	if len(n.dropped) > 0 {
		slices.Sort(n.dropped)
		logger.Warn("llm.parse.normalize_dropped", "dropped", n.dropped)
	}
	if len(n.clamped) > 0 {
		logger.Warn("llm.parse.score_clamped", "fields", n.clamped)
	}
	return n.clamped, nil
}

// score coerces v to a number in [0,100]. Out-of-range numbers are clamped; values that are
// not numbers at all are rejected.
func (n *normalizer) score(field string, v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		s := reScoreSuffix.ReplaceAllString(strings.TrimSpace(t), "")
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, &ParseError{Kind: ParseOutOfRange, Field: field, Err: fmt.Errorf("score %q is not a number", t)}
		}
		f = parsed
	default:
		return 0, &ParseError{Kind: ParseOutOfRange, Field: field, Err: fmt.Errorf("score has type %T, want number", v)}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ParseError{Kind: ParseOutOfRange, Field: field, Err: fmt.Errorf("score %v is not finite", f)}
	}
	if f < 0 || f > 100 {
		n.clamped = append(n.clamped, fmt.Sprintf("%s=%v", field, f))
		f = math.Max(0, math.Min(100, f))
	}
	return f, nil
}

func (n *normalizer) categories(v any) (map[string]any, error) {
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, &ParseError{Kind: ParseMalformed, Field: keyCategories, Err: fmt.Errorf("category_scores has type %T, want object", v)}
	}
	out := make(map[string]any, len(raw))
	// iterate in sorted order so clamp reports are stable
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		cat, ok := constants.Canonicalize(k)
		if !ok {
			n.dropped = append(n.dropped, keyCategories+"."+k)
			continue
		}
		if _, dup := out[string(cat)]; dup {
			continue
		}
		f, err := n.score(keyCategories+"."+string(cat), raw[k])
		if err != nil {
			return nil, err
		}
		out[string(cat)] = f
	}
	for _, c := range constants.AsStringSlice() {
		if _, ok := out[c]; !ok {
			field := keyCategories + "." + c
			return nil, &ParseError{Kind: ParseMissingField, Field: field, Err: fmt.Errorf("required field %q is absent", field)}
		}
	}
	return out, nil
}

// list normalizes a value that should be a list of statements.
func (n *normalizer) list(field string, v any, splitParagraphs bool) []any {
	var items []string
	switch t := v.(type) {
	case string:
		if splitParagraphs {
			items = reParagraphs.Split(t, -1)
		} else {
			items = []string{t}
		}
	case []any:
		for _, it := range t {
			switch s := it.(type) {
			case string:
				items = append(items, s)
			case nil:
			default:
				items = append(items, fmt.Sprint(s))
				n.dropped = append(n.dropped, field+"(coerced)")
			}
		}
	case nil:
	default:
		items = []string{fmt.Sprint(t)}
		n.dropped = append(n.dropped, field+"(coerced)")
	}
	out := make([]any, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
