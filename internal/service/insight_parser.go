package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/symptom-insight-server/internal/domain"
)

// Sections is the six-part answer requested from the text model.
type Sections struct {
	Disease     string   `json:"disease"`
	Description string   `json:"description"`
	Precautions []string `json:"precautions"`
	Medications []string `json:"medications"`
	Workouts    []string `json:"workouts"`
	Diet        []string `json:"diet"`
}

var errNoStructuredData = errors.New("no JSON object found in generated text")

// parseSections extracts the first JSON object it can find in text: the whole
// text, then a fenced code block, then the widest brace-delimited span.
func parseSections(text string) (Sections, error) {
	candidates := []string{strings.TrimSpace(text)}
	if block, ok := fencedBlock(text); ok {
		candidates = append(candidates, block)
	}
	if span, ok := braceSpan(text); ok {
		candidates = append(candidates, span)
	}

	for _, candidate := range candidates {
		var fields map[string]any
		if err := json.Unmarshal([]byte(candidate), &fields); err == nil && fields != nil {
			return normalizeSections(fields), nil
		}
	}
	return Sections{}, errNoStructuredData
}

// fencedBlock returns the body of the first ```json block, or of the first
// unlabeled ``` block when no labeled one exists.
func fencedBlock(text string) (string, bool) {
	for _, fence := range []string{"```json", "```"} {
		start := strings.Index(text, fence)
		if start < 0 {
			continue
		}
		body := text[start+len(fence):]
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		return strings.TrimSpace(body), true
	}
	return "", false
}

func braceSpan(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// normalizeSections coerces loosely typed model output into Sections. Every
// list ends up non-empty: a bare string becomes a one-element list and
// anything missing or unusable becomes the placeholder.
func normalizeSections(fields map[string]any) Sections {
	return Sections{
		Disease:     scalarField(fields["disease"]),
		Description: scalarField(fields["description"]),
		Precautions: listField(fields["precautions"]),
		Medications: listField(fields["medications"]),
		Workouts:    listField(fields["workouts"]),
		Diet:        listField(fields["diet"]),
	}
}

func scalarField(v any) string {
	switch value := v.(type) {
	case string:
		if s := strings.TrimSpace(value); s != "" {
			return s
		}
	case float64, bool:
		return fmt.Sprint(value)
	}
	return domain.PlaceholderText
}

func listField(v any) []string {
	switch value := v.(type) {
	case string:
		if s := strings.TrimSpace(value); s != "" {
			return []string{s}
		}
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			if s := itemString(item); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return []string{domain.PlaceholderText}
}

func itemString(item any) string {
	switch value := item.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	case map[string]any, []any:
		encoded, err := json.Marshal(value)
		if err != nil {
			return ""
		}
		return string(encoded)
	default:
		return fmt.Sprint(value)
	}
}

func (s Sections) clone() Sections {
	out := s
	out.Precautions = append([]string(nil), s.Precautions...)
	out.Medications = append([]string(nil), s.Medications...)
	out.Workouts = append([]string(nil), s.Workouts...)
	out.Diet = append([]string(nil), s.Diet...)
	return out
}

// Bundle maps the sections onto the caller-facing bundle. Treatments are the
// suggested medications; lifestyle advice is the diet followed by workouts.
func (s Sections) Bundle(source domain.InsightSource) domain.InsightBundle {
	c := s.clone()

	lifestyle := make([]string, 0, len(c.Diet)+len(c.Workouts))
	for _, item := range append(append([]string(nil), c.Diet...), c.Workouts...) {
		if item != domain.PlaceholderText {
			lifestyle = append(lifestyle, item)
		}
	}
	if len(lifestyle) == 0 {
		lifestyle = []string{domain.PlaceholderText}
	}

	return domain.InsightBundle{
		Disease:     orPlaceholder(c.Disease),
		Description: orPlaceholder(c.Description),
		Precautions: nonEmpty(c.Precautions),
		Lifestyle:   lifestyle,
		Treatments:  nonEmpty(c.Medications),
		Workouts:    nonEmpty(c.Workouts),
		Diet:        nonEmpty(c.Diet),
		Source:      source,
	}
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return domain.PlaceholderText
	}
	return s
}

func nonEmpty(list []string) []string {
	if len(list) == 0 {
		return []string{domain.PlaceholderText}
	}
	return list
}
