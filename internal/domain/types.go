// Package domain contains the core entities shared by the symptom resolution
// pipelines: diagnosis candidates, medication bundles, insight bundles, the
// combined health record returned to callers and the symptom asset produced by
// the image pipeline.
package domain

import (
	"encoding/json"
)

// PlaceholderText is substituted for any missing insight field.
const PlaceholderText = "Information not available"

// ResolutionTier records which tier of the asset cascade produced an image.
type ResolutionTier string

const (
	TierStatic     ResolutionTier = "static"
	TierCached     ResolutionTier = "cached"
	TierGenerated  ResolutionTier = "generated"
	TierProcedural ResolutionTier = "procedural"
)

// InsightSource records whether an insight bundle came from the generative
// service or from the rule-based fallback table.
type InsightSource string

const (
	InsightGenerated InsightSource = "generated"
	InsightFallback  InsightSource = "fallback"
)

// DiagnosisCandidate is a single condition proposed by a diagnosis source.
// Metadata carries whatever ranking or confidence fields the source returned.
type DiagnosisCandidate struct {
	Condition string         `json:"condition"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// DiagnosisResult is the outcome of a remote diagnosis query. Failures are
// reported through Error with an empty candidate list.
type DiagnosisResult struct {
	Candidates  []DiagnosisCandidate `json:"diagnosis"`
	Error       string               `json:"error,omitempty"`
	Message     string               `json:"message,omitempty"`
	RawResponse json.RawMessage      `json:"raw_response,omitempty"`
}

// FirstCondition returns the first candidate carrying a non-empty condition
// name. Source order wins over any score.
func (r DiagnosisResult) FirstCondition() (DiagnosisCandidate, bool) {
	for _, c := range r.Candidates {
		if c.Condition != "" {
			return c, true
		}
	}
	return DiagnosisCandidate{}, false
}

// Medication is one drug label entry extracted for a condition.
type Medication struct {
	Name         string `json:"name"`
	GenericName  string `json:"generic_name"`
	Manufacturer string `json:"manufacturer"`
	Indications  string `json:"indications"`
}

// MedicationBundle groups medications with their deduplicated warnings and
// side effects. Medications keep source order and are not deduplicated.
type MedicationBundle struct {
	Medications []Medication `json:"medications"`
	Warnings    []string     `json:"warnings"`
	SideEffects []string     `json:"side_effects"`
	Error       string       `json:"error,omitempty"`
}

// EmptyMedicationBundle returns a bundle with non-nil empty lists.
func EmptyMedicationBundle() MedicationBundle {
	return MedicationBundle{
		Medications: []Medication{},
		Warnings:    []string{},
		SideEffects: []string{},
	}
}

// InsightBundle is the explanatory text generated for a condition. Every list
// field is guaranteed non-empty once the bundle leaves the generator.
type InsightBundle struct {
	Disease     string        `json:"disease"`
	Description string        `json:"description"`
	Precautions []string      `json:"precautions"`
	Lifestyle   []string      `json:"lifestyle"`
	Treatments  []string      `json:"treatments"`
	Workouts    []string      `json:"workouts"`
	Diet        []string      `json:"diet"`
	Source      InsightSource `json:"source"`
}

// CombinedHealthRecord is the fully populated response of the combined
// resolver. No field is ever omitted; missing data is represented by empty
// lists or placeholders.
type CombinedHealthRecord struct {
	Symptoms     []string             `json:"symptoms"`
	Diagnosis    []DiagnosisCandidate `json:"diagnosis"`
	Condition    string               `json:"condition"`
	IssueDetails map[string]any       `json:"issue_details"`
	Medications  []Medication         `json:"medications"`
	Warnings     []string             `json:"warnings"`
	SideEffects  []string             `json:"side_effects"`
	Insights     InsightBundle        `json:"insights"`
	Error        string               `json:"error,omitempty"`
}

// SymptomAsset is an illustrative image resolved for a symptom.
type SymptomAsset struct {
	SymptomKey     string         `json:"symptom_key"`
	Symptom        string         `json:"symptom"`
	Image          string         `json:"image"`
	Description    string         `json:"description"`
	ResolutionTier ResolutionTier `json:"resolution_tier"`
}

// ImageSize is the requested pixel size of an asset.
type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}
