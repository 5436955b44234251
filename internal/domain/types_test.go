package domain

import (
	"encoding/json"
	"testing"
)

func TestResolutionTierConstants(t *testing.T) {
	tests := []struct {
		name     string
		value    ResolutionTier
		expected string
	}{
		{"Static", TierStatic, "static"},
		{"Cached", TierCached, "cached"},
		{"Generated", TierGenerated, "generated"},
		{"Procedural", TierProcedural, "procedural"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.value) != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, string(tt.value))
			}
		})
	}
}

func TestDiagnosisResult_FirstCondition(t *testing.T) {
	tests := []struct {
		name      string
		result    DiagnosisResult
		expected  string
		expectHit bool
	}{
		{
			name:      "Empty candidates",
			result:    DiagnosisResult{},
			expectHit: false,
		},
		{
			name: "Skips blank condition",
			result: DiagnosisResult{Candidates: []DiagnosisCandidate{
				{Condition: ""},
				{Condition: "Migraine", Metadata: map[string]any{"score": 0.2}},
				{Condition: "Common Cold", Metadata: map[string]any{"score": 0.9}},
			}},
			expected:  "Migraine",
			expectHit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate, ok := tt.result.FirstCondition()
			if ok != tt.expectHit {
				t.Fatalf("Expected hit %v, got %v", tt.expectHit, ok)
			}
			if candidate.Condition != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, candidate.Condition)
			}
		})
	}
}

func TestCombinedHealthRecord_JSONShape(t *testing.T) {
	record := CombinedHealthRecord{
		Symptoms:     []string{},
		Diagnosis:    []DiagnosisCandidate{},
		IssueDetails: map[string]any{},
		Medications:  []Medication{},
		Warnings:     []string{},
		SideEffects:  []string{},
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{"symptoms", "diagnosis", "condition", "issue_details", "medications", "warnings", "side_effects", "insights"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("Expected field %q to be present", key)
		}
	}
	if _, ok := fields["error"]; ok {
		t.Error("Expected error to be omitted when unset")
	}
}

func TestEmptyMedicationBundle(t *testing.T) {
	bundle := EmptyMedicationBundle()
	if bundle.Medications == nil || bundle.Warnings == nil || bundle.SideEffects == nil {
		t.Error("Expected non-nil empty lists")
	}
}
