package service

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"

	"github.com/symptom-insight-server/internal/domain"
	"github.com/symptom-insight-server/internal/symptom"
)

const msgNoSymptoms = "No symptoms provided"

// CombinedResolver assembles a full health record from the diagnosis,
// medication and insight stages. A failing stage degrades the record but
// never the call.
type CombinedResolver struct {
	diagnosis   domain.DiagnosisSource
	medications domain.MedicationSource
	insights    *InsightGenerator
	logger      *logrus.Logger
}

// NewCombinedResolver creates the orchestrator.
func NewCombinedResolver(
	diagnosis domain.DiagnosisSource,
	medications domain.MedicationSource,
	insights *InsightGenerator,
	logger *logrus.Logger,
) *CombinedResolver {
	return &CombinedResolver{
		diagnosis:   diagnosis,
		medications: medications,
		insights:    insights,
		logger:      logger,
	}
}

// Resolve normalizes the symptoms, picks a condition (local classifier first,
// then the remote service) and fills in medications and insights.
func (r *CombinedResolver) Resolve(ctx context.Context, rawSymptoms []string) domain.CombinedHealthRecord {
	symptoms := symptom.Normalize(rawSymptoms)
	record := domain.CombinedHealthRecord{
		Symptoms:     symptoms,
		Diagnosis:    []domain.DiagnosisCandidate{},
		IssueDetails: map[string]any{},
		Medications:  []domain.Medication{},
		Warnings:     []string{},
		SideEffects:  []string{},
	}

	if len(symptoms) == 0 {
		record.Error = msgNoSymptoms
		record.Insights = r.insights.Fallback(symptoms, msgNoSymptoms)
		return record
	}

	candidate, found := r.chooseCondition(ctx, symptoms, &record)
	if !found {
		record.Insights = r.insights.Fallback(symptoms, "no condition identified")
		return record
	}

	record.Condition = candidate.Condition
	for k, v := range candidate.Metadata {
		record.IssueDetails[k] = v
	}

	var (
		wg      conc.WaitGroup
		bundle  domain.MedicationBundle
		insight domain.InsightBundle
	)
	wg.Go(func() { bundle = r.medications.Resolve(ctx, candidate.Condition) })
	wg.Go(func() { insight = r.insights.Generate(ctx, symptoms, candidate.Condition) })
	wg.Wait()

	if bundle.Medications != nil {
		record.Medications = bundle.Medications
	}
	if bundle.Warnings != nil {
		record.Warnings = bundle.Warnings
	}
	if bundle.SideEffects != nil {
		record.SideEffects = bundle.SideEffects
	}
	record.Insights = insight

	r.logger.WithFields(logrus.Fields{
		"symptoms":    len(symptoms),
		"condition":   record.Condition,
		"medications": len(record.Medications),
		"insights":    insight.Source,
	}).Info("Health record resolved")

	return record
}

func (r *CombinedResolver) chooseCondition(ctx context.Context, symptoms []string, record *domain.CombinedHealthRecord) (domain.DiagnosisCandidate, bool) {
	if condition, ok := r.diagnosis.PredictLocal(symptoms); ok {
		candidate := domain.DiagnosisCandidate{
			Condition: condition,
			Metadata:  map[string]any{"source": "local_model"},
		}
		record.Diagnosis = []domain.DiagnosisCandidate{candidate}
		return candidate, true
	}

	result := r.diagnosis.QueryRemote(ctx, symptoms)
	if result.Candidates != nil {
		record.Diagnosis = result.Candidates
	}
	if result.Error != "" {
		record.Error = result.Error
	}
	return result.FirstCondition()
}
