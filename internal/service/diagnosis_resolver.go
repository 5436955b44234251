package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/symptom-insight-server/internal/cache"
	"github.com/symptom-insight-server/internal/domain"
	"github.com/symptom-insight-server/internal/symptom"
	"github.com/symptom-insight-server/pkg/external"
)

const (
	msgNoValidSymptoms   = "No valid symptoms provided"
	msgUnexpectedPayload = "Received unexpected response format from API"
)

// DiagnosisResolver proposes a condition for a symptom set, first from the
// local classifier and otherwise from the remote diagnosis service.
type DiagnosisResolver struct {
	vocabulary *symptom.Vocabulary
	labels     []string
	classifier Classifier
	client     external.DiagnosisAPI
	cache      *cache.Cache
	logger     *logrus.Logger
}

// NewDiagnosisResolver creates a resolver. A nil classifier disables the
// local path.
func NewDiagnosisResolver(
	vocabulary *symptom.Vocabulary,
	labels []string,
	classifier Classifier,
	client external.DiagnosisAPI,
	c *cache.Cache,
	logger *logrus.Logger,
) *DiagnosisResolver {
	return &DiagnosisResolver{
		vocabulary: vocabulary,
		labels:     labels,
		classifier: classifier,
		client:     client,
		cache:      c,
		logger:     logger,
	}
}

// PredictLocal scores the symptoms with the local classifier. It declines
// unless every symptom is in the vocabulary; it never scores a partial set.
func (r *DiagnosisResolver) PredictLocal(symptoms []string) (string, bool) {
	if r.classifier == nil || len(symptoms) == 0 {
		return "", false
	}

	features := make([]float64, r.vocabulary.Len())
	for _, s := range symptoms {
		idx, ok := r.vocabulary.Index(s)
		if !ok {
			r.logger.WithField("symptom", s).Debug("Symptom outside vocabulary, local prediction declined")
			return "", false
		}
		features[idx] = 1
	}

	label, err := r.classifier.Predict(features)
	if err != nil {
		r.logger.WithError(err).Warn("Local classifier failed")
		return "", false
	}
	if label < 0 || label >= len(r.labels) {
		r.logger.WithField("label", label).Warn("Classifier label outside label table")
		return "", false
	}

	return r.labels[label], true
}

// QueryRemote asks the remote service, consulting the cache first. Failures
// are reported in the result's Error field with no candidates.
func (r *DiagnosisResolver) QueryRemote(ctx context.Context, symptoms []string) domain.DiagnosisResult {
	normalized := symptom.Normalize(symptoms)
	if len(normalized) == 0 {
		return domain.DiagnosisResult{Candidates: []domain.DiagnosisCandidate{}, Error: msgNoValidSymptoms}
	}

	joined := strings.Join(normalized, ",")
	key := cache.ComputeKey(r.client.Endpoint(), map[string]any{"symptoms": joined})

	result, hit, err := cache.Resolve(ctx, r.cache, key, func(ctx context.Context) (domain.DiagnosisResult, bool) {
		raw, err := r.client.Diagnose(ctx, normalized)
		if err != nil {
			return domain.DiagnosisResult{
				Candidates: []domain.DiagnosisCandidate{},
				Error:      external.Describe(err),
			}, false
		}
		return parseDiagnosis(raw), true
	})
	if err != nil {
		return domain.DiagnosisResult{
			Candidates: []domain.DiagnosisCandidate{},
			Error:      external.Describe(domain.NewNetworkError(external.ServiceDiagnosis, err)),
		}
	}

	r.logger.WithFields(logrus.Fields{
		"symptoms":   joined,
		"cache_hit":  hit,
		"candidates": len(result.Candidates),
	}).Debug("Remote diagnosis resolved")

	if result.Candidates == nil {
		result.Candidates = []domain.DiagnosisCandidate{}
	}
	return result
}

// parseDiagnosis reads the candidate list under "diagnosis". Any other shape
// is kept verbatim under RawResponse with no candidates.
func parseDiagnosis(raw json.RawMessage) domain.DiagnosisResult {
	unexpected := domain.DiagnosisResult{
		Candidates:  []domain.DiagnosisCandidate{},
		Message:     msgUnexpectedPayload,
		RawResponse: raw,
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return unexpected
	}
	var items []json.RawMessage
	if err := json.Unmarshal(envelope["diagnosis"], &items); err != nil || items == nil {
		return unexpected
	}

	candidates := make([]domain.DiagnosisCandidate, 0, len(items))
	for _, item := range items {
		if candidate, ok := parseCandidate(item); ok {
			candidates = append(candidates, candidate)
		}
	}
	return domain.DiagnosisResult{Candidates: candidates}
}

func parseCandidate(item json.RawMessage) (domain.DiagnosisCandidate, bool) {
	var name string
	if err := json.Unmarshal(item, &name); err == nil {
		return domain.DiagnosisCandidate{Condition: name}, true
	}

	var fields map[string]any
	if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
		return domain.DiagnosisCandidate{}, false
	}

	condition := stringField(fields, "condition")
	if condition == "" {
		condition = stringField(fields, "name")
	}
	return domain.DiagnosisCandidate{Condition: condition, Metadata: fields}, true
}

func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
