package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/symptom-insight-server/internal/cache"
	"github.com/symptom-insight-server/internal/domain"
	"github.com/symptom-insight-server/internal/metrics"
	"github.com/symptom-insight-server/pkg/external"
)

const insightPrompt = `Based on these symptoms: %s, and the likely condition "%s", generate relevant health insights.
Provide structured content across the following domains:
1. Disease Name
2. Description
3. Precautions to take (provide as a list of 4 items)
4. Recommended Medications (non-prescriptive, provide as a list)
5. Suggested Workouts or Exercises (provide as a list)
6. Appropriate Diet Plans (provide as a list)

Ensure the content is medically reasonable, concise, and user-friendly.
Avoid repeating the input and do not invent critical medical details; prioritize accuracy and practical advice.
Format your response as a JSON object with the following keys: disease, description, precautions, medications, workouts, diet.

IMPORTANT: Your response MUST be a valid JSON object with these exact keys. Do not include any text outside the JSON object.`

// InsightGenerator explains a condition using the text model and falls back
// to a fixed rule table when the model is unavailable or unparseable.
type InsightGenerator struct {
	client external.TextGenerator
	cache  *cache.Cache
	logger *logrus.Logger
}

// NewInsightGenerator creates a generator. A nil client always falls back.
func NewInsightGenerator(client external.TextGenerator, c *cache.Cache, logger *logrus.Logger) *InsightGenerator {
	return &InsightGenerator{client: client, cache: c, logger: logger}
}

// BuildInsightPrompt renders the prompt sent to the text model.
func BuildInsightPrompt(symptoms []string, condition string) string {
	if condition == "" {
		condition = "unknown"
	}
	return fmt.Sprintf(insightPrompt, strings.Join(symptoms, ", "), condition)
}

// Generate returns an insight bundle for the condition. It never fails.
func (g *InsightGenerator) Generate(ctx context.Context, symptoms []string, condition string) domain.InsightBundle {
	if g.client == nil {
		return g.Fallback(symptoms, "text generation not configured")
	}

	key := cache.ComputeKey(g.client.Endpoint(), map[string]any{
		"condition": condition,
		"symptoms":  strings.Join(symptoms, ","),
	})

	bundle, hit, err := cache.Resolve(ctx, g.cache, key, func(ctx context.Context) (domain.InsightBundle, bool) {
		text, err := g.client.GenerateText(ctx, BuildInsightPrompt(symptoms, condition))
		if err != nil {
			return g.Fallback(symptoms, external.Describe(err)), false
		}
		sections, err := parseSections(text)
		if err != nil {
			return g.Fallback(symptoms, err.Error()), false
		}
		return sections.Bundle(domain.InsightGenerated), true
	})
	if err != nil {
		return g.Fallback(symptoms, err.Error())
	}

	if bundle.Source == domain.InsightGenerated {
		metrics.InsightSources.WithLabelValues(string(domain.InsightGenerated)).Inc()
	}
	g.logger.WithFields(logrus.Fields{
		"condition": condition,
		"source":    bundle.Source,
		"cache_hit": hit,
	}).Debug("Insights resolved")
	return bundle
}

// Fallback builds the offline bundle for symptoms.
func (g *InsightGenerator) Fallback(symptoms []string, reason string) domain.InsightBundle {
	sections, rule := FallbackSections(symptoms)
	metrics.InsightSources.WithLabelValues(string(domain.InsightFallback)).Inc()
	g.logger.WithFields(logrus.Fields{
		"rule":   rule,
		"reason": reason,
	}).Info("Using fallback insights")
	return sections.Bundle(domain.InsightFallback)
}
