package service

import (
	"context"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/symptom-insight-server/internal/cache"
	"github.com/symptom-insight-server/internal/domain"
	"github.com/symptom-insight-server/pkg/external"
)

const (
	// MedicationLimit is the number of drug labels requested per condition.
	MedicationLimit = 5

	msgNoCondition    = "No condition provided"
	defaultUnknown    = "Unknown"
	defaultIndication = "No indication information available"
)

// MedicationResolver looks up drug labels whose indications mention a
// condition.
type MedicationResolver struct {
	client external.DrugLabelAPI
	cache  *cache.Cache
	logger *logrus.Logger
}

// NewMedicationResolver creates a resolver.
func NewMedicationResolver(client external.DrugLabelAPI, c *cache.Cache, logger *logrus.Logger) *MedicationResolver {
	return &MedicationResolver{client: client, cache: c, logger: logger}
}

// Resolve returns the medications, warnings and side effects for condition.
// Failures yield an empty bundle with Error set.
func (r *MedicationResolver) Resolve(ctx context.Context, condition string) domain.MedicationBundle {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		bundle := domain.EmptyMedicationBundle()
		bundle.Error = msgNoCondition
		return bundle
	}

	key := cache.ComputeKey(r.client.Endpoint(), map[string]any{
		"search": external.SearchQuery(condition),
		"limit":  MedicationLimit,
	})

	bundle, hit, err := cache.Resolve(ctx, r.cache, key, func(ctx context.Context) (domain.MedicationBundle, bool) {
		response, err := r.client.SearchByIndication(ctx, condition, MedicationLimit)
		if err != nil {
			bundle := domain.EmptyMedicationBundle()
			bundle.Error = external.Describe(err)
			return bundle, false
		}
		return extractMedications(response), true
	})
	if err != nil {
		bundle = domain.EmptyMedicationBundle()
		bundle.Error = external.Describe(domain.NewNetworkError(external.ServiceDrugLabel, err))
		return bundle
	}

	r.logger.WithFields(logrus.Fields{
		"condition":   condition,
		"cache_hit":   hit,
		"medications": len(bundle.Medications),
	}).Debug("Medications resolved")

	return withNonNilLists(bundle)
}

// extractMedications keeps labels carrying a brand name in source order and
// merges warnings and adverse reactions across all labels.
func extractMedications(response *external.DrugLabelResponse) domain.MedicationBundle {
	bundle := domain.EmptyMedicationBundle()
	if response == nil {
		return bundle
	}

	warnings := newStringSet()
	sideEffects := newStringSet()
	for _, label := range response.Results {
		if brand := first(label.OpenFDA.BrandName, ""); brand != "" {
			bundle.Medications = append(bundle.Medications, domain.Medication{
				Name:         brand,
				GenericName:  first(label.OpenFDA.GenericName, defaultUnknown),
				Manufacturer: first(label.OpenFDA.ManufacturerName, defaultUnknown),
				Indications:  first(label.IndicationsAndUsage, defaultIndication),
			})
		}
		warnings.addAll(label.Warnings)
		sideEffects.addAll(label.AdverseReactions)
	}

	bundle.Warnings = warnings.sorted()
	bundle.SideEffects = sideEffects.sorted()
	return bundle
}

func withNonNilLists(bundle domain.MedicationBundle) domain.MedicationBundle {
	if bundle.Medications == nil {
		bundle.Medications = []domain.Medication{}
	}
	if bundle.Warnings == nil {
		bundle.Warnings = []string{}
	}
	if bundle.SideEffects == nil {
		bundle.SideEffects = []string{}
	}
	return bundle
}

func first(values []string, fallback string) string {
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		return fallback
	}
	return values[0]
}

type stringSet map[string]struct{}

func newStringSet() stringSet {
	return make(stringSet)
}

func (s stringSet) addAll(values []string) {
	for _, v := range values {
		if v != "" {
			s[v] = struct{}{}
		}
	}
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
