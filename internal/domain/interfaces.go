package domain

import (
	"context"
)

// HealthDataResolver composes normalization, diagnosis, medications and
// insights into one record
type HealthDataResolver interface {
	Resolve(ctx context.Context, rawSymptoms []string) CombinedHealthRecord
}

// DiagnosisSource resolves a condition from a normalized symptom set
type DiagnosisSource interface {
	PredictLocal(symptoms []string) (string, bool)
	QueryRemote(ctx context.Context, symptoms []string) DiagnosisResult
}

// MedicationSource resolves drug label information for a condition
type MedicationSource interface {
	Resolve(ctx context.Context, condition string) MedicationBundle
}

// InsightProvider explains a condition in plain language
type InsightProvider interface {
	Generate(ctx context.Context, symptoms []string, condition string) InsightBundle
}

// AssetSource resolves illustrative images for symptoms
type AssetSource interface {
	Resolve(ctx context.Context, symptomKey string, size ImageSize) SymptomAsset
	ResolveMany(ctx context.Context, symptomKeys []string, count int) []SymptomAsset
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetExternalAPIConfig() *ExternalAPIConfig
	GetCacheConfig() *CacheConfig
	Reload() error
	Validate() error
	IsProduction() bool
	IsDevelopment() bool
}
