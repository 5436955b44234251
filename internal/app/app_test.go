package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symptom-insight-server/internal/domain"
	"github.com/symptom-insight-server/internal/service"
	"github.com/symptom-insight-server/internal/symptom"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func writeModel(t *testing.T, model service.LinearModel) string {
	t.Helper()
	data, err := json.Marshal(model)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func smallModel() service.LinearModel {
	return service.LinearModel{
		Vocabulary: []string{"itching", "skin_rash", "high_fever"},
		Labels:     []string{"Fungal infection", "Malaria"},
		Weights: [][]float64{
			{1, 1, 0},
			{0, 0, 1},
		},
		Bias: []float64{0, 0},
	}
}

func testConfig(t *testing.T) *domain.Config {
	return &domain.Config{
		Cache: domain.CacheConfig{
			Backend:  "file",
			Dir:      t.TempDir(),
			TTL:      time.Hour,
			ImageTTL: time.Hour,
		},
		ExternalAPI: domain.ExternalAPIConfig{
			Diagnosis: domain.ServiceConfig{Endpoint: "http://127.0.0.1:1/diagnose", Timeout: time.Second},
			DrugLabel: domain.ServiceConfig{Endpoint: "http://127.0.0.1:1/label.json", Timeout: time.Second},
		},
		Assets: domain.AssetConfig{DefaultSize: 64},
	}
}

func TestLoadClassifier(t *testing.T) {
	logger := testLogger()

	t.Run("no model path disables the local path", func(t *testing.T) {
		vocabulary, labels, classifier, err := LoadClassifier(domain.ClassifierConfig{}, logger)
		require.NoError(t, err)
		assert.Nil(t, classifier)
		assert.Equal(t, symptom.DefaultVocabulary().Len(), vocabulary.Len())
		assert.Equal(t, symptom.DefaultLabels(), labels)
	})

	t.Run("model tables replace the defaults", func(t *testing.T) {
		path := writeModel(t, smallModel())

		vocabulary, labels, classifier, err := LoadClassifier(domain.ClassifierConfig{ModelPath: path}, logger)
		require.NoError(t, err)
		require.NotNil(t, classifier)
		assert.Equal(t, 3, vocabulary.Len())
		assert.Equal(t, []string{"Fungal infection", "Malaria"}, labels)
	})

	t.Run("feature count must match the vocabulary", func(t *testing.T) {
		model := smallModel()
		model.Vocabulary = nil
		path := writeModel(t, model)

		_, _, _, err := LoadClassifier(domain.ClassifierConfig{ModelPath: path}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expects 3 features")
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, _, err := LoadClassifier(domain.ClassifierConfig{ModelPath: filepath.Join(t.TempDir(), "absent.json")}, logger)
		assert.Error(t, err)
	})
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("requires configuration", func(t *testing.T) {
		_, err := New(ctx, nil, testLogger())
		assert.Error(t, err)
	})

	t.Run("rejects unknown cache backend", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Cache.Backend = "memcached"

		_, err := New(ctx, cfg, testLogger())
		assert.Error(t, err)
	})

	t.Run("registers breakers for configured services", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.ExternalAPI.TextGeneration = domain.ServiceConfig{APIKey: "key"}

		a, err := New(ctx, cfg, testLogger())
		require.NoError(t, err)
		defer a.Close()

		var services []string
		for _, h := range a.Breakers.Health() {
			services = append(services, h.Service)
			assert.True(t, h.Healthy)
		}
		assert.ElementsMatch(t, []string{"diagnosis", "drug_label", "text_generation"}, services)
	})
}

func TestHealthDataEndToEnd(t *testing.T) {
	ctx := context.Background()

	var labelCalls atomic.Int32
	labels := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		labelCalls.Add(1)
		assert.Equal(t, "indications_and_usage:Fungal infection", r.URL.Query().Get("search"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{
			"openfda":{"brand_name":["Lamisil"],"generic_name":["terbinafine"],"manufacturer_name":["Novartis"]},
			"indications_and_usage":["Treats fungal infections"],
			"warnings":["Liver injury"],
			"adverse_reactions":["Headache"]
		}]}`))
	}))
	defer labels.Close()

	diagnosis := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("remote diagnosis should not be called when the local model answers")
	}))
	defer diagnosis.Close()

	cfg := testConfig(t)
	cfg.Classifier.ModelPath = writeModel(t, smallModel())
	cfg.ExternalAPI.Diagnosis.Endpoint = diagnosis.URL
	cfg.ExternalAPI.DrugLabel.Endpoint = labels.URL

	a, err := New(ctx, cfg, testLogger())
	require.NoError(t, err)
	defer a.Close()

	record := a.HealthData.Resolve(ctx, []string{"itching", "skin_rash"})

	assert.Equal(t, "Fungal infection", record.Condition)
	assert.Equal(t, "local_model", record.IssueDetails["source"])
	require.Len(t, record.Medications, 1)
	assert.Equal(t, "Lamisil", record.Medications[0].Name)
	assert.Equal(t, []string{"Liver injury"}, record.Warnings)
	assert.Equal(t, domain.InsightFallback, record.Insights.Source)
	assert.Empty(t, record.Error)

	a.HealthData.Resolve(ctx, []string{"Itching", "skin rash"})
	assert.Equal(t, int32(1), labelCalls.Load(), "second lookup should be served from cache")

	require.NoError(t, a.Cache.ClearAll(ctx))
	a.HealthData.Resolve(ctx, []string{"itching", "skin_rash"})
	assert.Equal(t, int32(2), labelCalls.Load())
}

func TestStartSweeper(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled by zero interval", func(t *testing.T) {
		a, err := New(ctx, testConfig(t), testLogger())
		require.NoError(t, err)
		defer a.Close()

		require.NoError(t, a.StartSweeper())
		assert.Nil(t, a.sweeper)
	})

	t.Run("scheduled for purgeable stores", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Cache.SweepInterval = time.Hour

		a, err := New(ctx, cfg, testLogger())
		require.NoError(t, err)

		require.NoError(t, a.StartSweeper())
		assert.NotNil(t, a.sweeper)
		assert.NoError(t, a.Close())
	})
}

func TestDependencies(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), testLogger())
	require.NoError(t, err)
	defer a.Close()

	deps := a.APIDependencies()
	assert.NotNil(t, deps.HealthData)
	assert.NotNil(t, deps.Images)
	assert.NotNil(t, deps.Services)
	assert.Len(t, deps.Related.Related("fever", 3), 3)

	tools := a.MCPDependencies()
	assert.NotNil(t, tools.Diagnosis)
	assert.NotNil(t, tools.Cache)
}
