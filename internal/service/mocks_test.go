package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/symptom-insight-server/internal/cache"
	"github.com/symptom-insight-server/pkg/external"
)

// MockDiagnosisAPI is a mock implementation of the DiagnosisAPI interface
type MockDiagnosisAPI struct {
	mock.Mock
}

func (m *MockDiagnosisAPI) Endpoint() string {
	return "https://diagnosis.test/api/diagnosis"
}

func (m *MockDiagnosisAPI) Diagnose(ctx context.Context, symptoms []string) (json.RawMessage, error) {
	args := m.Called(ctx, symptoms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return json.RawMessage(args.String(0)), args.Error(1)
}

// MockDrugLabelAPI is a mock implementation of the DrugLabelAPI interface
type MockDrugLabelAPI struct {
	mock.Mock
}

func (m *MockDrugLabelAPI) Endpoint() string {
	return "https://druglabel.test/drug/label.json"
}

func (m *MockDrugLabelAPI) SearchByIndication(ctx context.Context, condition string, limit int) (*external.DrugLabelResponse, error) {
	args := m.Called(ctx, condition, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*external.DrugLabelResponse), args.Error(1)
}

// MockTextGenerator is a mock implementation of the TextGenerator interface
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Endpoint() string {
	return "https://text.test/generate"
}

func (m *MockTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockImageGenerator is a mock implementation of the ImageGenerator interface
type MockImageGenerator struct {
	mock.Mock
}

func (m *MockImageGenerator) GenerateImage(ctx context.Context, prompt string) (*external.InlineData, bool, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*external.InlineData), args.Bool(1), args.Error(2)
}

// stubClassifier returns a fixed label and records the vector it was given.
type stubClassifier struct {
	label int
	err   error
	calls int
	got   []float64
}

func (s *stubClassifier) Predict(features []float64) (int, error) {
	s.calls++
	s.got = append([]float64(nil), features...)
	return s.label, s.err
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress logs during testing
	return logger
}

func createTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	store, err := cache.NewFileStore(t.TempDir())
	require.NoError(t, err)

	c, err := cache.New(store, cache.Options{
		Namespace: "test",
		TTL:       24 * time.Hour,
		Logger:    testLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}
