package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/symptom-insight-server/internal/domain"
	"github.com/symptom-insight-server/internal/symptom"
	"github.com/symptom-insight-server/pkg/external"
)

func createTestDiagnosisResolver(t *testing.T, classifier Classifier, api external.DiagnosisAPI) *DiagnosisResolver {
	t.Helper()
	return NewDiagnosisResolver(
		symptom.DefaultVocabulary(),
		symptom.DefaultLabels(),
		classifier,
		api,
		createTestCache(t),
		testLogger(),
	)
}

func TestDiagnosisResolver_PredictLocal(t *testing.T) {
	t.Run("Known_Symptoms", func(t *testing.T) {
		stub := &stubClassifier{label: 15}
		resolver := createTestDiagnosisResolver(t, stub, new(MockDiagnosisAPI))

		condition, ok := resolver.PredictLocal([]string{"itching", "skin rash"})
		require.True(t, ok)
		assert.Equal(t, symptom.DefaultLabels()[15], condition)

		require.Len(t, stub.got, 132)
		vocab := symptom.DefaultVocabulary()
		itching, _ := vocab.Index("itching")
		rash, _ := vocab.Index("skin_rash")
		assert.Equal(t, 1.0, stub.got[itching])
		assert.Equal(t, 1.0, stub.got[rash])

		var ones int
		for _, v := range stub.got {
			if v == 1 {
				ones++
			}
		}
		assert.Equal(t, 2, ones)
	})

	t.Run("Deterministic", func(t *testing.T) {
		stub := &stubClassifier{label: 3}
		resolver := createTestDiagnosisResolver(t, stub, new(MockDiagnosisAPI))

		first, ok := resolver.PredictLocal([]string{"cough", "high fever"})
		require.True(t, ok)
		second, ok := resolver.PredictLocal([]string{"cough", "high fever"})
		require.True(t, ok)
		assert.Equal(t, first, second)
	})

	t.Run("Declines", func(t *testing.T) {
		tests := []struct {
			name       string
			classifier Classifier
			symptoms   []string
		}{
			{name: "out of vocabulary", classifier: &stubClassifier{label: 1}, symptoms: []string{"itching", "purple elbows"}},
			{name: "empty set", classifier: &stubClassifier{label: 1}, symptoms: []string{}},
			{name: "no classifier", classifier: nil, symptoms: []string{"itching"}},
			{name: "classifier error", classifier: &stubClassifier{err: errors.New("boom")}, symptoms: []string{"itching"}},
			{name: "label out of range", classifier: &stubClassifier{label: 41}, symptoms: []string{"itching"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resolver := createTestDiagnosisResolver(t, tt.classifier, new(MockDiagnosisAPI))
				condition, ok := resolver.PredictLocal(tt.symptoms)
				assert.False(t, ok)
				assert.Empty(t, condition)
			})
		}
	})

	t.Run("Never_Scores_Partial_Sets", func(t *testing.T) {
		stub := &stubClassifier{label: 1}
		resolver := createTestDiagnosisResolver(t, stub, new(MockDiagnosisAPI))

		_, ok := resolver.PredictLocal([]string{"itching", "purple elbows"})
		assert.False(t, ok)
		assert.Zero(t, stub.calls)
	})
}

func TestDiagnosisResolver_QueryRemote(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful_Query_Is_Cached", func(t *testing.T) {
		api := new(MockDiagnosisAPI)
		api.On("Diagnose", mock.Anything, []string{"fever", "cough"}).
			Return(`{"diagnosis":[{"condition":"","accuracy":10},{"condition":"Influenza","accuracy":80}]}`, nil)

		resolver := createTestDiagnosisResolver(t, nil, api)

		result := resolver.QueryRemote(ctx, []string{"Fever", "cough", "fever"})
		assert.Empty(t, result.Error)
		require.Len(t, result.Candidates, 2)
		assert.Equal(t, "Influenza", result.Candidates[1].Condition)
		assert.Equal(t, float64(80), result.Candidates[1].Metadata["accuracy"])

		first, ok := result.FirstCondition()
		require.True(t, ok)
		assert.Equal(t, "Influenza", first.Condition)

		again := resolver.QueryRemote(ctx, []string{"fever", "cough"})
		assert.Equal(t, result.Candidates, again.Candidates)
		api.AssertNumberOfCalls(t, "Diagnose", 1)
	})

	t.Run("Errors_Are_Reported_Not_Cached", func(t *testing.T) {
		api := new(MockDiagnosisAPI)
		api.On("Diagnose", mock.Anything, []string{"fever"}).
			Return(nil, domain.NewUpstreamError(external.ServiceDiagnosis, 503, ""))

		resolver := createTestDiagnosisResolver(t, nil, api)

		result := resolver.QueryRemote(ctx, []string{"fever"})
		assert.Equal(t, "API error: 503", result.Error)
		assert.NotNil(t, result.Candidates)
		assert.Empty(t, result.Candidates)

		resolver.QueryRemote(ctx, []string{"fever"})
		api.AssertNumberOfCalls(t, "Diagnose", 2)
	})

	t.Run("Invalid_JSON", func(t *testing.T) {
		api := new(MockDiagnosisAPI)
		api.On("Diagnose", mock.Anything, mock.Anything).
			Return(nil, domain.NewParseError(external.ServiceDiagnosis, errors.New("unexpected end")))

		resolver := createTestDiagnosisResolver(t, nil, api)
		result := resolver.QueryRemote(ctx, []string{"fever"})
		assert.Equal(t, "Invalid JSON response from API", result.Error)
	})

	t.Run("Unexpected_Shape_Is_Wrapped", func(t *testing.T) {
		api := new(MockDiagnosisAPI)
		api.On("Diagnose", mock.Anything, mock.Anything).Return(`{"status":"ok","results":"none"}`, nil)

		resolver := createTestDiagnosisResolver(t, nil, api)
		result := resolver.QueryRemote(ctx, []string{"fever"})

		assert.Empty(t, result.Error)
		assert.Empty(t, result.Candidates)
		assert.Equal(t, "Received unexpected response format from API", result.Message)
		assert.JSONEq(t, `{"status":"ok","results":"none"}`, string(result.RawResponse))
	})

	t.Run("No_Valid_Symptoms", func(t *testing.T) {
		api := new(MockDiagnosisAPI)
		resolver := createTestDiagnosisResolver(t, nil, api)

		result := resolver.QueryRemote(ctx, []string{" ", "_"})
		assert.Equal(t, "No valid symptoms provided", result.Error)
		assert.NotNil(t, result.Candidates)
		api.AssertNotCalled(t, "Diagnose", mock.Anything, mock.Anything)
	})
}

func TestParseDiagnosis(t *testing.T) {
	t.Run("String_And_Name_Items", func(t *testing.T) {
		result := parseDiagnosis([]byte(`{"diagnosis":["Common Cold",{"name":"Allergy","rank":2},42]}`))

		require.Len(t, result.Candidates, 2)
		assert.Equal(t, "Common Cold", result.Candidates[0].Condition)
		assert.Nil(t, result.Candidates[0].Metadata)
		assert.Equal(t, "Allergy", result.Candidates[1].Condition)
		assert.Equal(t, float64(2), result.Candidates[1].Metadata["rank"])
	})

	t.Run("Diagnosis_Not_A_List", func(t *testing.T) {
		result := parseDiagnosis([]byte(`{"diagnosis":"Influenza"}`))
		assert.Empty(t, result.Candidates)
		assert.NotEmpty(t, result.Message)
	})

	t.Run("Top_Level_Array", func(t *testing.T) {
		result := parseDiagnosis([]byte(`[1,2,3]`))
		assert.Empty(t, result.Candidates)
		assert.Equal(t, msgUnexpectedPayload, result.Message)
	})
}
