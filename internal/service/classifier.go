package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Classifier maps a one-hot symptom vector to an integer label.
type Classifier interface {
	Predict(features []float64) (int, error)
}

// LinearModel is the on-disk form of a trained linear classifier. Vocabulary
// and Labels are optional and override the built-in tables when present.
type LinearModel struct {
	Vocabulary []string    `json:"vocabulary,omitempty"`
	Labels     []string    `json:"labels,omitempty"`
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
}

// LoadLinearModel reads a model file.
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read classifier model: %w", err)
	}

	var model LinearModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("failed to parse classifier model: %w", err)
	}
	return &model, nil
}

// LinearClassifier scores W·x + b and predicts the highest-scoring label.
type LinearClassifier struct {
	weights *mat.Dense
	bias    *mat.VecDense
}

// NewLinearClassifier builds a classifier from one weight row per label.
func NewLinearClassifier(weights [][]float64, bias []float64) (*LinearClassifier, error) {
	if len(weights) == 0 || len(weights[0]) == 0 {
		return nil, errors.New("classifier weights are empty")
	}
	if len(bias) != len(weights) {
		return nil, fmt.Errorf("bias has %d entries, expected %d", len(bias), len(weights))
	}

	features := len(weights[0])
	flat := make([]float64, 0, len(weights)*features)
	for i, row := range weights {
		if len(row) != features {
			return nil, fmt.Errorf("weight row %d has %d features, expected %d", i, len(row), features)
		}
		flat = append(flat, row...)
	}

	return &LinearClassifier{
		weights: mat.NewDense(len(weights), features, flat),
		bias:    mat.NewVecDense(len(bias), append([]float64(nil), bias...)),
	}, nil
}

// NewLinearClassifierFromModel builds a classifier from a loaded model.
func NewLinearClassifierFromModel(model *LinearModel) (*LinearClassifier, error) {
	return NewLinearClassifier(model.Weights, model.Bias)
}

// Features is the expected input length.
func (c *LinearClassifier) Features() int {
	_, cols := c.weights.Dims()
	return cols
}

// Labels is the number of output labels.
func (c *LinearClassifier) Labels() int {
	rows, _ := c.weights.Dims()
	return rows
}

// Predict returns the argmax label. Ties go to the lowest label.
func (c *LinearClassifier) Predict(features []float64) (int, error) {
	if len(features) != c.Features() {
		return 0, fmt.Errorf("feature vector has %d entries, expected %d", len(features), c.Features())
	}

	x := mat.NewVecDense(len(features), features)
	var scores mat.VecDense
	scores.MulVec(c.weights, x)
	scores.AddVec(&scores, c.bias)

	best := 0
	for i := 1; i < scores.Len(); i++ {
		if scores.AtVec(i) > scores.AtVec(best) {
			best = i
		}
	}
	return best, nil
}
