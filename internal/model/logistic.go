package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/couchcryptid/rain-predict-service/internal/domain"
	"gonum.org/v1/gonum/floats"
)

// DefaultThreshold is the probability at or above which the positive class wins.
const DefaultThreshold = 0.5

// ErrShapeMismatch is returned when a vector does not match the model's width.
var ErrShapeMismatch = errors.New("feature vector shape mismatch")

// LogisticRegression is a fitted binary logistic model. Class 1 is "Rain".
type LogisticRegression struct {
	Coefficients []float64
	Intercept    float64
	Threshold    float64
}

// NewLogisticRegression copies the fitted parameters and rejects non-finite values.
func NewLogisticRegression(coefficients []float64, intercept, threshold float64) (*LogisticRegression, error) {
	if len(coefficients) == 0 {
		return nil, errors.New("logistic regression: no coefficients")
	}
	for i, c := range coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("logistic regression: coefficient %d is not finite", i)
		}
	}
	if math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return nil, errors.New("logistic regression: intercept is not finite")
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("logistic regression: threshold %v outside (0, 1)", threshold)
	}
	w := make([]float64, len(coefficients))
	copy(w, coefficients)
	return &LogisticRegression{Coefficients: w, Intercept: intercept, Threshold: threshold}, nil
}

// Width returns the number of features the model expects.
func (m *LogisticRegression) Width() int { return len(m.Coefficients) }

// PredictProba returns [P(NoRain), P(Rain)].
func (m *LogisticRegression) PredictProba(v domain.FeatureVector) ([]float64, error) {
	p, err := m.probability(v)
	if err != nil {
		return nil, err
	}
	return []float64{1 - p, p}, nil
}

// Predict returns 1 when P(Rain) reaches the threshold, else 0.
func (m *LogisticRegression) Predict(v domain.FeatureVector) (int, error) {
	p, err := m.probability(v)
	if err != nil {
		return 0, err
	}
	if p >= m.Threshold {
		return 1, nil
	}
	return 0, nil
}

func (m *LogisticRegression) probability(v domain.FeatureVector) (float64, error) {
	if v.Len() != len(m.Coefficients) {
		return 0, fmt.Errorf("%w: got %d features, model expects %d", ErrShapeMismatch, v.Len(), len(m.Coefficients))
	}
	return sigmoid(floats.Dot(m.Coefficients, v.Values()) + m.Intercept), nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
