package domain

import (
	"fmt"
	"math"
)

// Label is the semantic outcome of a prediction.
type Label string

const (
	LabelRain   Label = "Rain"
	LabelNoRain Label = "NoRain"
)

// Classifier is a pre-trained binary classifier. Predict returns 0 or 1.
type Classifier interface {
	Predict(vector FeatureVector) (int, error)
}

// ProbabilisticClassifier additionally exposes [p(class0), p(class1)].
type ProbabilisticClassifier interface {
	Classifier
	PredictProba(vector FeatureVector) ([]float64, error)
}

// Prediction is the classifier outcome. Confidence is nil when the classifier
// does not expose probabilities.
type Prediction struct {
	Label      Label    `json:"label"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Predict queries the classifier and maps its class to a Label. When the
// classifier exposes probabilities, Confidence is the probability of the
// predicted class. Every failure wraps ErrPredictionFailed.
func Predict(vector FeatureVector, classifier Classifier) (Prediction, error) {
	if classifier == nil {
		return Prediction{}, fmt.Errorf("%w: no classifier loaded", ErrPredictionFailed)
	}

	class, err := classifier.Predict(vector)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %w", ErrPredictionFailed, err)
	}

	var pred Prediction
	switch class {
	case 0:
		pred.Label = LabelNoRain
	case 1:
		pred.Label = LabelRain
	default:
		return Prediction{}, fmt.Errorf("%w: unexpected class %d", ErrPredictionFailed, class)
	}

	pc, ok := classifier.(ProbabilisticClassifier)
	if !ok {
		return pred, nil
	}
	proba, err := pc.PredictProba(vector)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %w", ErrPredictionFailed, err)
	}
	if len(proba) != 2 {
		return Prediction{}, fmt.Errorf("%w: expected 2 class probabilities, got %d", ErrPredictionFailed, len(proba))
	}
	p := proba[class]
	if math.IsNaN(p) || p < 0 || p > 1 {
		return Prediction{}, fmt.Errorf("%w: probability %v outside [0,1]", ErrPredictionFailed, p)
	}
	pred.Confidence = &p
	return pred, nil
}
