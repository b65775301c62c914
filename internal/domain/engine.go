package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ModelInfo identifies the loaded model artifact.
type ModelInfo struct {
	Version string
	Kind    string
}

// Engine binds the process-lifetime schema, vocabulary and classifier. It holds
// no mutable state and is safe for concurrent use.
type Engine struct {
	aligner     *Aligner
	classifier  Classifier
	model       ModelInfo
	fingerprint string
}

// NewEngine creates an Engine for a loaded classifier and its schema.
func NewEngine(schema FeatureSchema, vocab Vocabulary, classifier Classifier, model ModelInfo) *Engine {
	return &Engine{
		aligner:     NewAligner(schema, vocab),
		classifier:  classifier,
		model:       model,
		fingerprint: schema.Fingerprint(),
	}
}

// Schema returns the feature schema the engine aligns to.
func (e *Engine) Schema() FeatureSchema { return e.aligner.Schema() }

// Fingerprint returns the schema fingerprint.
func (e *Engine) Fingerprint() string { return e.fingerprint }

// Model returns the loaded model identity.
func (e *Engine) Model() ModelInfo { return e.model }

// CheckReadiness returns nil once a classifier is loaded.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if e.classifier == nil {
		return errors.New("classifier not loaded")
	}
	return nil
}

// Predict validates, aligns and classifies one request.
func (e *Engine) Predict(req PredictionRequest) (PredictionResult, error) {
	if err := validate.Struct(req); err != nil {
		return PredictionResult{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := ValidateObservation(req.Observation); err != nil {
		return PredictionResult{}, err
	}

	categorical := req.Categorical
	if _, ok := categorical[AttrSeason]; !ok && req.ObservedOn != nil {
		categorical = make(CategoricalSelection, len(req.Categorical)+1)
		for k, v := range req.Categorical {
			categorical[k] = v
		}
		categorical[AttrSeason] = SeasonFor(*req.ObservedOn)
	}

	vector, err := e.aligner.Align(req.Observation, categorical)
	if err != nil {
		return PredictionResult{}, err
	}
	pred, err := Predict(vector, e.classifier)
	if err != nil {
		return PredictionResult{}, err
	}

	id := req.RequestID
	if id == "" {
		id = uuid.NewString()
	}
	return PredictionResult{
		RequestID:         id,
		Label:             pred.Label,
		RainTomorrow:      pred.Label == LabelRain,
		Confidence:        pred.Confidence,
		ModelVersion:      e.model.Version,
		SchemaFingerprint: e.fingerprint,
		PredictedAt:       clock.Now().UTC(),
	}, nil
}

// AttributeSpec lists one categorical attribute and its closed vocabulary.
type AttributeSpec struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Form is the contract a front-end renders: every raw field with its range and
// every categorical attribute with its vocabulary.
type Form struct {
	ModelVersion      string          `json:"model_version"`
	SchemaFingerprint string          `json:"schema_fingerprint"`
	Fields            []FieldSpec     `json:"fields"`
	Attributes        []AttributeSpec `json:"attributes"`
}

// Form returns the observation form contract for the loaded model.
func (e *Engine) Form() Form {
	vocab := e.aligner.vocab
	attrs := make([]AttributeSpec, 0, len(vocab))
	for _, name := range vocab.Attributes() {
		values := make([]string, len(vocab[name]))
		copy(values, vocab[name])
		attrs = append(attrs, AttributeSpec{Name: name, Values: values})
	}
	return Form{
		ModelVersion:      e.model.Version,
		SchemaFingerprint: e.fingerprint,
		Fields:            RawFields(),
		Attributes:        attrs,
	}
}
