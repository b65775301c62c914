package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/rain-predict-service/internal/domain"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// KindLogisticRegression is the only artifact kind the service can score.
const KindLogisticRegression = "logistic_regression"

var (
	// ErrSchemaDrift means the artifact's columns do not hash to the expected fingerprint.
	ErrSchemaDrift = errors.New("schema drift")
	// ErrUnsupportedKind is returned for artifacts of an unknown model kind.
	ErrUnsupportedKind = errors.New("unsupported model kind")
)

var validate = validator.New()

// Artifact is the on-disk form of a trained model and the column layout it was fitted on.
type Artifact struct {
	Version           string     `json:"version" yaml:"version" validate:"required"`
	Kind              string     `json:"kind" yaml:"kind" validate:"required"`
	FeatureNames      []string   `json:"feature_names" yaml:"feature_names" validate:"required,min=1"`
	SchemaFingerprint string     `json:"schema_fingerprint,omitempty" yaml:"schema_fingerprint,omitempty" validate:"omitempty,len=64,hexadecimal"`
	Coefficients      []float64  `json:"coefficients" yaml:"coefficients" validate:"required,min=1"`
	Intercept         float64    `json:"intercept" yaml:"intercept"`
	Threshold         *float64   `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	TrainedAt         *time.Time `json:"trained_at,omitempty" yaml:"trained_at,omitempty"`
}

// Loaded bundles everything the engine needs from one artifact.
type Loaded struct {
	Schema     domain.FeatureSchema
	Classifier *LogisticRegression
	Info       domain.ModelInfo
	TrainedAt  *time.Time
}

// Load reads a model artifact from disk. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func Load(path string) (*Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var a Artifact
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &a)
	default:
		err = json.Unmarshal(data, &a)
	}
	if err != nil {
		return nil, fmt.Errorf("decode model artifact %s: %w", path, err)
	}
	return a.Build()
}

// Build validates the artifact and constructs its schema and classifier.
func (a Artifact) Build() (*Loaded, error) {
	if err := validate.Struct(a); err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}
	if a.Kind != KindLogisticRegression {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, a.Kind)
	}

	schema, err := domain.NewFeatureSchema(a.Version, a.FeatureNames)
	if err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}
	if a.SchemaFingerprint != "" {
		if err := VerifyFingerprint(schema, a.SchemaFingerprint); err != nil {
			return nil, err
		}
	}
	if len(a.Coefficients) != schema.Len() {
		return nil, fmt.Errorf("invalid model artifact: %d coefficients for %d columns", len(a.Coefficients), schema.Len())
	}

	threshold := DefaultThreshold
	if a.Threshold != nil {
		threshold = *a.Threshold
	}
	clf, err := NewLogisticRegression(a.Coefficients, a.Intercept, threshold)
	if err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}

	return &Loaded{
		Schema:     schema,
		Classifier: clf,
		Info:       domain.ModelInfo{Version: a.Version, Kind: a.Kind},
		TrainedAt:  a.TrainedAt,
	}, nil
}

// VerifyFingerprint compares the schema fingerprint against an expected value.
func VerifyFingerprint(schema domain.FeatureSchema, expected string) error {
	got := schema.Fingerprint()
	if !strings.EqualFold(got, strings.TrimSpace(expected)) {
		return fmt.Errorf("%w: schema %s has fingerprint %s, expected %s", ErrSchemaDrift, schema.Version, got, expected)
	}
	return nil
}
