package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// RawObservation maps raw field names to observed values.
type RawObservation map[string]float64

// CategoricalSelection maps a categorical attribute to the selected value.
type CategoricalSelection map[string]string

// FeatureSchema is the ordered column list the classifier was fit on.
type FeatureSchema struct {
	Version string
	Columns []string
}

// NewFeatureSchema validates and copies the column list.
func NewFeatureSchema(version string, columns []string) (FeatureSchema, error) {
	if len(columns) == 0 {
		return FeatureSchema{}, errors.New("feature schema has no columns")
	}
	seen := make(map[string]struct{}, len(columns))
	for i, c := range columns {
		if strings.TrimSpace(c) == "" {
			return FeatureSchema{}, fmt.Errorf("feature schema column %d is empty", i)
		}
		if _, dup := seen[c]; dup {
			return FeatureSchema{}, fmt.Errorf("feature schema column %q is duplicated", c)
		}
		seen[c] = struct{}{}
	}
	return FeatureSchema{Version: version, Columns: slices.Clone(columns)}, nil
}

// Len returns the number of columns.
func (s FeatureSchema) Len() int { return len(s.Columns) }

// Fingerprint returns the hex SHA-256 of the column names joined with "\n".
// Two schemas share a fingerprint only if they list the same columns in the same order.
func (s FeatureSchema) Fingerprint() string {
	sum := sha256.Sum256([]byte(strings.Join(s.Columns, "\n")))
	return hex.EncodeToString(sum[:])
}

// FeatureVector is an immutable ordered row of feature values.
type FeatureVector struct {
	values []float64
}

// NewFeatureVector copies values into a vector.
func NewFeatureVector(values []float64) FeatureVector {
	return FeatureVector{values: slices.Clone(values)}
}

// Len returns the vector width.
func (v FeatureVector) Len() int { return len(v.values) }

// At returns the i-th value.
func (v FeatureVector) At(i int) float64 { return v.values[i] }

// Values returns a copy of the underlying values.
func (v FeatureVector) Values() []float64 { return slices.Clone(v.values) }
