package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFeature means a field the schema needs was not supplied.
	ErrMissingFeature = errors.New("missing feature")

	// ErrUnrecognizedCategory means a categorical selection is outside its closed vocabulary.
	ErrUnrecognizedCategory = errors.New("unrecognized category")

	// ErrPredictionFailed wraps any failure of the classifier collaborator.
	ErrPredictionFailed = errors.New("prediction failed")

	// ErrOutOfRange means a raw observation value lies outside its documented range.
	ErrOutOfRange = errors.New("value out of range")

	// ErrInvalidRequest covers malformed prediction requests (bad JSON, bad request id).
	ErrInvalidRequest = errors.New("invalid request")
)

// FeatureError names the field or attribute that caused an alignment or
// validation failure. It unwraps to one of the sentinel errors above.
type FeatureError struct {
	Kind  error
	Field string
	Value string
}

func (e *FeatureError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %s=%q", e.Kind, e.Field, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Field)
}

func (e *FeatureError) Unwrap() error { return e.Kind }

func missingFeature(field string) error {
	return &FeatureError{Kind: ErrMissingFeature, Field: field}
}

func unrecognizedCategory(attribute, value string) error {
	return &FeatureError{Kind: ErrUnrecognizedCategory, Field: attribute, Value: value}
}

// ErrorKind returns a stable, low-cardinality name for err, suitable for
// metric labels and log fields.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingFeature):
		return "missing_feature"
	case errors.Is(err, ErrUnrecognizedCategory):
		return "unrecognized_category"
	case errors.Is(err, ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrPredictionFailed):
		return "prediction_failed"
	default:
		return "internal"
	}
}
