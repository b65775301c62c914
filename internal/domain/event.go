package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PredictionRequest is the wire form of one prediction request, shared by the
// HTTP API and the Kafka source topic.
type PredictionRequest struct {
	RequestID   string               `json:"request_id,omitempty" validate:"omitempty,uuid"`
	ObservedOn  *time.Time           `json:"observed_on,omitempty"`
	Observation RawObservation       `json:"observation" validate:"required"`
	Categorical CategoricalSelection `json:"categorical" validate:"required"`
}

// PredictionResult is the outcome published to callers and the sink topic.
type PredictionResult struct {
	RequestID         string    `json:"request_id"`
	Label             Label     `json:"label"`
	RainTomorrow      bool      `json:"rain_tomorrow"`
	Confidence        *float64  `json:"confidence,omitempty"`
	ModelVersion      string    `json:"model_version"`
	SchemaFingerprint string    `json:"schema_fingerprint"`
	PredictedAt       time.Time `json:"predicted_at"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// ParseRawEvent deserializes a RawEvent's value into a PredictionRequest.
func ParseRawEvent(raw RawEvent) (PredictionRequest, error) {
	var req PredictionRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return PredictionRequest{}, fmt.Errorf("%w: parse raw event: %w", ErrInvalidRequest, err)
	}
	// Producers may key messages by request id instead of embedding it.
	if req.RequestID == "" {
		if id, err := uuid.ParseBytes(raw.Key); err == nil {
			req.RequestID = id.String()
		}
	}
	return req, nil
}

// SerializeResult marshals a PredictionResult into an OutputEvent keyed by request id.
func SerializeResult(result PredictionResult) (OutputEvent, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize prediction result: %w", err)
	}
	return OutputEvent{
		Key:   []byte(result.RequestID),
		Value: data,
		Headers: map[string]string{
			"label":         string(result.Label),
			"model_version": result.ModelVersion,
			"predicted_at":  result.PredictedAt.Format(time.RFC3339),
		},
	}, nil
}
