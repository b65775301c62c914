package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/couchcryptid/rain-predict-service/internal/domain"
	"github.com/couchcryptid/rain-predict-service/internal/observability"
)

const maxRequestBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Field string `json:"field,omitempty"`
}

type schemaResponse struct {
	Version     string   `json:"version"`
	Fingerprint string   `json:"fingerprint"`
	Columns     []string `json:"columns"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		s.metrics.PredictionDuration.WithLabelValues(observability.SourceHTTP).Observe(time.Since(start).Seconds())
	}()

	var req domain.PredictionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err))
		return
	}
	// Exactly one JSON value per request.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after request body")
		}
		s.writeError(w, fmt.Errorf("%w: trailing data: %w", domain.ErrInvalidRequest, err))
		return
	}

	result, err := s.predictor.Predict(req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.metrics.PredictionsTotal.WithLabelValues(string(result.Label), observability.SourceHTTP).Inc()
	s.logger.Debug("prediction served",
		"request_id", result.RequestID,
		"label", result.Label,
		"model_version", result.ModelVersion,
	)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleForm(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.predictor.Form())
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	schema := s.predictor.Schema()
	writeJSON(w, http.StatusOK, schemaResponse{
		Version:     schema.Version,
		Fingerprint: schema.Fingerprint(),
		Columns:     schema.Columns,
	})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := domain.ErrorKind(err)
	status := statusFor(err)
	s.metrics.PredictionErrors.WithLabelValues(kind, observability.SourceHTTP).Inc()

	if status >= http.StatusInternalServerError {
		s.logger.Error("prediction failed", "kind", kind, "error", err)
	} else {
		s.logger.Debug("prediction rejected", "kind", kind, "error", err)
	}

	resp := errorResponse{Error: err.Error(), Kind: kind}
	var fe *domain.FeatureError
	if errors.As(err, &fe) {
		resp.Field = fe.Field
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrUnrecognizedCategory):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrMissingFeature),
		errors.Is(err, domain.ErrOutOfRange),
		errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPredictionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
