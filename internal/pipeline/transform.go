package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/rain-predict-service/internal/domain"
	"github.com/couchcryptid/rain-predict-service/internal/observability"
)

// Predictor classifies one prediction request.
type Predictor interface {
	Predict(req domain.PredictionRequest) (domain.PredictionResult, error)
}

// PredictionTransformer implements Transformer by running each request through
// the prediction engine.
type PredictionTransformer struct {
	predictor Predictor
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewTransformer creates a PredictionTransformer.
func NewTransformer(predictor Predictor, metrics *observability.Metrics, logger *slog.Logger) *PredictionTransformer {
	return &PredictionTransformer{
		predictor: predictor,
		metrics:   metrics,
		logger:    logger,
	}
}

func (t *PredictionTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	start := time.Now()
	defer func() {
		t.metrics.PredictionDuration.WithLabelValues(observability.SourceKafka).Observe(time.Since(start).Seconds())
	}()

	out, err := t.transform(raw)
	if err != nil {
		t.metrics.PredictionErrors.WithLabelValues(domain.ErrorKind(err), observability.SourceKafka).Inc()
		return domain.OutputEvent{}, err
	}
	return out, nil
}

func (t *PredictionTransformer) transform(raw domain.RawEvent) (domain.OutputEvent, error) {
	req, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	result, err := t.predictor.Predict(req)
	if err != nil {
		return domain.OutputEvent{}, err
	}
	t.metrics.PredictionsTotal.WithLabelValues(string(result.Label), observability.SourceKafka).Inc()
	t.logger.Debug("prediction produced",
		"request_id", result.RequestID,
		"label", result.Label,
		"offset", raw.Offset,
	)

	return domain.SerializeResult(result)
}
