package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rain_predict"

// Prediction sources, used as the "source" label.
const (
	SourceHTTP  = "http"
	SourceKafka = "kafka"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the prediction service.
type Metrics struct {
	// Prediction metrics, shared by the HTTP API and the Kafka pipeline.
	PredictionsTotal   *prometheus.CounterVec   // labels: label={Rain,NoRain}, source={http,kafka}
	PredictionErrors   *prometheus.CounterVec   // labels: kind, source
	PredictionDuration *prometheus.HistogramVec // labels: source
	ModelInfo          *prometheus.GaugeVec     // labels: version, fingerprint

	// Kafka pipeline metrics.
	MessagesConsumed        prometheus.Counter
	MessagesProduced        prometheus.Counter
	PipelineRunning         prometheus.Gauge
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PredictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Successful predictions by label and source.",
		}, []string{"label", "source"}),
		PredictionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_errors_total",
			Help:      "Rejected or failed predictions by error kind and source.",
		}, []string{"kind", "source"}),
		PredictionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time spent validating, aligning, and classifying one request.",
			Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		}, []string{"source"}),
		ModelInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_info",
			Help:      "Always 1; labels identify the loaded model and its schema fingerprint.",
		}, []string{"version", "fingerprint"}),
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total messages read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total messages written to the sink topic.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-predict-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}

	prometheus.MustRegister(
		m.PredictionsTotal,
		m.PredictionErrors,
		m.PredictionDuration,
		m.ModelInfo,
		m.MessagesConsumed,
		m.MessagesProduced,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PredictionsTotal:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "predictions_total"}, []string{"label", "source"}),
		PredictionErrors:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "prediction_errors_total"}, []string{"kind", "source"}),
		PredictionDuration:      prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "prediction_duration_seconds"}, []string{"source"}),
		ModelInfo:               prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: "model_info"}, []string{"version", "fingerprint"}),
		MessagesConsumed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "messages_consumed_total"}),
		MessagesProduced:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "messages_produced_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_processing_duration_seconds"}),
	}
}
