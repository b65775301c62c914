//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"testing"

	"github.com/couchcryptid/rain-predict-service/internal/domain"
	"github.com/couchcryptid/rain-predict-service/internal/model"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const (
	kafkaImage   = "confluentinc/confluent-local:7.5.0"
	artifactPath = "../../models/rainpredict_logistic.json"
	mockDataPath = "../../data/mock/prediction_requests.json"
)

// startKafka runs a single-node KRaft broker and returns its bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, kafkaImage, tckafka.WithClusterID("rain-predict-test"))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic via the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// loadEngine builds an engine from the model artifact shipped with the service.
func loadEngine(t *testing.T) *domain.Engine {
	t.Helper()
	loaded, err := model.Load(artifactPath)
	require.NoError(t, err)
	return domain.NewEngine(loaded.Schema, domain.DefaultVocabulary(), loaded.Classifier, loaded.Info)
}

// loadMockData reads the request fixture produced by cmd/genmock.
func loadMockData(t *testing.T) []domain.PredictionRequest {
	t.Helper()
	data, err := os.ReadFile(mockDataPath)
	require.NoError(t, err)

	var requests []domain.PredictionRequest
	require.NoError(t, json.Unmarshal(data, &requests))
	require.NotEmpty(t, requests)
	return requests
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
