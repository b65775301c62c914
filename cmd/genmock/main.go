// Command genmock generates the prediction request fixture used by the
// integration tests and for load-testing the HTTP API and Kafka topic. One
// request is produced per location and season, with the observation varied
// deterministically around the form defaults. When -model is given the
// expected predictions are written as well, using the real engine.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -requests-out data/mock/prediction_requests.json \
//	  -model models/rainpredict_logistic.json \
//	  -predictions-out data/mock/predictions.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/couchcryptid/rain-predict-service/internal/domain"
	"github.com/couchcryptid/rain-predict-service/internal/model"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	requestsOut := flag.String("requests-out", "", "output path for the request fixture")
	modelPath := flag.String("model", "", "model artifact used to compute expected predictions (optional)")
	predictionsOut := flag.String("predictions-out", "", "output path for expected predictions (requires -model)")
	flag.Parse()

	if *requestsOut == "" || (*predictionsOut != "") != (*modelPath != "") {
		flag.Usage()
		return fmt.Errorf("missing required flags: -requests-out, and -model with -predictions-out")
	}

	requests := buildRequests(domain.DefaultVocabulary())
	if err := writeJSON(*requestsOut, requests); err != nil {
		return fmt.Errorf("writing request fixture: %w", err)
	}
	log.Printf("wrote %d requests: %s", len(requests), *requestsOut)

	if *modelPath == "" {
		return nil
	}

	// Fixed clock for reproducible PredictedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.June, 1, 6, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	loaded, err := model.Load(*modelPath)
	if err != nil {
		return err
	}
	engine := domain.NewEngine(loaded.Schema, domain.DefaultVocabulary(), loaded.Classifier, loaded.Info)

	results := make([]domain.PredictionResult, 0, len(requests))
	counts := map[domain.Label]int{}
	for _, req := range requests {
		res, err := engine.Predict(req)
		if err != nil {
			return fmt.Errorf("predict %s: %w", req.RequestID, err)
		}
		results = append(results, res)
		counts[res.Label]++
	}
	if err := writeJSON(*predictionsOut, results); err != nil {
		return fmt.Errorf("writing predictions fixture: %w", err)
	}
	log.Printf("wrote %d predictions (%d Rain, %d NoRain): %s",
		len(results), counts[domain.LabelRain], counts[domain.LabelNoRain], *predictionsOut)
	return nil
}

// mockNamespace scopes the name-based request ids so fixtures are stable.
const mockNamespace = "rain-predict/mock/"

// buildRequests returns one request per location and season. Locations are the
// outer loop, seasons the inner.
func buildRequests(vocab domain.Vocabulary) []domain.PredictionRequest {
	compass := vocab[domain.AttrWindGustDir]
	var out []domain.PredictionRequest //nolint:prealloc // size depends on vocabulary
	i := 0
	for _, loc := range vocab[domain.AttrLocation] {
		for _, season := range vocab[domain.AttrSeason] {
			obs := domain.DefaultObservation()
			obs["Rainfall"] = float64((i * 3) % 25)
			obs["Humidity3pm"] = float64(30 + (i*7)%70)
			obs["Sunshine"] = float64((i * 5) % 14)
			obs["Cloud3pm"] = float64(i % 9)
			obs["WindGustSpeed"] = float64(20 + (i*11)%80)

			out = append(out, domain.PredictionRequest{
				RequestID:   uuid.NewSHA1(uuid.NameSpaceURL, []byte(mockNamespace+loc+"/"+season)).String(),
				Observation: obs,
				Categorical: domain.CategoricalSelection{
					domain.AttrLocation:    loc,
					domain.AttrSeason:      season,
					domain.AttrWindGustDir: compass[i%len(compass)],
					domain.AttrWindDir9am:  compass[(i+3)%len(compass)],
					domain.AttrWindDir3pm:  compass[(i+5)%len(compass)],
				},
			})
			i++
		}
	}
	return out
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}
