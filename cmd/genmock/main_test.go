package main

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/couchcryptid/rain-predict-service/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequests_MatchesCommittedFixture(t *testing.T) {
	data, err := os.ReadFile("../../data/mock/prediction_requests.json")
	require.NoError(t, err)

	var fixture []domain.PredictionRequest
	require.NoError(t, json.Unmarshal(data, &fixture))

	if diff := cmp.Diff(fixture, buildRequests(domain.DefaultVocabulary())); diff != "" {
		t.Fatalf("fixture is stale, rerun genmock (-fixture +generated):\n%s", diff)
	}
}

func TestBuildRequests_AreValid(t *testing.T) {
	vocab := domain.DefaultVocabulary()
	requests := buildRequests(vocab)
	require.Len(t, requests, len(vocab[domain.AttrLocation])*len(vocab[domain.AttrSeason]))

	ids := make(map[string]bool, len(requests))
	for _, req := range requests {
		assert.NoError(t, domain.ValidateObservation(req.Observation), req.RequestID)
		for attr, value := range req.Categorical {
			assert.True(t, vocab.Contains(attr, value), "%s=%s", attr, value)
		}
		assert.False(t, ids[req.RequestID], "duplicate id %s", req.RequestID)
		ids[req.RequestID] = true
	}
}
