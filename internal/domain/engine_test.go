package domain

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingClassifier captures the vector it was asked to classify.
type recordingClassifier struct {
	last  FeatureVector
	class int
	proba []float64
}

func (c *recordingClassifier) Predict(v FeatureVector) (int, error) {
	c.last = v
	return c.class, nil
}

func (c *recordingClassifier) PredictProba(_ FeatureVector) ([]float64, error) {
	return c.proba, nil
}

func freezeClock(t *testing.T) *clockwork.FakeClock {
	t.Helper()
	fc := clockwork.NewFakeClockAt(time.Date(2024, time.June, 3, 9, 30, 0, 0, time.UTC))
	SetClock(fc)
	t.Cleanup(func() { SetClock(nil) })
	return fc
}

func newTestEngine(t *testing.T, c Classifier) *Engine {
	t.Helper()
	return NewEngine(fullSchema(t), DefaultVocabulary(), c, ModelInfo{Version: "2024.06", Kind: "test"})
}

func TestEngine_Predict(t *testing.T) {
	fc := freezeClock(t)
	c := &recordingClassifier{class: 1, proba: []float64{0.18, 0.82}}
	e := newTestEngine(t, c)
	id := uuid.NewString()

	res, err := e.Predict(PredictionRequest{
		RequestID:   id,
		Observation: DefaultObservation(),
		Categorical: defaultSelection(),
	})
	require.NoError(t, err)

	confidence := 0.82
	want := PredictionResult{
		RequestID:         id,
		Label:             LabelRain,
		RainTomorrow:      true,
		Confidence:        &confidence,
		ModelVersion:      "2024.06",
		SchemaFingerprint: e.Fingerprint(),
		PredictedAt:       fc.Now(),
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, e.Schema().Len(), c.last.Len())
}

func TestEngine_Predict_GeneratesRequestID(t *testing.T) {
	freezeClock(t)
	e := newTestEngine(t, &recordingClassifier{class: 0, proba: []float64{0.9, 0.1}})

	res, err := e.Predict(PredictionRequest{Observation: DefaultObservation(), Categorical: defaultSelection()})
	require.NoError(t, err)

	_, err = uuid.Parse(res.RequestID)
	assert.NoError(t, err)
	assert.Equal(t, LabelNoRain, res.Label)
	assert.False(t, res.RainTomorrow)
}

func TestEngine_Predict_DerivesSeasonFromDate(t *testing.T) {
	freezeClock(t)
	c := &recordingClassifier{class: 0, proba: []float64{0.6, 0.4}}
	e := newTestEngine(t, c)

	sel := defaultSelection()
	delete(sel, AttrSeason)
	observed := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	_, err := e.Predict(PredictionRequest{ObservedOn: &observed, Observation: DefaultObservation(), Categorical: sel})
	require.NoError(t, err)

	idx := indexOf(e.Schema().Columns, "Season_Winter")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, 1.0, c.last.At(idx))
	_, stillMissing := sel[AttrSeason]
	assert.False(t, stillMissing, "request selection must not be mutated")
}

func TestEngine_Predict_Errors(t *testing.T) {
	freezeClock(t)
	e := newTestEngine(t, &recordingClassifier{class: 1, proba: []float64{0.5, 0.5}})

	outOfRange := DefaultObservation()
	outOfRange["Humidity3pm"] = 140

	missing := DefaultObservation()
	delete(missing, "Sunshine")

	unknown := defaultSelection()
	unknown[AttrLocation] = "Atlantis"

	noSeason := defaultSelection()
	delete(noSeason, AttrSeason)

	cases := []struct {
		name string
		req  PredictionRequest
		want error
	}{
		{"bad request id", PredictionRequest{RequestID: "abc", Observation: DefaultObservation(), Categorical: defaultSelection()}, ErrInvalidRequest},
		{"nil observation", PredictionRequest{Categorical: defaultSelection()}, ErrInvalidRequest},
		{"out of range", PredictionRequest{Observation: outOfRange, Categorical: defaultSelection()}, ErrOutOfRange},
		{"missing raw", PredictionRequest{Observation: missing, Categorical: defaultSelection()}, ErrMissingFeature},
		{"unknown category", PredictionRequest{Observation: DefaultObservation(), Categorical: unknown}, ErrUnrecognizedCategory},
		{"missing season without date", PredictionRequest{Observation: DefaultObservation(), Categorical: noSeason}, ErrMissingFeature},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Predict(tc.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestEngine_Predict_PropagatesClassifierFailure(t *testing.T) {
	freezeClock(t)
	e := newTestEngine(t, &fixedClassifier{class: 3})

	_, err := e.Predict(PredictionRequest{Observation: DefaultObservation(), Categorical: defaultSelection()})
	assert.ErrorIs(t, err, ErrPredictionFailed)
}

func TestEngine_CheckReadiness(t *testing.T) {
	assert.NoError(t, newTestEngine(t, &fixedClassifier{}).CheckReadiness(context.Background()))
	assert.Error(t, newTestEngine(t, nil).CheckReadiness(context.Background()))
}

func TestEngine_Form(t *testing.T) {
	e := newTestEngine(t, &fixedClassifier{})
	form := e.Form()

	assert.Equal(t, "2024.06", form.ModelVersion)
	assert.Equal(t, e.Fingerprint(), form.SchemaFingerprint)
	assert.Len(t, form.Fields, 16)
	require.Len(t, form.Attributes, 5)
	assert.Equal(t, AttrLocation, form.Attributes[0].Name)
	assert.Len(t, form.Attributes[0].Values, 49)
}

func TestValidateObservation(t *testing.T) {
	assert.NoError(t, ValidateObservation(DefaultObservation()))
	assert.NoError(t, ValidateObservation(RawObservation{"Pressure9am": 980, "Pressure3pm": 1050}), "bounds are inclusive")
	assert.NoError(t, ValidateObservation(RawObservation{"Unknown": -1e9}), "unknown fields are not range-checked")

	for name, obs := range map[string]RawObservation{
		"below min": {"Rainfall": -0.1},
		"above max": {"Cloud9am": 9},
		"nan":       {"MinTemp": math.NaN()},
		"inf":       {"MaxTemp": math.Inf(1)},
	} {
		t.Run(name, func(t *testing.T) {
			err := ValidateObservation(obs)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrOutOfRange)
		})
	}
}

func TestParseRawEvent(t *testing.T) {
	id := uuid.NewString()
	payload, err := json.Marshal(PredictionRequest{
		Observation: RawObservation{"Rainfall": 3},
		Categorical: CategoricalSelection{AttrLocation: "Hobart"},
	})
	require.NoError(t, err)

	req, err := ParseRawEvent(RawEvent{Key: []byte(id), Value: payload})
	require.NoError(t, err)
	assert.Equal(t, id, req.RequestID, "uuid message key becomes the request id")
	assert.Equal(t, 3.0, req.Observation["Rainfall"])
	assert.Equal(t, "Hobart", req.Categorical[AttrLocation])

	req, err = ParseRawEvent(RawEvent{Key: []byte("not-a-uuid"), Value: payload})
	require.NoError(t, err)
	assert.Empty(t, req.RequestID)

	_, err = ParseRawEvent(RawEvent{Value: []byte("not json")})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSerializeResult(t *testing.T) {
	at := time.Date(2024, time.June, 3, 9, 30, 0, 0, time.UTC)
	out, err := SerializeResult(PredictionResult{
		RequestID:    "req-1",
		Label:        LabelRain,
		RainTomorrow: true,
		ModelVersion: "2024.06",
		PredictedAt:  at,
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("req-1"), out.Key)
	assert.Equal(t, "Rain", out.Headers["label"])
	assert.Equal(t, "2024.06", out.Headers["model_version"])
	assert.Equal(t, "2024-06-03T09:30:00Z", out.Headers["predicted_at"])
	assert.Contains(t, string(out.Value), `"rain_tomorrow":true`)
}

func indexOf(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}
