// Command inspectmodel checks a model artifact against the observation form
// before it is deployed: the artifact loads, its columns are unique and match
// the pinned fingerprint, every one-hot column names a value the form can
// offer, and a prediction with the form defaults succeeds.
//
// Usage:
//
//	go run ./cmd/inspectmodel \
//	  -model models/rainpredict_logistic.json \
//	  -fingerprint 4852bdebcd18557859e9669dba4339f9f6952533dab8df0972f648692a250df2
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/rain-predict-service/internal/domain"
	"github.com/couchcryptid/rain-predict-service/internal/model"
	"github.com/jonboulle/clockwork"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	modelPath := flag.String("model", "models/rainpredict_logistic.json", "path to the model artifact (JSON or YAML)")
	fingerprint := flag.String("fingerprint", "", "expected schema fingerprint (optional)")
	flag.Parse()

	if *modelPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(os.Stdout, *modelPath, *fingerprint); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, modelPath, fingerprint string) int {
	// Fixed clock so the smoke prediction output is reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	fmt.Fprintln(w, "=== Model Artifact Inspection ===")
	fmt.Fprintln(w)

	loaded, err := model.Load(modelPath)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load model artifact: %v\n", err)
		return 1
	}
	vocab := domain.DefaultVocabulary()

	phases := []*phase{
		checkSchema(loaded, fingerprint),
		checkVocabularyCoverage(loaded.Schema, vocab),
		checkSmokePrediction(loaded, vocab),
	}

	fmt.Fprintln(w)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Model: %s (%s), %d columns, fingerprint %s\n",
		loaded.Info.Version, loaded.Info.Kind, loaded.Schema.Len(), loaded.Schema.Fingerprint())

	for _, p := range phases {
		if len(p.notes) == 0 && p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for _, n := range p.notes {
			fmt.Fprintf(w, "  note: %s\n", n)
		}
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll checks passed.")
		return 0
	}
	fmt.Fprintln(w, "\nInspection FAILED.")
	return 1
}

// ── Phase 1: Schema ──

func checkSchema(loaded *model.Loaded, fingerprint string) *phase {
	p := &phase{name: "Phase 1: Schema (columns, fingerprint)"}

	if fingerprint != "" {
		if err := model.VerifyFingerprint(loaded.Schema, fingerprint); err != nil {
			p.errorf("%v", err)
		}
	}
	if loaded.Classifier.Width() != loaded.Schema.Len() {
		p.errorf("classifier expects %d features, schema has %d columns", loaded.Classifier.Width(), loaded.Schema.Len())
	}

	var raw int
	for _, col := range loaded.Schema.Columns {
		if _, ok := domain.LookupField(col); ok {
			raw++
		}
	}
	p.notef("%d raw observation columns, %d other columns", raw, loaded.Schema.Len()-raw)
	return p
}

// ── Phase 2: Vocabulary coverage ──
// Every one-hot column must name a value the form offers. Values without a
// column are the dropped baseline categories and encode as all-zero.

func checkVocabularyCoverage(schema domain.FeatureSchema, vocab domain.Vocabulary) *phase {
	p := &phase{name: "Phase 2: Vocabulary coverage (one-hot)"}

	covered := make(map[string]map[string]bool)
	for _, col := range schema.Columns {
		attr, value, ok := vocab.MatchColumn(col)
		if !ok {
			continue
		}
		if !vocab.Contains(attr, value) {
			p.errorf("column %q: %q is not a %s the form offers", col, value, attr)
			continue
		}
		if covered[attr] == nil {
			covered[attr] = make(map[string]bool)
		}
		covered[attr][value] = true
	}

	for _, attr := range vocab.Attributes() {
		if covered[attr] == nil {
			p.notef("%s is not encoded by this model", attr)
			continue
		}
		var baseline []string
		for _, v := range vocab[attr] {
			if !covered[attr][v] {
				baseline = append(baseline, v)
			}
		}
		sort.Strings(baseline)
		if len(baseline) > 0 {
			p.notef("%s baseline (all-zero): %s", attr, strings.Join(baseline, ", "))
		}
	}
	return p
}

// ── Phase 3: Smoke prediction ──

func checkSmokePrediction(loaded *model.Loaded, vocab domain.Vocabulary) *phase {
	p := &phase{name: "Phase 3: Smoke prediction (form defaults)"}

	engine := domain.NewEngine(loaded.Schema, vocab, loaded.Classifier, loaded.Info)
	sel := make(domain.CategoricalSelection, len(vocab))
	for _, attr := range vocab.Attributes() {
		sel[attr] = vocab[attr][0]
	}

	res, err := engine.Predict(domain.PredictionRequest{
		Observation: domain.DefaultObservation(),
		Categorical: sel,
	})
	if err != nil {
		p.errorf("predict with form defaults: %v", err)
		return p
	}
	conf := "n/a"
	if res.Confidence != nil {
		conf = fmt.Sprintf("%.3f", *res.Confidence)
	}
	p.notef("defaults -> %s (confidence %s)", res.Label, conf)
	return p
}
