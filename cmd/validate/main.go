// Command validate performs integrity checks on a forest fire dataset before
// it is served by the dashboard: header and row structure, target
// resolution, label cleanliness, feature coverage, and optionally the
// agreement between a classifier artifact and the dataset's labels.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -dataset Algerian_forest_fires_dataset.csv \
//	  -model model/pipeline.json \
//	  -min-accuracy 0.9
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/fire-risk-dashboard/internal/adapter/csvfile"
	"github.com/couchcryptid/fire-risk-dashboard/internal/adapter/xlsx"
	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
	"github.com/couchcryptid/fire-risk-dashboard/internal/model"
	"github.com/couchcryptid/fire-risk-dashboard/internal/observability"
	"github.com/couchcryptid/fire-risk-dashboard/internal/pipeline"
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

type options struct {
	dataset     string
	aliases     []string
	features    []string
	modelPath   string
	minAccuracy float64
}

func main() {
	dataset := flag.String("dataset", os.Getenv("DATASET_PATH"), "path to the dataset (.csv or .xlsx)")
	aliases := flag.String("target-aliases", strings.Join(domain.DefaultTargetAliases, ","), "comma-separated target column aliases, in priority order")
	features := flag.String("features", strings.Join(domain.DefaultFeatureNames, ","), "comma-separated feature columns that must be numeric")
	modelPath := flag.String("model", "", "optional classifier artifact to score against the dataset labels")
	minAccuracy := flag.Float64("min-accuracy", 0, "fail when the classifier agrees with fewer than this share of labels")
	flag.Parse()

	if *dataset == "" {
		flag.Usage()
		os.Exit(1)
	}

	code := run(context.Background(), os.Stdout, options{
		dataset:     *dataset,
		aliases:     splitList(*aliases),
		features:    splitList(*features),
		modelPath:   *modelPath,
		minAccuracy: *minAccuracy,
	})
	if code != 0 {
		os.Exit(code)
	}
}

func run(ctx context.Context, out io.Writer, opts options) int {
	fmt.Fprintln(out, "=== Forest Fire Dataset Validation ===")
	fmt.Fprintln(out)

	readers := map[string]pipeline.TableReader{
		".csv":  csvfile.NewReader(),
		".xlsx": xlsx.NewReader(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := pipeline.New(readers, pipeline.NewTransformer(opts.aliases), logger, observability.NewUnregisteredMetrics())

	ds, err := p.Load(ctx, opts.dataset)
	if domain.IsFatal(err) {
		fmt.Fprintf(out, "FATAL: load dataset: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateColumns(ds),
		validateTarget(ds),
		validateLabels(ds),
		validateFeatures(ds, opts.features),
	}
	if opts.modelPath != "" {
		phases = append(phases, validateModel(ctx, ds, opts.modelPath, opts.minAccuracy))
	}

	allPassed := true
	for _, ph := range phases {
		status := "\033[32mPASS\033[0m"
		if !ph.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(ph.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", ph.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Dataset: %s, %d rows, %d columns\n", ds.Source, ds.Len(), len(ds.Columns))

	for _, ph := range phases {
		if len(ph.notes) == 0 && ph.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", ph.name)
		for _, n := range ph.notes {
			fmt.Fprintf(out, "  note: %s\n", n)
		}
		for i, e := range ph.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: Columns ──
// Reports which columns stayed text and why.

func validateColumns(ds *domain.Dataset) *phase {
	p := &phase{name: "Phase 1: Columns (numeric coercion)"}
	if ds.Len() == 0 {
		p.errorf("dataset has a header but no data rows")
	}
	for _, c := range ds.Coercions {
		if !c.Numeric {
			p.notef("column %q kept as text: line %d has %q", c.Column, c.Row+2, c.Value)
		}
	}
	return p
}

// ── Phase 2: Target ──

func validateTarget(ds *domain.Dataset) *phase {
	p := &phase{name: "Phase 2: Target (class column)"}
	if !ds.HasTarget() {
		p.errorf("no column matches a target alias; columns are %s", strings.Join(ds.ColumnNames(), ", "))
		return p
	}
	p.notef("target column is %q", ds.Target)
	return p
}

// ── Phase 3: Labels ──
// Every target cell must clean to "fire" or "notfire", and both classes
// must be present.

func validateLabels(ds *domain.Dataset) *phase {
	p := &phase{name: "Phase 3: Labels (fire / not fire)"}
	if !ds.HasTarget() {
		p.notef("skipped: no target column")
		return p
	}

	for _, g := range ds.LabelGaps {
		p.errorf("line %d: unrecognized label %q", g.Row+2, g.Token)
	}

	var fire, notFire int
	for _, l := range ds.Labels() {
		switch l {
		case domain.LabelFire:
			fire++
		case domain.LabelNotFire:
			notFire++
		}
	}
	if fire == 0 {
		p.errorf("no fire samples")
	}
	if notFire == 0 {
		p.errorf("no not-fire samples")
	}
	p.notef("%d fire, %d not fire, %d unlabeled", fire, notFire, len(ds.LabelGaps))
	return p
}

// ── Phase 4: Features ──
// Each feature must be a numeric column without missing cells.

func validateFeatures(ds *domain.Dataset, features []string) *phase {
	p := &phase{name: "Phase 4: Features (numeric coverage)"}
	for _, name := range features {
		col, err := ds.Column(name)
		if err != nil {
			p.errorf("feature %q: %v", name, err)
			continue
		}
		if !col.Numeric() {
			p.errorf("feature %q is not numeric", col.Name)
			continue
		}
		if missing := len(col.Values) - len(col.Floats()); missing > 0 {
			p.errorf("feature %q has %d missing values", col.Name, missing)
		}
	}
	return p
}

// ── Phase 5: Model ──
// Scores the classifier artifact on every fully populated, labeled row.

func validateModel(ctx context.Context, ds *domain.Dataset, path string, minAccuracy float64) *phase {
	p := &phase{name: "Phase 5: Model (artifact vs labels)"}

	clf, err := model.LoadPipeline(path)
	if err != nil {
		p.errorf("load artifact: %v", err)
		return p
	}
	if !ds.HasTarget() {
		p.notef("skipped: no target column")
		return p
	}

	cols := make([]domain.Column, 0, len(clf.FeatureNames()))
	for _, name := range clf.FeatureNames() {
		col, err := ds.Column(name)
		if err != nil {
			p.errorf("artifact feature %q: %v", name, err)
			continue
		}
		if !col.Numeric() {
			p.errorf("artifact feature %q is not numeric", name)
			continue
		}
		cols = append(cols, col)
	}
	if !p.passed() {
		return p
	}

	var scored, agreed int
	labels := ds.Labels()
	vec := make([]float64, len(cols))
rows:
	for i, label := range labels {
		if label == domain.LabelMissing {
			continue
		}
		for j, c := range cols {
			if c.Values[i].Missing {
				continue rows
			}
			vec[j] = c.Values[i].Number
		}
		got, err := clf.Predict(ctx, vec)
		if err != nil {
			p.errorf("line %d: %v", i+2, err)
			continue
		}
		scored++
		if domain.Label(got) == label {
			agreed++
		}
	}

	if scored == 0 {
		p.errorf("no complete labeled rows to score")
		return p
	}
	accuracy := float64(agreed) / float64(scored)
	p.notef("accuracy %.3f over %d rows", accuracy, scored)
	if accuracy < minAccuracy {
		p.errorf("accuracy %.3f is below the required %.3f", accuracy, minAccuracy)
	}
	return p
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
