package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/couchcryptid/fire-risk-dashboard/internal/adapter/csvfile"
	"github.com/couchcryptid/fire-risk-dashboard/internal/adapter/xlsx"
	"github.com/couchcryptid/fire-risk-dashboard/internal/analysis"
	"github.com/couchcryptid/fire-risk-dashboard/internal/config"
	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
	"github.com/couchcryptid/fire-risk-dashboard/internal/model"
	"github.com/couchcryptid/fire-risk-dashboard/internal/observability"
	"github.com/couchcryptid/fire-risk-dashboard/internal/pipeline"
	"github.com/couchcryptid/fire-risk-dashboard/internal/prediction"
	"github.com/spf13/cobra"
)

// app is the per-invocation wiring shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	session *pipeline.Session
}

func setup(cmd *cobra.Command, datasetPath string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if datasetPath != "" {
		cfg.DatasetPath = datasetPath
	}

	logger := observability.NewLoggerTo(cmd.ErrOrStderr(), cfg)
	metrics := observability.NewUnregisteredMetrics()

	readers := map[string]pipeline.TableReader{
		".csv":  csvfile.NewReader(),
		".xlsx": xlsx.NewReader(),
	}
	p := pipeline.New(readers, pipeline.NewTransformer(cfg.TargetAliases), logger, metrics)

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		session: pipeline.NewSession(p, cfg.DatasetPath),
	}, nil
}

func newSummaryCmd(datasetPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print sample counts and the class distribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup(cmd, *datasetPath)
			if err != nil {
				return err
			}
			ds, err := rt.session.Dataset(cmd.Context())
			if domain.IsFatal(err) {
				return err
			}
			return printSummary(cmd.OutOrStdout(), ds)
		},
	}
}

func printSummary(out io.Writer, ds *domain.Dataset) error {
	fmt.Fprintf(out, "Dataset:  %s (%d rows, %d columns)\n", ds.Source, ds.Len(), len(ds.Columns))

	if !ds.HasTarget() {
		col := analysis.FallbackColumn(ds)
		fmt.Fprintf(out, "No class/target column found; value counts of %q:\n\n", col)
		if col == "" {
			return nil
		}
		counts, err := analysis.RawValueCounts(ds, col)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "VALUE\tCOUNT")
		for _, c := range counts {
			fmt.Fprintf(tw, "%s\t%d\n", c.Value, c.Count)
		}
		return tw.Flush()
	}

	s, err := analysis.ClassDistribution(ds)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Target:   %s\n\n", s.Target)
	fmt.Fprintf(out, "Total samples:   %d\n", s.Total)
	fmt.Fprintf(out, "Fire cases:      %d\n", s.Fire)
	fmt.Fprintf(out, "No fire cases:   %d\n", s.NoFire)
	if s.Missing > 0 {
		fmt.Fprintf(out, "Missing labels:  %d\n", s.Missing)
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CLASS\tCOUNT")
	for _, c := range s.Classes {
		fmt.Fprintf(tw, "%s\t%d\n", c.Class, c.Count)
	}
	return tw.Flush()
}

func newDescribeCmd(datasetPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Print descriptive statistics of every numeric column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup(cmd, *datasetPath)
			if err != nil {
				return err
			}
			ds, err := rt.session.Dataset(cmd.Context())
			if domain.IsFatal(err) {
				return err
			}
			return printDescribe(cmd.OutOrStdout(), analysis.Describe(ds))
		},
	}
}

func printDescribe(out io.Writer, stats []analysis.ColumnStats) error {
	if len(stats) == 0 {
		fmt.Fprintln(out, "No numeric columns found.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "COLUMN\tCOUNT\tMEAN\tSTD\tMIN\t25%\t50%\t75%\tMAX\t")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			s.Column, s.Count,
			num(s.Mean), num(s.Std), num(s.Min), num(s.Q1), num(s.Median), num(s.Q3), num(s.Max))
	}
	return tw.Flush()
}

func num(f *float64) string {
	if f == nil {
		return "NaN"
	}
	return strconv.FormatFloat(*f, 'f', 3, 64)
}

func newPredictCmd(datasetPath *string) *cobra.Command {
	var (
		raw      []string
		jsonOut  bool
		noBounds bool
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict fire risk for one observation",
		Long: `Predict fire risk for one observation.

Features are given as --feature name=value. Features left out default to
their mean in the dataset, and supplied values must lie within the range the
dataset covers unless --no-bounds is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			given, err := parseFeatures(raw)
			if err != nil {
				return err
			}
			rt, err := setup(cmd, *datasetPath)
			if err != nil {
				return err
			}
			p, err := rt.predict(cmd.Context(), given, !noBounds)
			if err != nil {
				return err
			}
			return printPrediction(cmd.OutOrStdout(), p, jsonOut)
		},
	}
	cmd.Flags().StringArrayVarP(&raw, "feature", "f", nil, "feature value as name=value (repeatable)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the prediction as JSON")
	cmd.Flags().BoolVar(&noBounds, "no-bounds", false, "do not check values against the dataset range")
	return cmd
}

func (rt *app) predict(ctx context.Context, given map[string]float64, bounded bool) (domain.Prediction, error) {
	if !rt.cfg.ClassifierEnabled() {
		return domain.Prediction{}, errors.New("no classifier configured: set MODEL_ARTIFACT or MODEL_URL")
	}
	classifier, err := model.NewClassifier(rt.cfg, rt.logger)
	if err != nil {
		return domain.Prediction{}, err
	}

	features := make(map[string]float64, len(given))
	for k, v := range given {
		features[domain.NormalizeColumnName(k)] = v
	}

	var opts []prediction.Option
	ds, err := rt.session.Dataset(ctx)
	if domain.IsFatal(err) {
		rt.logger.Warn("dataset unavailable, features neither defaulted nor bounded", "error", err)
	} else {
		ranges := make(map[string]prediction.Range)
		for _, name := range classifier.FeatureNames() {
			b, err := analysis.FeatureBounds(ds, []string{name})
			if err != nil {
				continue
			}
			if _, ok := features[name]; !ok {
				features[name] = b[0].Mean
			}
			ranges[name] = prediction.Range{Min: b[0].Min, Max: b[0].Max}
		}
		if bounded {
			opts = append(opts, prediction.WithBounds(ranges))
		}
	}

	svc := prediction.NewService(classifier, rt.logger, rt.metrics, opts...)
	return svc.Predict(ctx, features)
}

func parseFeatures(raw []string) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --feature %q: want name=value", kv)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --feature %q: %w", kv, err)
		}
		out[strings.TrimSpace(name)] = f
	}
	return out, nil
}

func printPrediction(out io.Writer, p domain.Prediction, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	if p.FireRisk {
		fmt.Fprintf(out, "FIRE RISK DETECTED (probability %.3f)\n", p.Probability)
	} else {
		fmt.Fprintf(out, "No fire risk detected (probability %.3f)\n", p.Probability)
	}

	names := make([]string, 0, len(p.Features))
	for n := range p.Features {
		names = append(names, n)
	}
	sort.Strings(names)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, n := range names {
		fmt.Fprintf(tw, "  %s\t%g\n", n, p.Features[n])
	}
	return tw.Flush()
}
