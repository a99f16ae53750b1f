package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/askiada/go-toolplan/internal/config"
	"github.com/askiada/go-toolplan/internal/ctxlog"
	"github.com/askiada/go-toolplan/pkg/planner"
	"github.com/askiada/go-toolplan/pkg/planner/catalog"
	"github.com/askiada/go-toolplan/pkg/planner/measure"
)

const (
	metricsOff        = ""
	metricsJSON       = "json"
	metricsPrometheus = "prometheus"
)

var ErrInvalidFlag = errors.New("invalid flag")

// globalFlags holds the persistent flags of the root command.
type globalFlags struct {
	configPath  string
	catalogPath string
	logLevel    string
	logFormat   string
	metrics     string
}

// app is the state built before every subcommand runs.
type app struct {
	flags    globalFlags
	cfg      config.Config
	planner  *planner.Planner
	measure  *measure.PrometheusMeasure
	registry *prometheus.Registry
	close    func(ctx context.Context) error
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:           "toolplan",
		Short:         "Plan analysis pipelines over a tool catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.flags.configPath, "config", "", "Path to the YAML configuration file")
	flags.StringVar(&a.flags.catalogPath, "catalog", "", "Path to a catalog definition file, Neo4j is used when empty")
	flags.StringVar(&a.flags.logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	flags.StringVar(&a.flags.logFormat, "log-format", "", "Log format (json|text)")
	flags.StringVar(&a.flags.metrics, "metrics", metricsOff, "Dump the stage measures on stderr after the run (json|prometheus)")

	root.AddCommand(
		newResolveCmd(a),
		newValidateCmd(a),
		newReplaceCmd(a),
		newPathsCmd(a),
		newDrawCmd(a),
	)

	return root, a
}

// execute runs root and releases the app afterwards, whether the command
// failed or not. Cobra skips the post-run hooks after a failure.
func (a *app) execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)

	teardownErr := a.teardown(ctx, root.ErrOrStderr())
	if err != nil {
		return err
	}

	return teardownErr
}

func (a *app) setup(cmd *cobra.Command) error {
	switch a.flags.metrics {
	case metricsOff, metricsJSON, metricsPrometheus:
	default:
		return errors.Wrapf(ErrInvalidFlag, "--metrics %q must be json or prometheus", a.flags.metrics)
	}

	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return errors.Wrap(err, "unable to load configuration")
	}

	if a.flags.catalogPath != "" {
		cfg.Catalog = a.flags.catalogPath
	}

	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}

	if a.flags.logFormat != "" {
		cfg.Log.Format = a.flags.logFormat
	}

	err = cfg.Validate()
	if err != nil {
		return err
	}

	a.cfg = cfg

	logger := ctxlog.New(cmd.ErrOrStderr(), cfg.Log.Format, cfg.Log.Level)
	ctx := ctxlog.WithLogger(cmd.Context(), logger)
	cmd.SetContext(ctx)

	cat, err := a.openCatalog(ctx)
	if err != nil {
		return err
	}

	opts := []planner.Option{
		planner.WithQueryTimeout(cfg.Planner.QueryTimeout),
		planner.WithMaxPathEdges(cfg.Planner.MaxPathEdges),
		planner.WithTopK(cfg.Planner.TopK),
		planner.WithMaxInsertions(cfg.Planner.MaxInsertions),
		planner.WithTargetCitation(cfg.Planner.TargetCitation),
		planner.WithReplacementLimit(cfg.Planner.ReplacementLimit),
		planner.WithConcurrency(cfg.Planner.Concurrency),
		planner.WithLogger(logger),
	}

	if a.flags.metrics != metricsOff {
		a.registry = prometheus.NewRegistry()
		a.measure = measure.NewPrometheusMeasure(a.registry)
		opts = append(opts, planner.WithMeasure(a.measure))
	}

	a.planner, err = planner.New(cat, opts...)
	if err != nil {
		return errors.Wrap(err, "unable to create planner")
	}

	logger.DebugContext(ctx, "planner ready", "catalog", catalogKind(cfg))

	return nil
}

func (a *app) openCatalog(ctx context.Context) (catalog.Catalog, error) {
	if a.cfg.Catalog != "" {
		mem, err := catalog.LoadMemory(a.cfg.Catalog)
		if err != nil {
			return nil, errors.Wrap(err, "unable to load catalog")
		}

		a.close = func(context.Context) error { return nil }

		return mem, nil
	}

	neo, err := catalog.NewNeo4j(catalog.Neo4jConfig{
		URI:                     a.cfg.Neo4j.URI,
		Username:                a.cfg.Neo4j.Username,
		Password:                a.cfg.Neo4j.Password,
		Database:                a.cfg.Neo4j.Database,
		MaxConnectionPoolSize:   a.cfg.Neo4j.MaxConnectionPoolSize,
		ConnectionTimeout:       a.cfg.Neo4j.ConnectionTimeout,
		MaxTransactionRetryTime: a.cfg.Neo4j.MaxTransactionRetryTime,
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to create neo4j catalog")
	}

	err = neo.Connect(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to neo4j")
	}

	a.close = neo.Close

	return neo, nil
}

// teardown closes the catalog once and dumps the measures of the run.
func (a *app) teardown(ctx context.Context, w io.Writer) error {
	if a.close != nil {
		closeCatalog := a.close
		a.close = nil

		err := closeCatalog(ctx)
		if err != nil {
			return errors.Wrap(err, "unable to close catalog")
		}
	}

	if a.measure == nil {
		return nil
	}

	switch a.flags.metrics {
	case metricsJSON:
		return writeJSON(w, measure.Report(a.measure))
	case metricsPrometheus:
		return writeExposition(w, a.registry)
	}

	return nil
}

func catalogKind(cfg config.Config) string {
	if cfg.Catalog != "" {
		return "memory"
	}

	return "neo4j"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(v)
	if err != nil {
		return errors.Wrap(err, "unable to encode output")
	}

	return nil
}

// writeExposition writes the gathered metrics in the Prometheus text format.
func writeExposition(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "unable to gather metrics")
	}

	for _, family := range families {
		_, err = expfmt.MetricFamilyToText(w, family)
		if err != nil {
			return errors.Wrap(err, "unable to write metrics")
		}
	}

	return nil
}
