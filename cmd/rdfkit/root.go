package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/geoknoesis/rdfkit/internal/config"
	"github.com/geoknoesis/rdfkit/internal/logging"
	"github.com/geoknoesis/rdfkit/knowledge"
	"github.com/geoknoesis/rdfkit/metrics"
	"github.com/geoknoesis/rdfkit/rdf"
	"github.com/geoknoesis/rdfkit/store"
)

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	configFile  string
	logLevel    string
	verbose     bool
	showMetrics bool
}

// app carries state built by the root command before a subcommand runs.
type app struct {
	flags    globalFlags
	cfg      *config.Config
	logger   zerolog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	stdin    io.Reader
}

func execute(ctx context.Context, args []string) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCmd(os.Stdin)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(stdin io.Reader) *cobra.Command {
	a := &app{stdin: stdin}
	root := &cobra.Command{
		Use:   "rdfkit",
		Short: "Convert and inspect RDF data",
		Long: `rdfkit reads N-Triples data and writes it as N-Triples, Turtle,
Notation3, RDF/XML or JSON-LD.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.reportMetrics,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configFile, "config", "", "Path to a YAML config file")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&a.flags.showMetrics, "metrics", false, "Print collected counters to stderr on exit")

	root.AddCommand(newConvertCmd(a), newStatsCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.flags.configFile)
	if err != nil {
		return err
	}
	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}
	if a.flags.verbose {
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg
	a.logger = logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Output: cmd.ErrOrStderr(),
	})
	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.New(a.registry)
	return nil
}

// loadModel reads each input into its own memory store. No paths, or "-",
// reads stdin.
func (a *app) loadModel(ctx context.Context, paths []string) (*knowledge.Model, error) {
	logger := logging.Component(a.logger, "loader")
	model := knowledge.New(knowledge.WithLogger(logger), knowledge.WithMetrics(a.metrics))
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := a.loadFile(ctx, path, logger)
		if err != nil {
			return nil, err
		}
		model.AddStore(s)
	}
	return model, nil
}

func (a *app) loadFile(ctx context.Context, path string, logger zerolog.Logger) (*store.MemoryStore, error) {
	in := a.stdin
	scope := "stdin"
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in, scope = f, path
	}
	s := store.NewMemoryStore(store.WithScope(scope), store.WithLogger(logger), store.WithMetrics(a.metrics))
	reader := rdf.NewNTriplesReader(in, rdf.WithContext(ctx))
	n, err := s.Import(reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", scope, err)
	}
	logger.Info().Str("input", scope).Int("statements", n).Msg("loaded")
	return s, nil
}

func (a *app) reportMetrics(cmd *cobra.Command, _ []string) {
	if !a.flags.showMetrics || a.registry == nil {
		return
	}
	families, err := a.registry.Gather()
	if err != nil {
		a.logger.Warn().Err(err).Msg("gather metrics")
		return
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })
	out := cmd.ErrOrStderr()
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			value := m.GetCounter().GetValue() + m.GetGauge().GetValue()
			labels := ""
			for _, lp := range m.GetLabel() {
				labels += fmt.Sprintf(" %s=%s", lp.GetName(), lp.GetValue())
			}
			fmt.Fprintf(out, "%s%s %g\n", mf.GetName(), labels, value)
		}
	}
}
