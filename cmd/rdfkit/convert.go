package main

import (
	"github.com/spf13/cobra"

	"github.com/geoknoesis/rdfkit/internal/logging"
	"github.com/geoknoesis/rdfkit/rdf"
)

type convertFlags struct {
	to       string
	base     string
	prefixes []string
}

func newConvertCmd(a *app) *cobra.Command {
	var flags convertFlags
	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Convert N-Triples input to another serialization",
		Long: `Read N-Triples files (or stdin when none are given) and write every
statement to stdout in the target format.

Formats: ntriples, turtle, n3, rdfxml, jsonld.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd, args, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.to, "to", "t", "", "Output format (default from config, else turtle)")
	cmd.Flags().StringVar(&flags.base, "base", "", "Base URI for relative references")
	cmd.Flags().StringArrayVarP(&flags.prefixes, "prefix", "p", nil, "Namespace binding prefix=uri (repeatable)")
	return cmd
}

func (a *app) runConvert(cmd *cobra.Command, args []string, flags convertFlags) error {
	cfg := a.cfg
	if flags.to != "" {
		cfg.Format = flags.to
	}
	if flags.base != "" {
		cfg.Base = flags.base
	}
	for _, binding := range flags.prefixes {
		if err := cfg.SetPrefix(binding); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	format, err := cfg.OutputFormat()
	if err != nil {
		return err
	}

	model, err := a.loadModel(cmd.Context(), args)
	if err != nil {
		return err
	}

	logger := logging.Component(a.logger, "writer")
	w, err := rdf.NewWriter(cmd.OutOrStdout(), format,
		rdf.WithNamespaces(cfg.Namespaces()),
		rdf.WithBaseURI(cfg.Base),
		rdf.WithLogger(logger),
		rdf.WithMetrics(a.metrics),
	)
	if err != nil {
		return err
	}
	if err := model.Write(w); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	logger.Info().Str("format", string(format)).Int("statements", model.StatementCount()).Msg("converted")
	return nil
}
