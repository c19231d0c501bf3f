package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/geoknoesis/rdfkit/rdf"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [files...]",
		Short: "Print statement, entity and predicate counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := a.loadModel(cmd.Context(), args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "stores:     %d\n", len(model.Storage().Stores()))
			fmt.Fprintf(out, "statements: %d\n", model.StatementCount())
			fmt.Fprintf(out, "entities:   %d\n", len(distinct(model.Entities())))
			fmt.Fprintf(out, "predicates: %d\n", len(distinct(model.Predicates())))
			return nil
		},
	}
}

// distinct drops the duplicates the aggregate reports for nodes present in
// more than one store.
func distinct(nodes []rdf.Node) []rdf.Node {
	slices.SortFunc(nodes, func(a, b rdf.Node) int { return rdf.Compare(a, b) })
	return slices.CompactFunc(nodes, func(a, b rdf.Node) bool { return rdf.Equal(a, b) })
}
