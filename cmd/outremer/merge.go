package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thodel/outremer/internal/application/handlers"
)

func newMergeCmd() *cobra.Command {
	var opts handlers.MergeOptions

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge authority, Wikidata and extracted persons into the unified graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(depsOptions{store: true}, func(d *Deps) error {
				result, err := d.MergeHandler.Handle(cmd.Context(), opts)
				if err != nil {
					return err
				}

				fmt.Printf("Merged %d entities (%d flagged for review) -> %s\n",
					result.Entities, result.Flagged, result.OutPath)
				fmt.Printf("  authority: %d, wikidata matched: %d, wikidata added: %d, extracted added: %d\n",
					result.Stats.AuthoritySeeded, result.Stats.WikidataMatched,
					result.Stats.WikidataAdded, result.Stats.ExtractedAdded)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.AuthorityPath, "authority", "data/authority.json", "Authority JSON file")
	cmd.Flags().StringVar(&opts.WikidataDir, "wikidata-dir", "", "Wikidata tabular export directory (optional)")
	cmd.Flags().StringVar(&opts.DocumentsDir, "site-dir", "data", "Directory of per-document artifacts")
	cmd.Flags().StringVar(&opts.OutPath, "out", "data/unified_kg.json", "Output path for the unified graph")

	return cmd
}
