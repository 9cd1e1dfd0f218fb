package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReconcileCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Query Wikidata for unmatched person names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(depsOptions{reconcile: true}, func(d *Deps) error {
				result, err := d.ReconcileHandler.Handle(cmd.Context(), dir)
				if err != nil {
					return err
				}

				fmt.Printf("Reconciled %d documents: %d queried, %d from cache\n",
					result.Documents, result.Queried, result.Cached)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dir, "site-dir", "data", "Directory of per-document artifacts")

	return cmd
}
