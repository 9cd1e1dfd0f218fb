package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thodel/outremer/internal/domain/services"
	"github.com/thodel/outremer/internal/infrastructure/parsers"
)

func newLinkCmd() *cobra.Command {
	var (
		inputDir      string
		outDir        string
		authorityPath string
		heuristic     bool
	)

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Extract person mentions from source texts and link them to the authority file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(depsOptions{heuristic: heuristic}, func(d *Deps) error {
				records, err := parsers.ParseAuthority(authorityPath)
				if err != nil {
					return err
				}
				index := services.BuildAuthorityIndex(records, d.Log)

				result, err := d.LinkHandler.HandleDirectory(cmd.Context(), inputDir, outDir, index)
				if err != nil {
					return err
				}

				fmt.Printf("Linked %d files: %d mentions, %d links\n",
					result.TotalFiles, result.TotalMentions, result.TotalLinks)
				for _, e := range result.Errors {
					fmt.Printf("  skipped: %v\n", e)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&inputDir, "input-dir", "texts", "Directory of source .txt files")
	cmd.Flags().StringVar(&outDir, "out", "data", "Output directory for document artifacts")
	cmd.Flags().StringVar(&authorityPath, "authority", "data/authority.json", "Authority JSON file")
	cmd.Flags().BoolVar(&heuristic, "heuristic", false, "Use regex extraction even when an LLM is configured")

	return cmd
}
