package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thodel/outremer/internal/infrastructure/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration in the current directory",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	path, err := config.WriteDefault(cwd)
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}
