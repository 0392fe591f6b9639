package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/caseline-ai/caseline/internal/cli"
	"github.com/caseline-ai/caseline/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "caselined",
		Short: "Caseline daemon",
		Long:  "Caseline daemon for running the judgment retrieval API server",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
