package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/cli"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [document]",
	Short: "Render an expression document as a Mermaid diagram",
	Long: `Flattens the expression into its indexed form and prints Mermaid
flowchart syntax for it. Pass '-' to read the document from stdin.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "-"
		if len(args) > 0 {
			path = args[0]
		}
		debug, _ := cmd.Flags().GetBool("debug")

		err := cli.RunGraph(cli.GraphOptions{
			Path:  path,
			Debug: debug,
			Out:   os.Stdout,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
