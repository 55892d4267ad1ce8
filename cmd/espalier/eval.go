package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/cli"
)

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval [document]",
	Short: "Evaluate an arithmetic expression document",
	Long: `Reads a YAML or JSON expression document and evaluates it on the fused
engine. Pass '-' to read the document from stdin.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "-"
		if len(args) > 0 {
			path = args[0]
		}

		jsonMode, _ := cmd.Flags().GetBool("json")
		traceMode, _ := cmd.Flags().GetBool("trace")
		plain, _ := cmd.Flags().GetBool("plain")
		watch, _ := cmd.Flags().GetBool("watch")
		debug, _ := cmd.Flags().GetBool("debug")
		redisAddr, _ := cmd.Flags().GetString("redis")
		journalDir, _ := cmd.Flags().GetString("journal")
		versioned, _ := cmd.Flags().GetBool("versioned")

		if watch && jsonMode {
			fmt.Println("Error: --watch and --json cannot be used together.")
			os.Exit(1)
		}

		err := cli.Execute(cli.EvalOptions{
			Path:  path,
			JSON:  jsonMode,
			Trace: traceMode,
			Plain: plain,
			Debug: debug,
			Watch: watch,
			Store: cli.StoreOptions{
				RedisAddr:  redisAddr,
				JournalDir: journalDir,
				Versioned:  versioned,
			},
			Out: os.Stdout,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().Bool("json", false, "Print the result as JSON")
	evalCmd.Flags().BoolP("trace", "t", false, "Replay the run step by step")
	evalCmd.Flags().Bool("plain", false, "Plain replay output (no markdown styling)")
	evalCmd.Flags().BoolP("watch", "w", false, "Re-evaluate whenever the document changes")
	evalCmd.Flags().String("redis", "", "Persist traces to this Redis address")
	evalCmd.Flags().String("journal", "", "Persist traces to this journal directory")
	evalCmd.Flags().Bool("versioned", false, "Commit journal writes to version control")
}
