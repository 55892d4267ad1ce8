package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/cli"
)

// traceCmd represents the trace command group
var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Inspect stored traces",
	Long:  `Lists and replays traces persisted by 'eval' runs.`,
}

var traceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored trace ids, oldest first",
	Run: func(cmd *cobra.Command, args []string) {
		err := cli.RunTraceList(context.Background(), traceOptions(cmd, ""))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var traceShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Replay one stored trace",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := cli.RunTraceShow(context.Background(), traceOptions(cmd, args[0]))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func traceOptions(cmd *cobra.Command, id string) cli.TraceOptions {
	jsonMode, _ := cmd.Flags().GetBool("json")
	plain, _ := cmd.Flags().GetBool("plain")
	debug, _ := cmd.Flags().GetBool("debug")
	redisAddr, _ := cmd.Flags().GetString("redis")
	journalDir, _ := cmd.Flags().GetString("journal")

	return cli.TraceOptions{
		ID:    id,
		JSON:  jsonMode,
		Plain: plain,
		Debug: debug,
		Store: cli.StoreOptions{
			RedisAddr:  redisAddr,
			JournalDir: journalDir,
		},
		Out: os.Stdout,
	}
}

func init() {
	rootCmd.AddCommand(traceCmd)
	traceCmd.AddCommand(traceListCmd)
	traceCmd.AddCommand(traceShowCmd)

	traceCmd.PersistentFlags().String("redis", "", "Read traces from this Redis address")
	traceCmd.PersistentFlags().String("journal", "", "Read traces from this journal directory")
	traceCmd.PersistentFlags().Bool("json", false, "Print traces as JSON")
	traceShowCmd.Flags().Bool("plain", false, "Plain replay output (no markdown styling)")
}
