package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/cli"
)

// findCmd represents the find command
var findCmd = &cobra.Command{
	Use:   "find [dir]",
	Short: "Find files matching a rule",
	Long: `Walks a directory and prints every file that satisfies the rule. The rule
comes from a --rules document or from predicate flags, which are combined
with AND.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		rules, _ := cmd.Flags().GetString("rules")
		nameHas, _ := cmd.Flags().GetString("name-has")
		nameSuffix, _ := cmd.Flags().GetString("name-suffix")
		contentHas, _ := cmd.Flags().GetString("content-has")
		executable, _ := cmd.Flags().GetBool("executable")
		minSize, _ := cmd.Flags().GetString("min-size")
		maxSize, _ := cmd.Flags().GetString("max-size")
		jsonMode, _ := cmd.Flags().GetBool("json")
		debug, _ := cmd.Flags().GetBool("debug")

		err := cli.RunFind(context.Background(), cli.FindOptions{
			Root:       root,
			RulesPath:  rules,
			NameHas:    nameHas,
			NameSuffix: nameSuffix,
			ContentHas: contentHas,
			Executable: executable,
			MinSize:    minSize,
			MaxSize:    maxSize,
			JSON:       jsonMode,
			Debug:      debug,
			Out:        os.Stdout,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(findCmd)

	findCmd.Flags().StringP("rules", "r", "", "Rule document (YAML or JSON)")
	findCmd.Flags().String("name-has", "", "Match files whose name contains this")
	findCmd.Flags().String("name-suffix", "", "Match files whose name ends with this")
	findCmd.Flags().String("content-has", "", "Match files whose contents contain this")
	findCmd.Flags().Bool("executable", false, "Match executable files")
	findCmd.Flags().String("min-size", "", "Match files at least this big (e.g. 1KB)")
	findCmd.Flags().String("max-size", "", "Match files smaller than this (e.g. 1MB)")
	findCmd.Flags().Bool("json", false, "Print matches as JSON")
}
