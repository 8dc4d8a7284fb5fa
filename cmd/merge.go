package cmd

import (
	"fmt"

	"github.com/jsphweid/loopgen/library"
	"github.com/spf13/cobra"
)

var mergeOutput string

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "merged library path (default: configured patterns path)")
	rootCmd.AddCommand(mergeCmd)
}

var mergeCmd = &cobra.Command{
	Use:   "merge <dir>",
	Short: "Merges pattern files into one library",
	Long: `Merges every <genre>-<style>.json file in dir into a single pattern library.
Entries whose pattern_id was already merged are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out := mergeOutput
		if out == "" {
			out = cfg.PatternsPath
		}

		raw, err := library.MergeDir(args[0], newLogger())
		if err != nil {
			return err
		}
		if err := library.Write(out, raw); err != nil {
			return err
		}
		fmt.Printf("Merged drum patterns written to %s\n", out)
		return nil
	},
}
