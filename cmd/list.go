package cmd

import (
	"fmt"

	"github.com/jsphweid/loopgen/library"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists genres and styles",
	Long:  `Lists the genres and styles of the pattern library with their entry counts.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		lib, err := library.Load(cfg.PatternsPath)
		if err != nil {
			return err
		}
		for _, g := range lib.Summaries() {
			fmt.Printf("%s\n", g.Name)
			for _, s := range g.Styles {
				fmt.Printf("  %s (%d patterns)\n", s.Name, s.Entries)
			}
		}
		return nil
	},
}
