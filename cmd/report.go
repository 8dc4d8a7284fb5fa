package cmd

import (
	"fmt"

	"github.com/jsphweid/loopgen/library"
	"github.com/jsphweid/loopgen/model"
	"github.com/jsphweid/loopgen/sample"
	"github.com/jsphweid/loopgen/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Creates a coverage report",
	Long:  `Reports pattern coverage per style and sample coverage per genre and instrument.`,
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
		pool, err := sample.NewPool(cfg.SamplesDir())
		if err != nil {
			return err
		}
		fmt.Printf("samples: %s (%v genres)\n", pool.Root(), len(pool.Genres()))
		for _, r := range analyzeStyles(lib, pool) {
			printStyleReport(r)
		}
		return nil
	},
}

type styleReport struct {
	genre   string
	style   string
	entries int

	// entries carrying a non-empty pattern, per role
	patterns map[model.Role]int
	// clips available in the genre, per role
	clips map[model.Role]int
	// entries that would fail with no voices selected
	silent int
}

func analyzeStyles(lib *library.Library, pool *sample.Pool) []styleReport {
	var res []styleReport
	for _, g := range lib.Genres() {
		for _, s := range g.Styles() {
			r := styleReport{
				genre:    g.Name,
				style:    s.Name,
				entries:  len(s.Entries),
				patterns: make(map[model.Role]int),
				clips:    make(map[model.Role]int),
			}
			for _, role := range model.AllRoles {
				r.clips[role] = pool.Count(role, g.Name)
			}
			for _, e := range s.Entries {
				usable := false
				for _, role := range model.AllRoles {
					if len(e.Pattern(role)) == 0 {
						continue
					}
					r.patterns[role]++
					if r.clips[role] > 0 {
						usable = true
					}
				}
				if !usable {
					r.silent++
				}
			}
			res = append(res, r)
		}
	}
	return res
}

func printStyleReport(r styleReport) {
	var counts []int
	for _, role := range model.AllRoles {
		counts = append(counts, r.clips[role])
	}
	fmt.Printf("%s/%s: %v patterns, %v clips\n", r.genre, r.style, r.entries, util.Sum(counts))
	for _, role := range model.AllRoles {
		fmt.Printf("  %-10s patterns: %3d  clips: %3d\n", role, r.patterns[role], r.clips[role])
	}
	if r.silent > 0 {
		fmt.Printf("  %v patterns cannot produce any voice\n", r.silent)
	}
}
