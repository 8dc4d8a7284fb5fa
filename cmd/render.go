package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/jsphweid/loopgen/constants"
	"github.com/jsphweid/loopgen/model"
	"github.com/spf13/cobra"
)

var renderReq model.RenderRequest

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderReq.Genre, "genre", "g", "", "genre, e.g. house")
	f.StringVarP(&renderReq.Style, "style", "s", "", "style within the genre, e.g. makompo")
	f.StringVarP(&renderReq.InspiredBy, "inspired-by", "i", "", "prefer patterns inspired by this artist")
	f.Float64Var(&renderReq.BPM, "bpm", constants.DefaultBPM, "tempo in beats per minute")
	f.Int64Var(&renderReq.Seed, "seed", 0, "seed for reproducible selection (0 picks one)")
	f.StringVarP(&renderReq.OutputPath, "output", "o", "", "output WAV path (default <output-dir>/<genre>-<style>.wav)")
	renderCmd.MarkFlagRequired("genre")
	renderCmd.MarkFlagRequired("style")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Renders a drum loop and its stems",
	Long: `Renders a 64 step drum loop to a WAV file and writes a zip of per-instrument
stems next to it.

Example:
  loopgen render --genre house --style makompo --bpm 120 -o out/loop.wav`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		req := renderReq
		if req.OutputPath == "" {
			req.OutputPath = filepath.Join(cfg.OutputDir, fmt.Sprintf("%s-%s.wav", req.Genre, req.Style))
		}

		logger := newLogger()
		catalog, err := NewCatalog(cfg)
		if err != nil {
			return err
		}
		e, err := NewEngine(cfg, logger, catalog)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		res, err := e.Render(ctx, req)
		if err != nil {
			return describe(err)
		}

		fmt.Printf("pattern: %s (inspired by %s)\n", res.Entry.ID, res.Entry.InspiredBy)
		fmt.Printf("instruments: %v\n", res.Roles)
		fmt.Printf("seed: %d\n", res.Seed)
		fmt.Printf("loop: %s (%.0f ms)\n", res.LoopPath, res.DurationMs)
		if res.ArchivePath != "" {
			fmt.Printf("stems: %s\n", res.ArchivePath)
		}
		for _, d := range res.Diagnostics {
			fmt.Printf("warning: %v\n", d)
		}
		return nil
	},
}
