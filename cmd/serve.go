package cmd

import (
	"net/http"

	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

var listenAddr string

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the render API",
	Long:  `Serves loop renders over HTTP.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if listenAddr != "" {
			cfg.ListenAddr = listenAddr
		}
		logger := newLogger()

		server, err := NewServer(cfg, logger)
		if err != nil {
			return err
		}
		handler := cors.Default().Handler(server.Router())
		logger.Info("listening", "addr", cfg.ListenAddr, "output_dir", cfg.OutputDir)
		return http.ListenAndServe(cfg.ListenAddr, handler)
	},
}
