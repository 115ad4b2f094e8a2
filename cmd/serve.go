package cmd

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/hgbcccc/ObjectionClassficationUI/internal/config"
	"github.com/hgbcccc/ObjectionClassficationUI/internal/handlers"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the annotation review interface",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}

		handler := handlers.New(cfg)

		// Set up routes
		http.HandleFunc("/api/sessions", handler.HandleSessions)
		http.HandleFunc("/api/sessions/", handler.HandleSessionDetail)
		http.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
			_, err := w.Write([]byte("OK"))
			if err != nil {
				slog.Error("Unable to write healthcheck", "err", err)
			}
		})

		addr := fmt.Sprintf(":%d", cfg.Port)
		slog.Info("Annotation review interface available", "addr", addr)

		if err := http.ListenAndServe(addr, nil); err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8888, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}
