package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/revlog/internal/api"
	"github.com/sprite-ai/revlog/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Serve a review log over HTTP",
	Long: `Start an HTTP server exposing one review log. Appends over the API
are persisted to the file in its own encoding.

Endpoints:
  GET  /health          — Health check
  GET  /api/review      — The full review log
  GET  /api/state       — Derived state (status, reviewers, resolved)
  POST /api/activities  — Append an activity or reply
  POST /api/merge       — Merge another copy of the log
  GET  /api/ws          — WebSocket pushing review+state snapshots`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", "", "address to listen on (default from config)")
	serveCmd.Flags().IntP("port", "p", 0, "port to listen on (default from config)")
	serveCmd.Flags().Bool("watch", false, "push external file edits to WebSocket clients")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Serve.Addr
	}
	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		port = cfg.Serve.Port
	}
	watch, _ := cmd.Flags().GetBool("watch")
	if !cmd.Flags().Changed("watch") {
		watch = cfg.Serve.Watch
	}

	listen := fmt.Sprintf("%s:%d", addr, port)
	srv, err := api.New(listen, args[0], watch)
	if err != nil {
		return err
	}
	return srv.ListenAndServe()
}
