package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpserver "github.com/0xcro3dile/eley-go/internal/infrastructure/http"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API and chat page",
	Long: `Starts the HTTP server.

Endpoints:
  POST /api/ask      {"query": "..."} -> reply
  GET  /api/facts    known facts
  POST /api/facts    {"question": "...", "answer": "..."} teaches a fact
  GET  /api/quota    fallback usage
  GET  /api/health   liveness
  GET  /             chat page`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	assistant, err := a.newAssistant(ctx, assistantOptions{device: true})
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	server := httpserver.NewServer(assistant, a.resolver, addr, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx)
	})
	g.Go(func() error {
		return a.watchVocabulary(gctx, assistant)
	})
	return g.Wait()
}
