package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aretw0/formwork"
	"github.com/aretw0/formwork/internal/presentation/tui"
	httpAdapter "github.com/aretw0/formwork/pkg/adapters/http"
	"github.com/aretw0/formwork/pkg/session"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves stored forms over a JSON API. Designer commands are posted to
/forms/{id}/commands and document diffs stream from /forms/{id}/events.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			a.cfg.Server.Addr = addr
		}
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(cmd.OutOrStdout(), strings.TrimSpace(formwork.Version))
		}

		opts := []httpAdapter.Option{httpAdapter.WithLogger(a.logger), httpAdapter.WithKinds(a.kinds)}
		if noMetrics, _ := cmd.Flags().GetBool("no-metrics"); !noMetrics {
			opts = append(opts, httpAdapter.WithMetrics(a.enableMetrics()))
		}
		lib, err := a.templates()
		if err != nil {
			return err
		}
		if lib != nil {
			opts = append(opts, httpAdapter.WithTemplates(lib))
		}

		streams := httpAdapter.NewStreamManager(a.logger)
		mgr := a.newManager(session.WithListener(streams.Publish))
		opts = append(opts, httpAdapter.WithStreams(streams))

		srv := &http.Server{
			Addr:              a.cfg.Server.Addr,
			Handler:           httpAdapter.NewHandler(mgr, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			a.logger.Info("Starting Formwork Server", "addr", srv.Addr, "driver", a.cfg.Storage.Driver)
			serverErrors <- srv.ListenAndServe()
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			a.logger.Info("Start shutdown")
		}

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("Graceful shutdown did not complete", "timeout", a.cfg.Server.ShutdownTimeout, "err", err)
			if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("Error killing server", "err", err)
			}
		}
		if err := mgr.CloseAll(shutdownCtx); err != nil {
			return fmt.Errorf("failed to save open forms: %w", err)
		}
		a.logger.Info("Formwork Server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides server.addr)")
	serveCmd.Flags().Bool("no-metrics", false, "Do not expose /metrics")
	serveCmd.Flags().BoolP("quiet", "q", false, "Skip the banner")
}
