package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/formwork/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes stored forms as MCP tools so that AI agents can build and edit forms.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		// Logs must never reach stdout: it carries the JSON-RPC stream.
		a, err := setup(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		opts := []mcp.Option{mcp.WithLogger(a.logger), mcp.WithKinds(a.kinds)}
		lib, err := a.templates()
		if err != nil {
			return err
		}
		if lib != nil {
			opts = append(opts, mcp.WithTemplates(lib))
		}
		mgr := a.newManager()
		srv := mcp.NewServer(mgr, opts...)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		switch transport {
		case "stdio":
			a.logger.Info("Starting Formwork MCP Server (Stdio)")
			err = srv.ServeStdio()
		case "sse":
			a.logger.Info("Starting Formwork MCP Server (SSE)", "port", port)
			err = srv.ServeSSE(ctx, port)
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}

		if cerr := mgr.CloseAll(context.Background()); cerr != nil {
			err = errors.Join(err, cerr)
		}
		if err != nil {
			return fmt.Errorf("MCP server execution failed: %w", err)
		}
		a.logger.Info("MCP Server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
