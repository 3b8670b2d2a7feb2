package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	serveradapter "github.com/hylla/pipeline/internal/adapters/server"
	servercommon "github.com/hylla/pipeline/internal/adapters/server/common"
	"github.com/spf13/cobra"
)

// serveFlags holds serve overrides. Empty values fall back to the [server] config section.
type serveFlags struct {
	httpBind     string
	apiEndpoint  string
	mcpEndpoint  string
	snapshotPath string
}

// newServeCommand builds the serve subcommand.
func newServeCommand(opts *rootOptions) *cobra.Command {
	var flags serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over the HTTP API and MCP",
		Long: `Serve loads the board from the catalog and exposes it to HTTP and MCP clients
until interrupted.

Examples:
  # Serve with the configured bind address
  pipeline serve

  # Restore an exported arrangement and serve it on another port
  pipeline serve --http 127.0.0.1:9000 --snapshot board.json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts, flags)
		},
	}
	cmd.Flags().StringVar(&flags.httpBind, "http", "", "HTTP listen address (default from server.http_bind)")
	cmd.Flags().StringVar(&flags.apiEndpoint, "api-endpoint", "", "HTTP API base endpoint (default from server.api_endpoint)")
	cmd.Flags().StringVar(&flags.mcpEndpoint, "mcp-endpoint", "", "MCP streamable HTTP endpoint (default from server.mcp_endpoint)")
	cmd.Flags().StringVar(&flags.snapshotPath, "snapshot", "", "start from an exported snapshot instead of the catalog order")
	return cmd
}

// runServe runs the serve subcommand flow.
func runServe(ctx context.Context, opts *rootOptions, flags serveFlags) error {
	rt, err := openRuntime(opts, "serve", false)
	if err != nil {
		return err
	}
	defer rt.Close(opts.stderr)
	logger := rt.logger
	logger.Info("command flow start", "command", "serve")

	if _, err := rt.loadBoard(ctx); err != nil {
		return err
	}
	if path := strings.TrimSpace(flags.snapshotPath); path != "" {
		snap, err := readSnapshotFile(path)
		if err != nil {
			return err
		}
		imported, err := rt.svc.ImportSnapshot(systemContext(ctx), snap)
		if err != nil {
			logger.Error("snapshot import failed", "path", path, "err", err)
			return fmt.Errorf("import snapshot: %w", err)
		}
		logger.Info("snapshot imported", "path", path, "items", len(imported.Items), "revision", imported.Revision)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	adapter := servercommon.NewAppServiceAdapter(rt.svc)
	cfg := rt.serverConfig(flags)
	logger.Info("serving board", "http", cfg.HTTPBind, "api", cfg.APIEndpoint, "mcp", cfg.MCPEndpoint)
	if err := serveCommandRunner(ctx, cfg, serveradapter.Dependencies{
		Board:   adapter,
		Watcher: adapter,
	}); err != nil {
		logger.Error("command flow failed", "command", "serve", "err", err)
		return fmt.Errorf("run serve command: %w", err)
	}
	logger.Info("command flow complete", "command", "serve")
	return nil
}

// serverConfig merges serve flags over the [server] config section.
func (r *boardRuntime) serverConfig(flags serveFlags) serveradapter.Config {
	server := r.settings.cfg.Server
	return serveradapter.Config{
		HTTPBind:      firstNonEmpty(flags.httpBind, server.HTTPBind),
		APIEndpoint:   firstNonEmpty(flags.apiEndpoint, server.APIEndpoint),
		MCPEndpoint:   firstNonEmpty(flags.mcpEndpoint, server.MCPEndpoint),
		ServerName:    r.settings.appName,
		ServerVersion: version,
	}
}

// firstNonEmpty returns the first value that is not blank.
func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if v := strings.TrimSpace(value); v != "" {
			return v
		}
	}
	return ""
}
