// Package main runs the pipeline board: a TUI by default, plus serve, seed and
// inspection subcommands.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	serveradapter "github.com/hylla/pipeline/internal/adapters/server"
	servercommon "github.com/hylla/pipeline/internal/adapters/server/common"
	"github.com/hylla/pipeline/internal/adapters/storage/sqlite"
	"github.com/hylla/pipeline/internal/app"
	"github.com/hylla/pipeline/internal/board"
	"github.com/hylla/pipeline/internal/config"
	"github.com/hylla/pipeline/internal/domain"
	"github.com/hylla/pipeline/internal/platform"
	"github.com/hylla/pipeline/internal/tui"
	"github.com/spf13/cobra"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveCommandRunner starts the HTTP+MCP serve flow.
var serveCommandRunner = func(ctx context.Context, cfg serveradapter.Config, deps serveradapter.Dependencies) error {
	return serveradapter.Run(ctx, cfg, deps)
}

// updatesBuffer bounds how many snapshots the TUI may lag behind a co-hosted server.
const updatesBuffer = 16

// main handles main.
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run runs the requested command flow.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(&rootOptions{stdout: stdout, stderr: stderr})
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// rootOptions holds the global flags shared by every command.
type rootOptions struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	dbPath     string
	appName    string
	devMode    bool
	serve      bool
}

// settings is the resolved startup state of one command.
type settings struct {
	appName      string
	devMode      bool
	paths        platform.Paths
	configPath   string
	dbOverridden bool
	cfg          config.Config
}

// newRootCommand builds the command tree.
func newRootCommand(opts *rootOptions) *cobra.Command {
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("PIPELINE_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	defaultApp := platform.DefaultAppName
	if envApp := strings.TrimSpace(os.Getenv("PIPELINE_APP_NAME")); envApp != "" {
		defaultApp = envApp
	}

	root := &cobra.Command{
		Use:   "pipeline",
		Short: "Drag-and-drop pipeline board",
		Long: `Pipeline shows the catalog as a board of columns and lets cards be dragged
between them with the keyboard or the mouse.

Examples:
  # Open the board
  pipeline

  # Open the board and expose it to HTTP and MCP clients
  pipeline --serve
`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBoard(cmd.Context(), opts)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML (PIPELINE_CONFIG)")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite catalog (PIPELINE_DB_PATH)")
	flags.StringVar(&opts.appName, "app", defaultApp, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	root.Flags().BoolVar(&opts.serve, "serve", false, "also serve the HTTP API and MCP tools while the board is open")

	root.AddCommand(
		newServeCommand(opts),
		newSeedCommand(opts),
		newColumnsCommand(opts),
		newExportCommand(opts),
		newPathsCommand(opts),
	)
	return root
}

// resolve applies env overrides and loads the config file.
func (o *rootOptions) resolve() (settings, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: o.appName,
		DevMode: o.devMode,
	})
	if err != nil {
		return settings{}, err
	}

	configPath := strings.TrimSpace(o.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("PIPELINE_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := strings.TrimSpace(o.dbPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("PIPELINE_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return settings{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}
	return settings{
		appName:      o.appName,
		devMode:      o.devMode,
		paths:        paths,
		configPath:   configPath,
		dbOverridden: dbOverridden,
		cfg:          cfg,
	}, nil
}

// boardRuntime bundles the logger, catalog and service of one command run.
type boardRuntime struct {
	settings settings
	logger   *runtimeLogger
	repo     *sqlite.Repository
	svc      *app.Service
}

// openRuntime resolves settings and opens the catalog behind a board service.
func openRuntime(opts *rootOptions, command string, muteConsole bool) (*boardRuntime, error) {
	s, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	logger, err := newRuntimeLogger(opts.stderr, s.appName, s.devMode, s.cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if muteConsole {
		// Runtime logs stay in the dev-file sink while the board is on screen.
		logger.SetConsoleEnabled(false)
	}

	logger.Info("startup configuration resolved", "app", s.appName, "dev_mode", s.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", s.configPath, "data_dir", s.paths.DataDir, "db_path", s.cfg.Database.Path)
	logger.Info("configuration loaded", "config_path", s.configPath, "db_path", s.cfg.Database.Path, "log_level", s.cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	policy, err := board.ParseDriftPolicy(s.cfg.Board.DriftPolicy)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	logger.Info("opening sqlite catalog", "db_path", s.cfg.Database.Path)
	repo, err := sqlite.Open(s.cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", s.cfg.Database.Path, "err", err)
		_ = logger.Close()
		return nil, fmt.Errorf("open sqlite catalog: %w", err)
	}

	svc := app.NewService(repo, time.Now, logger.BoardLogger(), app.ServiceConfig{
		DriftPolicy:    policy,
		DefaultColumns: domainColumns(s.cfg.Board.Columns),
	})
	logger.Debug("board service initialized", "drift_policy", policy, "default_columns", len(s.cfg.Board.Columns))
	return &boardRuntime{settings: s, logger: logger, repo: repo, svc: svc}, nil
}

// Close releases the catalog and the log sinks.
func (r *boardRuntime) Close(stderr io.Writer) {
	if err := r.repo.Close(); err != nil {
		r.logger.Warn("sqlite close failed", "db_path", r.settings.cfg.Database.Path, "err", err)
	}
	if err := r.logger.Close(); err != nil && r.logger.ConsoleActive() {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", err)
	}
}

// systemContext tags catalog loads started by the CLI itself.
func systemContext(ctx context.Context) context.Context {
	return app.WithGestureOrigin(ctx, app.GestureOrigin{Transport: app.OriginSystem})
}

// loadBoard seeds an empty catalog when configured and loads the board.
func (r *boardRuntime) loadBoard(ctx context.Context) (app.Snapshot, error) {
	if err := r.seedIfEmpty(ctx); err != nil {
		return app.Snapshot{}, err
	}
	snap, err := r.svc.Load(systemContext(ctx))
	if err != nil {
		r.logger.Error("board load failed", "err", err)
		return app.Snapshot{}, fmt.Errorf("load board: %w", err)
	}
	r.logger.Info("board ready", "columns", len(snap.Columns), "items", len(snap.Items))
	return snap, nil
}

// seedIfEmpty writes the sample pipeline into a catalog that has no columns and no items.
func (r *boardRuntime) seedIfEmpty(ctx context.Context) error {
	if !r.settings.cfg.Board.SeedSample {
		return nil
	}
	columns, err := r.repo.ListColumns(ctx)
	if err != nil {
		return fmt.Errorf("list catalog columns: %w", err)
	}
	items, err := r.repo.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("list catalog items: %w", err)
	}
	if len(columns) > 0 || len(items) > 0 {
		return nil
	}
	report, err := seedCatalog(ctx, r.repo, domainColumns(r.settings.cfg.Board.Columns), seedOptions{
		Count: defaultSeedCount,
		Seed:  uint64(time.Now().UnixNano()),
	})
	if err != nil {
		r.logger.Error("sample seed failed", "err", err)
		return fmt.Errorf("seed sample pipeline: %w", err)
	}
	r.logger.Info("seeded sample pipeline", "columns", report.Columns, "items", report.Items)
	return nil
}

// runBoard runs the TUI, optionally with the server sharing the same board.
func runBoard(ctx context.Context, opts *rootOptions) error {
	rt, err := openRuntime(opts, "tui", true)
	if err != nil {
		return err
	}
	defer rt.Close(opts.stderr)
	logger := rt.logger
	logger.Info("command flow start", "command", "tui", "serve", opts.serve)

	if err := rt.seedIfEmpty(ctx); err != nil {
		return err
	}

	cfg := rt.settings.cfg
	options := []tui.Option{
		tui.WithCardFieldConfig(tui.CardFieldConfig{
			ShowOwner: cfg.UI.ShowOwner,
			ShowDates: cfg.UI.ShowDates,
		}),
		tui.WithHelpBar(cfg.UI.ShowHelp),
	}

	if opts.serve {
		if _, err := rt.loadBoard(ctx); err != nil {
			return err
		}
		updates, cancelUpdates := rt.svc.Subscribe(updatesBuffer)
		defer cancelUpdates()
		options = append(options, tui.WithUpdates(updates))

		serveCtx, stopServe := context.WithCancel(ctx)
		serveDone := make(chan error, 1)
		serverErrs := make(chan error, 1)
		options = append(options, tui.WithServerErrors(serverErrs))
		adapter := servercommon.NewAppServiceAdapter(rt.svc)
		serverCfg := rt.serverConfig(serveFlags{})
		logger.Info("serving alongside tui", "http", serverCfg.HTTPBind, "api", serverCfg.APIEndpoint, "mcp", serverCfg.MCPEndpoint)
		go func() {
			err := serveCommandRunner(serveCtx, serverCfg, serveradapter.Dependencies{
				Board:   adapter,
				Watcher: adapter,
			})
			if err != nil {
				logger.Error("co-hosted server failed", "err", err)
				serverErrs <- err
			}
			close(serverErrs)
			serveDone <- err
		}()
		defer func() {
			stopServe()
			<-serveDone
		}()
	}

	m := tui.NewModel(rt.svc, options...)
	logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}

// newExportCommand builds the export subcommand.
func newExportCommand(opts *rootOptions) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the loaded board as a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(opts, "export", false)
			if err != nil {
				return err
			}
			defer rt.Close(opts.stderr)
			if _, err := rt.loadBoard(cmd.Context()); err != nil {
				return err
			}
			if err := runExport(cmd.Context(), rt.svc, outPath, cmd.OutOrStdout()); err != nil {
				rt.logger.Error("command flow failed", "command", "export", "err", err)
				return fmt.Errorf("run export command: %w", err)
			}
			rt.logger.Info("command flow complete", "command", "export")
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	return cmd
}

// runExport writes the live board snapshot to outPath.
func runExport(ctx context.Context, svc *app.Service, outPath string, stdout io.Writer) error {
	snap, err := svc.ExportSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	encoded, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot json: %w", err)
	}
	encoded = append(encoded, '\n')

	if outPath == "" || outPath == "-" {
		if _, err := stdout.Write(encoded); err != nil {
			return fmt.Errorf("write snapshot to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// readSnapshotFile decodes one exported snapshot.
func readSnapshotFile(path string) (app.Snapshot, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return app.Snapshot{}, fmt.Errorf("read snapshot file: %w", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		return app.Snapshot{}, fmt.Errorf("decode snapshot json: %w", err)
	}
	return snap, nil
}

// newPathsCommand builds the paths subcommand.
func newPathsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config, data and database paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.resolve()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", s.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", s.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", s.configPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", s.paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", s.cfg.Database.Path)
			_, _ = fmt.Fprintf(out, "log_dir: %s\n", s.paths.LogDir)
			return nil
		},
	}
}

// domainColumns converts configured columns in file order.
func domainColumns(in []config.ColumnConfig) []domain.Column {
	out := make([]domain.Column, 0, len(in))
	for idx, column := range in {
		out = append(out, domain.Column{
			ID:       strings.TrimSpace(column.ID),
			Name:     strings.TrimSpace(column.Name),
			Color:    strings.TrimSpace(column.Color),
			Position: idx,
		})
	}
	return out
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
