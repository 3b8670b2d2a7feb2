package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hylla/pipeline/internal/app"
	"github.com/hylla/pipeline/internal/domain"
	"github.com/hylla/pipeline/internal/sample"
	"github.com/spf13/cobra"
)

// defaultSeedCount matches the size of the stock demo pipeline.
const defaultSeedCount = sample.DefaultItemCount

// seedOptions controls one seed run.
type seedOptions struct {
	Count int
	Seed  uint64
	Reset bool
}

// seedReport summarizes what a seed run wrote.
type seedReport struct {
	Columns int
	Items   int
}

// newSeedCommand builds the seed subcommand.
func newSeedCommand(opts *rootOptions) *cobra.Command {
	var (
		seedOpts seedOptions
		seed     int64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a sample pipeline into the catalog",
		Long: `Seed writes generated items into the catalog. Columns come from the config
file and are only created when the catalog has none.

Examples:
  # Reproducible demo board
  pipeline seed --reset --seed 42
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(opts, "seed", false)
			if err != nil {
				return err
			}
			defer rt.Close(opts.stderr)

			seedOpts.Seed = uint64(seed)
			if seed == 0 {
				seedOpts.Seed = uint64(time.Now().UnixNano())
			}
			report, err := seedCatalog(cmd.Context(), rt.repo, domainColumns(rt.settings.cfg.Board.Columns), seedOpts)
			if err != nil {
				rt.logger.Error("command flow failed", "command", "seed", "err", err)
				return fmt.Errorf("run seed command: %w", err)
			}
			rt.logger.Info("command flow complete", "command", "seed", "columns", report.Columns, "items", report.Items, "seed", seedOpts.Seed)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d items across %d columns\n", report.Items, report.Columns)
			return nil
		},
	}
	cmd.Flags().IntVar(&seedOpts.Count, "count", defaultSeedCount, "number of items to generate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "generator seed (0 picks one from the clock)")
	cmd.Flags().BoolVar(&seedOpts.Reset, "reset", false, "delete every catalog column and item first")
	return cmd
}

// seedCatalog writes sample items. The configured columns are created only when
// the catalog has none, so existing column ids stay stable across seeds.
func seedCatalog(ctx context.Context, catalog app.CatalogWriter, columns []domain.Column, opts seedOptions) (seedReport, error) {
	if opts.Count < 0 {
		return seedReport{}, fmt.Errorf("count must be >= 0, got %d", opts.Count)
	}
	if opts.Reset {
		if err := catalog.Reset(ctx); err != nil {
			return seedReport{}, fmt.Errorf("reset catalog: %w", err)
		}
	}

	existing, err := catalog.ListColumns(ctx)
	if err != nil {
		return seedReport{}, fmt.Errorf("list catalog columns: %w", err)
	}
	if len(existing) == 0 {
		if len(columns) == 0 {
			columns = sample.DefaultColumns()
		}
		for _, column := range columns {
			if err := catalog.CreateColumn(ctx, column); err != nil {
				return seedReport{}, fmt.Errorf("create column %q: %w", column.ID, err)
			}
		}
		existing = columns
	}

	items, err := sample.New(opts.Seed, time.Now()).Pipeline(opts.Count, existing)
	if err != nil {
		return seedReport{}, err
	}
	for _, item := range items {
		if err := catalog.CreateItem(ctx, item); err != nil {
			return seedReport{}, fmt.Errorf("create item %q: %w", item.ID, err)
		}
	}
	return seedReport{Columns: len(existing), Items: len(items)}, nil
}
