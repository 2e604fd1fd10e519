package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dshills/quantaopt/internal/catalog"
	"github.com/dshills/quantaopt/internal/config"
	"github.com/dshills/quantaopt/internal/errors"
	"github.com/dshills/quantaopt/internal/feature"
	"github.com/dshills/quantaopt/internal/log"
	"github.com/dshills/quantaopt/internal/sql/planner"
)

var (
	version = "0.1.0"
	commit  = "unknown"
)

// options holds the parsed command line.
type options struct {
	configFile  string
	schema      string
	table       string
	columns     string
	sortBy      string
	limit       int64
	logLevel    string
	logFormat   string
	showVersion bool
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	fs := flag.NewFlagSet("quantaopt", flag.ContinueOnError)
	fs.SetOutput(output)

	opts := &options{}
	fs.StringVar(&opts.configFile, "config", "", "Path to configuration file")
	fs.StringVar(&opts.schema, "schema", "", "Schema of the table (default from config)")
	fs.StringVar(&opts.table, "table", "", "Table to select from")
	fs.StringVar(&opts.columns, "columns", "", "Comma separated list of columns to select")
	fs.StringVar(&opts.sortBy, "sort", "", "Column to sort by")
	fs.Int64Var(&opts.limit, "limit", 0, "Maximum number of rows (0 means no limit)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.logFormat, "log-format", "", "Log format (text, json)")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "quantaopt: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if opts.showVersion {
		fmt.Fprintf(stdout, "quantaopt v%s (commit: %s)\n", version, commit)
		return nil
	}

	// Load configuration
	var cfg *config.Config
	if opts.configFile != "" {
		cfg, err = config.LoadFromFile(opts.configFile)
		if err != nil {
			return err
		}
	} else {
		cfg = config.DefaultConfig()
	}

	// Override config with command-line flags
	cfg.LoadFromFlags(opts.logLevel, opts.logFormat)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.Configure(stderr, log.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	features := feature.Global()
	if err := features.Apply(cfg.Features); err != nil {
		return err
	}
	if logger.Enabled(log.LevelDebug) {
		logger.Debug("Feature flags configured", "flags", features.DebugString())
	}
	for _, flag := range features.GetByCategory("rules") {
		if !features.IsEnabled(flag) {
			logger.Warn("Optimizer rule disabled by feature flag", "flag", string(flag))
		}
	}

	if opts.table == "" {
		return errors.InvalidConfigError("-table is required")
	}

	cat, err := catalog.Open(ctx, cfg.Catalog)
	if err != nil {
		return err
	}
	if closer, ok := cat.(io.Closer); ok {
		defer closer.Close()
	}

	schema := opts.schema
	if schema == "" {
		schema = cfg.Catalog.Schema
	}
	table, err := cat.GetTable(ctx, schema, opts.table)
	if err != nil {
		return err
	}

	plan, err := buildPlan(table, splitColumns(opts.columns), opts.sortBy, opts.limit)
	if err != nil {
		return err
	}

	batches, err := planner.BatchesFromConfig(cfg.Optimizer)
	if err != nil {
		return err
	}
	optimizer := planner.NewOptimizer(
		planner.WithBatches(batches...),
		planner.WithLogger(logger),
		planner.WithValidation(cfg.Optimizer.ValidatePlans),
	)

	logger.Info("Optimizing plan",
		"version", version,
		"table", table.QualifiedName(),
		"batches", len(batches))

	optimized, err := optimizer.Optimize(plan)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, "== Analyzed Logical Plan ==")
	fmt.Fprint(stdout, planner.Explain(plan))
	fmt.Fprintln(stdout, "== Optimized Logical Plan ==")
	fmt.Fprint(stdout, planner.Explain(optimized))
	return nil
}

// buildPlan builds Project(columns, [Limit]([Sort](relation))) over a
// fresh scan of table. An empty column list selects every column.
func buildPlan(table *catalog.Table, columns []string, sortBy string, limit int64) (planner.LogicalPlan, error) {
	rel := planner.NewLocalRelationFromTable(table)
	byName := make(map[string]*planner.AttributeReference, len(rel.Output()))
	for _, a := range rel.Output() {
		byName[strings.ToLower(a.Name)] = a
	}
	lookup := func(name string) (*planner.AttributeReference, error) {
		a, ok := byName[strings.ToLower(name)]
		if !ok {
			return nil, errors.UndefinedColumnError(name, table.TableName)
		}
		return a, nil
	}

	var plan planner.LogicalPlan = rel
	if sortBy != "" {
		key, err := lookup(sortBy)
		if err != nil {
			return nil, err
		}
		plan = planner.NewLogicalSort(plan, []planner.OrderByExpr{{Expr: key, Order: planner.Ascending}})
	}
	if limit > 0 {
		plan = planner.NewLogicalLimit(plan, limit, 0)
	}

	if len(columns) == 0 {
		return planner.NewProjectOf(plan, rel.Output()), nil
	}
	selected := make([]*planner.AttributeReference, 0, len(columns))
	for _, name := range columns {
		a, err := lookup(name)
		if err != nil {
			return nil, err
		}
		selected = append(selected, a)
	}
	return planner.NewProjectOf(plan, selected), nil
}

func splitColumns(s string) []string {
	var columns []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			columns = append(columns, c)
		}
	}
	return columns
}
