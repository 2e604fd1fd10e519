package catalog

import (
	"context"

	"github.com/dshills/quantaopt/internal/config"
	"github.com/dshills/quantaopt/internal/errors"
	"github.com/dshills/quantaopt/internal/sql/types"
)

// Open creates the catalog described by cfg. A PostgreSQL catalog holds a
// connection and implements io.Closer.
func Open(ctx context.Context, cfg config.CatalogConfig) (Catalog, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		c, err := OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.DriverMemory, "":
		c, err := NewMemoryCatalogFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, errors.InvalidConfigError("invalid catalog driver: %s", cfg.Driver)
	}
}

// NewMemoryCatalogFromConfig creates a memory catalog holding the tables
// declared in cfg.
func NewMemoryCatalogFromConfig(cfg config.CatalogConfig) (*MemoryCatalog, error) {
	c := NewMemoryCatalog()
	for _, tc := range cfg.Tables {
		ts := &TableSchema{
			SchemaName: cfg.Schema,
			TableName:  tc.Name,
			Columns:    make([]ColumnDef, 0, len(tc.Columns)),
		}
		for _, col := range tc.Columns {
			typ, ok := types.FromName(col.Type)
			if !ok {
				return nil, errors.UnsupportedTypeError(col.Name, col.Type)
			}
			ts.Columns = append(ts.Columns, ColumnDef{
				Name:       col.Name,
				DataType:   typ,
				IsNullable: col.Nullable,
			})
		}
		if _, err := c.CreateTable(ts); err != nil {
			return nil, err
		}
	}
	return c, nil
}
