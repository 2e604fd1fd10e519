package catalog

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/lib/pq"
	pkgerrors "github.com/pkg/errors"

	"github.com/dshills/quantaopt/internal/errors"
	"github.com/dshills/quantaopt/internal/sql/types"
)

const (
	tableColumnsQuery = `SELECT table_name, column_name, data_type, udt_name, is_nullable
FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position`

	schemaColumnsQuery = `SELECT table_name, column_name, data_type, udt_name, is_nullable
FROM information_schema.columns
WHERE table_schema = $1
ORDER BY table_name, ordinal_position`
)

// PostgresCatalog reads table schemas from a PostgreSQL server's
// information_schema.
type PostgresCatalog struct {
	db *sql.DB
}

// NewPostgresCatalog creates a catalog over an open database handle.
func NewPostgresCatalog(db *sql.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

// OpenPostgres connects to the server at dsn.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresCatalog, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to open postgres catalog")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, pkgerrors.Wrap(translateError(err), "failed to connect to postgres catalog")
	}
	return NewPostgresCatalog(db), nil
}

// Close closes the database handle.
func (c *PostgresCatalog) Close() error {
	return c.db.Close()
}

// GetTable retrieves a table by name.
func (c *PostgresCatalog) GetTable(ctx context.Context, schemaName, tableName string) (*Table, error) {
	schemaName = normalizeSchema(schemaName)
	tables, err := c.queryTables(ctx, schemaName, tableColumnsQuery, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, errors.UndefinedTableError(schemaName, tableName)
	}
	return tables[0], nil
}

// ListTables returns all tables in a schema, sorted by name.
func (c *PostgresCatalog) ListTables(ctx context.Context, schemaName string) ([]*Table, error) {
	schemaName = normalizeSchema(schemaName)
	return c.queryTables(ctx, schemaName, schemaColumnsQuery, schemaName)
}

// queryTables runs a column query whose rows are grouped by table and
// ordered by ordinal position within each table.
func (c *PostgresCatalog) queryTables(ctx context.Context, schemaName, query string, args ...interface{}) ([]*Table, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pkgerrors.Wrap(translateError(err), "failed to query information_schema.columns")
	}
	defer rows.Close()

	var (
		tables  []*Table
		current *Table
	)
	for rows.Next() {
		var tableName, columnName, dataType, udtName, isNullable string
		if err := rows.Scan(&tableName, &columnName, &dataType, &udtName, &isNullable); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to scan column metadata")
		}

		if current == nil || current.TableName != tableName {
			current = &Table{
				ID:         int64(len(tables) + 1),
				SchemaName: schemaName,
				TableName:  tableName,
			}
			tables = append(tables, current)
		}

		position := len(current.Columns) + 1
		current.Columns = append(current.Columns, &Column{
			ID:              int64(position),
			Name:            columnName,
			DataType:        postgresType(dataType, udtName),
			OrdinalPosition: position,
			IsNullable:      isNullable == "YES",
		})
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.Wrap(translateError(err), "failed to read column metadata")
	}

	return tables, nil
}

// postgresType maps an information_schema type description to a data type.
// Array columns report data_type ARRAY and an element udt_name prefixed
// with an underscore. Types with no counterpart map to types.Unknown.
func postgresType(dataType, udtName string) types.DataType {
	if strings.EqualFold(dataType, "ARRAY") {
		if typ, ok := types.FromName(strings.TrimPrefix(udtName, "_") + "[]"); ok {
			return typ
		}
		return types.ArrayOf(types.Unknown)
	}
	if typ, ok := types.FromName(dataType); ok {
		return typ
	}
	if typ, ok := types.FromName(udtName); ok {
		return typ
	}
	return types.Unknown
}

// translateError converts a server error into a SQLSTATE-coded error.
func translateError(err error) error {
	var pqErr *pq.Error
	if !stderrors.As(err, &pqErr) {
		return err
	}
	return errors.New(string(pqErr.Code), pqErr.Message).
		WithDetail(pqErr.Detail).
		WithHint(pqErr.Hint).
		WithTable(pqErr.Schema, pqErr.Table).
		WithColumn(pqErr.Column).
		WithCause(err)
}
