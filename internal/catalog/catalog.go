package catalog

import (
	"context"

	"github.com/dshills/quantaopt/internal/sql/types"
)

const defaultSchemaName = "public"

// Catalog supplies the schemas of leaf relations. Only column metadata is
// exposed; the optimizer never reads or writes table data.
type Catalog interface {
	// GetTable returns a table with its columns in declared order.
	GetTable(ctx context.Context, schemaName, tableName string) (*Table, error)
	// ListTables returns the tables of a schema ordered by name.
	ListTables(ctx context.Context, schemaName string) ([]*Table, error)
}

// TableSchema defines the structure for creating a new table.
type TableSchema struct {
	SchemaName string
	TableName  string
	Columns    []ColumnDef
}

// ColumnDef defines a column in a table.
type ColumnDef struct {
	Name       string
	DataType   types.DataType
	IsNullable bool
}

// Table represents a table with its metadata.
type Table struct {
	ID         int64
	SchemaName string
	TableName  string
	Columns    []*Column
}

// Column represents a column with its metadata.
type Column struct {
	ID              int64
	Name            string
	DataType        types.DataType
	OrdinalPosition int
	IsNullable      bool
}

// QualifiedName returns "schema.table".
func (t *Table) QualifiedName() string {
	return t.SchemaName + "." + t.TableName
}

// GetColumnByName returns a column by name from a table.
func (t *Table) GetColumnByName(name string) *Column {
	for _, col := range t.Columns {
		if col.Name == name {
			return col
		}
	}
	return nil
}

func normalizeSchema(schemaName string) string {
	if schemaName == "" {
		return defaultSchemaName
	}
	return schemaName
}
