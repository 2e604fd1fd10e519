package catalog

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/quantaopt/internal/errors"
	"github.com/dshills/quantaopt/internal/sql/types"
)

var columnNames = []string{"table_name", "column_name", "data_type", "udt_name", "is_nullable"}

func newMockCatalog(t *testing.T) (*PostgresCatalog, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewPostgresCatalog(db), mock
}

func TestPostgresCatalog_GetTable(t *testing.T) {
	cat, mock := newMockCatalog(t)

	mock.ExpectQuery(regexp.QuoteMeta(tableColumnsQuery)).
		WithArgs("public", "orders").
		WillReturnRows(sqlmock.NewRows(columnNames).
			AddRow("orders", "id", "bigint", "int8", "NO").
			AddRow("orders", "placed_at", "timestamp without time zone", "timestamp", "YES").
			AddRow("orders", "tags", "ARRAY", "_text", "YES").
			AddRow("orders", "doc", "jsonb", "jsonb", "YES"))

	table, err := cat.GetTable(context.Background(), "", "orders")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, "public", table.SchemaName)
	require.Len(t, table.Columns, 4)

	expected := []struct {
		name     string
		typ      types.DataType
		nullable bool
	}{
		{"id", types.BigInt, false},
		{"placed_at", types.Timestamp, true},
		{"tags", types.ArrayOf(types.Text), true},
		{"doc", types.Unknown, true},
	}
	for i, want := range expected {
		col := table.Columns[i]
		assert.Equal(t, want.name, col.Name)
		assert.True(t, types.Equal(want.typ, col.DataType), "column %s has type %s", col.Name, col.DataType.Name())
		assert.Equal(t, want.nullable, col.IsNullable)
		assert.Equal(t, i+1, col.OrdinalPosition)
	}
}

func TestPostgresCatalog_MissingTable(t *testing.T) {
	cat, mock := newMockCatalog(t)

	mock.ExpectQuery(regexp.QuoteMeta(tableColumnsQuery)).
		WithArgs("public", "nope").
		WillReturnRows(sqlmock.NewRows(columnNames))

	_, err := cat.GetTable(context.Background(), "public", "nope")
	require.Error(t, err)
	assert.True(t, errors.IsError(err, errors.UndefinedTable))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalog_ListTables(t *testing.T) {
	cat, mock := newMockCatalog(t)

	mock.ExpectQuery(regexp.QuoteMeta(schemaColumnsQuery)).
		WithArgs("sales").
		WillReturnRows(sqlmock.NewRows(columnNames).
			AddRow("customers", "id", "integer", "int4", "NO").
			AddRow("orders", "id", "bigint", "int8", "NO").
			AddRow("orders", "customer_id", "integer", "int4", "YES"))

	tables, err := cat.ListTables(context.Background(), "sales")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, tables, 2)
	assert.Equal(t, "customers", tables[0].TableName)
	assert.Len(t, tables[0].Columns, 1)
	assert.Equal(t, "orders", tables[1].TableName)
	require.Len(t, tables[1].Columns, 2)
	assert.Equal(t, "customer_id", tables[1].Columns[1].Name)
	assert.Equal(t, 2, tables[1].Columns[1].OrdinalPosition)
}

func TestPostgresCatalog_ServerError(t *testing.T) {
	cat, mock := newMockCatalog(t)

	mock.ExpectQuery(regexp.QuoteMeta(tableColumnsQuery)).
		WithArgs("public", "orders").
		WillReturnError(&pq.Error{
			Code:    "42501",
			Message: "permission denied for schema public",
			Hint:    "grant usage on the schema",
		})

	_, err := cat.GetTable(context.Background(), "public", "orders")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query information_schema.columns")

	qerr := errors.GetError(err)
	require.NotNil(t, qerr)
	assert.Equal(t, "42501", qerr.Code)
	assert.Equal(t, "grant usage on the schema", qerr.Hint)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalog_Close(t *testing.T) {
	cat, mock := newMockCatalog(t)
	mock.ExpectClose()

	require.NoError(t, cat.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}
