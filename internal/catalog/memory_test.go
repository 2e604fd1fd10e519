package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/quantaopt/internal/config"
	"github.com/dshills/quantaopt/internal/errors"
	"github.com/dshills/quantaopt/internal/sql/types"
)

func TestMemoryCatalogSchema(t *testing.T) {
	catalog := NewMemoryCatalog()

	t.Run("Default public schema exists", func(t *testing.T) {
		assert.Contains(t, catalog.ListSchemas(), "public")
	})

	t.Run("Create schema", func(t *testing.T) {
		require.NoError(t, catalog.CreateSchema("test_schema"))
		assert.Contains(t, catalog.ListSchemas(), "test_schema")
	})

	t.Run("Create duplicate schema", func(t *testing.T) {
		require.NoError(t, catalog.CreateSchema("dup_schema"))
		assert.Error(t, catalog.CreateSchema("dup_schema"))
	})
}

func TestMemoryCatalogTables(t *testing.T) {
	ctx := context.Background()
	catalog := NewMemoryCatalog()

	table, err := catalog.CreateTable(&TableSchema{
		TableName: "orders",
		Columns: []ColumnDef{
			{Name: "id", DataType: types.BigInt},
			{Name: "customer", DataType: types.Text, IsNullable: true},
			{Name: "total", DataType: types.Decimal},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "public.orders", table.QualifiedName())

	t.Run("Columns keep declared order", func(t *testing.T) {
		got, err := catalog.GetTable(ctx, "", "orders")
		require.NoError(t, err)
		require.Len(t, got.Columns, 3)
		for i, name := range []string{"id", "customer", "total"} {
			assert.Equal(t, name, got.Columns[i].Name)
			assert.Equal(t, i+1, got.Columns[i].OrdinalPosition)
		}
		assert.True(t, got.Columns[1].IsNullable)
		assert.Same(t, got.Columns[2], got.GetColumnByName("total"))
		assert.Nil(t, got.GetColumnByName("missing"))
	})

	t.Run("Duplicate table", func(t *testing.T) {
		_, err := catalog.CreateTable(&TableSchema{TableName: "orders"})
		assert.Error(t, err)
	})

	t.Run("Duplicate column", func(t *testing.T) {
		_, err := catalog.CreateTable(&TableSchema{
			TableName: "bad",
			Columns: []ColumnDef{
				{Name: "a", DataType: types.Integer},
				{Name: "a", DataType: types.Text},
			},
		})
		require.Error(t, err)
		assert.True(t, errors.IsError(err, errors.AmbiguousColumn))
	})

	t.Run("Missing table", func(t *testing.T) {
		_, err := catalog.GetTable(ctx, "public", "nope")
		require.Error(t, err)
		assert.True(t, errors.IsError(err, errors.UndefinedTable))
	})

	t.Run("List and drop", func(t *testing.T) {
		_, err := catalog.CreateTable(&TableSchema{
			TableName: "customers",
			Columns:   []ColumnDef{{Name: "id", DataType: types.BigInt}},
		})
		require.NoError(t, err)

		tables, err := catalog.ListTables(ctx, "public")
		require.NoError(t, err)
		require.Len(t, tables, 2)
		assert.Equal(t, "customers", tables[0].TableName)
		assert.Equal(t, "orders", tables[1].TableName)

		require.NoError(t, catalog.DropTable("", "customers"))
		assert.Error(t, catalog.DropTable("", "customers"))

		_, err = catalog.ListTables(ctx, "nowhere")
		assert.Error(t, err)
	})
}

func TestOpenMemoryCatalogFromConfig(t *testing.T) {
	ctx := context.Background()
	cfg := config.CatalogConfig{
		Driver: config.DriverMemory,
		Schema: "sales",
		Tables: []config.TableConfig{{
			Name: "orders",
			Columns: []config.ColumnConfig{
				{Name: "id", Type: "bigint"},
				{Name: "tags", Type: "text[]", Nullable: true},
			},
		}},
	}

	cat, err := Open(ctx, cfg)
	require.NoError(t, err)

	table, err := cat.GetTable(ctx, "sales", "orders")
	require.NoError(t, err)
	require.Len(t, table.Columns, 2)
	assert.True(t, types.Equal(types.BigInt, table.Columns[0].DataType))
	assert.True(t, types.Equal(types.ArrayOf(types.Text), table.Columns[1].DataType))

	cfg.Tables[0].Columns[0].Type = "geometry"
	_, err = Open(ctx, cfg)
	require.Error(t, err)
	assert.True(t, errors.IsError(err, errors.DatatypeMismatch))

	_, err = Open(ctx, config.CatalogConfig{Driver: "sqlite"})
	assert.Error(t, err)
}
