package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/quantaopt/internal/errors"
)

// MemoryCatalog is an in-memory implementation of the Catalog interface.
// It's useful for testing and for schemas declared in configuration.
type MemoryCatalog struct {
	mu      sync.RWMutex
	schemas map[string]*schema
	nextID  int64
}

// schema represents a database schema.
type schema struct {
	name   string
	tables map[string]*Table
}

// NewMemoryCatalog creates a new in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	c := &MemoryCatalog{
		schemas: make(map[string]*schema),
		nextID:  1,
	}

	// Create default public schema
	c.schemas[defaultSchemaName] = &schema{
		name:   defaultSchemaName,
		tables: make(map[string]*Table),
	}

	return c
}

// CreateSchema creates a new schema.
func (c *MemoryCatalog) CreateSchema(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.schemas[name]; exists {
		return fmt.Errorf("schema %q already exists", name)
	}

	c.schemas[name] = &schema{
		name:   name,
		tables: make(map[string]*Table),
	}

	return nil
}

// ListSchemas returns the schema names in sorted order.
func (c *MemoryCatalog) ListSchemas() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	schemas := make([]string, 0, len(c.schemas))
	for name := range c.schemas {
		schemas = append(schemas, name)
	}
	sort.Strings(schemas)

	return schemas
}

// CreateTable creates a new table. The schema is created on first use.
func (c *MemoryCatalog) CreateTable(tableSchema *TableSchema) (*Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	schemaName := normalizeSchema(tableSchema.SchemaName)
	s, exists := c.schemas[schemaName]
	if !exists {
		s = &schema{name: schemaName, tables: make(map[string]*Table)}
		c.schemas[schemaName] = s
	}

	// Check if table already exists
	if _, exists := s.tables[tableSchema.TableName]; exists {
		return nil, fmt.Errorf("table %q already exists", schemaName+"."+tableSchema.TableName)
	}

	table := &Table{
		ID:         c.nextID,
		SchemaName: schemaName,
		TableName:  tableSchema.TableName,
		Columns:    make([]*Column, 0, len(tableSchema.Columns)),
	}
	c.nextID++

	seen := make(map[string]bool, len(tableSchema.Columns))
	for i, colDef := range tableSchema.Columns {
		if seen[colDef.Name] {
			return nil, errors.DuplicateColumnError(tableSchema.TableName, colDef.Name)
		}
		seen[colDef.Name] = true

		table.Columns = append(table.Columns, &Column{
			ID:              c.nextID,
			Name:            colDef.Name,
			DataType:        colDef.DataType,
			OrdinalPosition: i + 1,
			IsNullable:      colDef.IsNullable,
		})
		c.nextID++
	}

	s.tables[tableSchema.TableName] = table
	return table, nil
}

// GetTable retrieves a table by name.
func (c *MemoryCatalog) GetTable(ctx context.Context, schemaName, tableName string) (*Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	schemaName = normalizeSchema(schemaName)
	if s, exists := c.schemas[schemaName]; exists {
		if table, exists := s.tables[tableName]; exists {
			return table, nil
		}
	}
	return nil, errors.UndefinedTableError(schemaName, tableName)
}

// DropTable drops a table.
func (c *MemoryCatalog) DropTable(schemaName, tableName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	schemaName = normalizeSchema(schemaName)
	s, exists := c.schemas[schemaName]
	if !exists {
		return errors.UndefinedTableError(schemaName, tableName)
	}
	if _, exists := s.tables[tableName]; !exists {
		return errors.UndefinedTableError(schemaName, tableName)
	}
	delete(s.tables, tableName)
	return nil
}

// ListTables returns all tables in a schema, sorted by name.
func (c *MemoryCatalog) ListTables(ctx context.Context, schemaName string) ([]*Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	schemaName = normalizeSchema(schemaName)
	s, exists := c.schemas[schemaName]
	if !exists {
		return nil, fmt.Errorf("schema %q does not exist", schemaName)
	}

	tables := make([]*Table, 0, len(s.tables))
	for _, table := range s.tables {
		tables = append(tables, table)
	}
	sort.Slice(tables, func(i, j int) bool {
		return tables[i].TableName < tables[j].TableName
	})

	return tables, nil
}
