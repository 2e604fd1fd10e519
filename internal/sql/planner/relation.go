package planner

import (
	"github.com/dshills/quantaopt/internal/catalog"
)

// NewLocalRelationFromTable creates a leaf relation over a catalog table.
// Every call mints fresh attributes, one per column in declared order, so
// two scans of the same table never share identities.
func NewLocalRelationFromTable(table *catalog.Table) *LocalRelation {
	attrs := make([]*AttributeReference, len(table.Columns))
	for i, col := range table.Columns {
		attrs[i] = NewAttribute(col.Name, col.DataType, col.IsNullable)
	}
	return NewLocalRelation(table.TableName, attrs...)
}
