package types

// Common SQL types
var (
	Integer   DataType = &scalarType{name: "INTEGER", size: 4}
	BigInt    DataType = &scalarType{name: "BIGINT", size: 8}
	SmallInt  DataType = &scalarType{name: "SMALLINT", size: 2}
	Boolean   DataType = &scalarType{name: "BOOLEAN", size: 1}
	Text      DataType = &scalarType{name: "TEXT", size: -1}
	Float     DataType = &scalarType{name: "FLOAT", size: 4}
	Double    DataType = &scalarType{name: "DOUBLE", size: 8}
	Decimal   DataType = &scalarType{name: "DECIMAL", size: -1}
	Date      DataType = &scalarType{name: "DATE", size: 4}
	Timestamp DataType = &scalarType{name: "TIMESTAMP", size: 8}
	Bytea     DataType = &scalarType{name: "BYTEA", size: -1}
	Unknown   DataType = &scalarType{name: "UNKNOWN", size: -1}
)

// scalarType implements the fixed, non-parameterized SQL types.
type scalarType struct {
	name string
	size int
}

func (t *scalarType) Name() string {
	return t.name
}

func (t *scalarType) Size() int {
	return t.size
}
