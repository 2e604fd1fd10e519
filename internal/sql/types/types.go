package types

import (
	"fmt"
	"strings"
)

// DataType represents a SQL data type carried by attributes and expressions.
type DataType interface {
	// Name returns the SQL name of the type (e.g., "INTEGER", "TEXT")
	Name() string

	// Size returns the storage size in bytes (-1 for variable size)
	Size() int
}

// Value represents a SQL value that can be NULL
type Value struct {
	Data interface{}
	Null bool
}

// NewValue creates a non-null value
func NewValue(data interface{}) Value {
	return Value{Data: data, Null: false}
}

// NewNullValue creates a null value
func NewNullValue() Value {
	return Value{Data: nil, Null: true}
}

// IsNull returns true if the value is NULL
func (v Value) IsNull() bool {
	return v.Null
}

// String returns a string representation of the value
func (v Value) String() string {
	if v.Null {
		return "NULL"
	}
	return fmt.Sprintf("%v", v.Data)
}

// Type returns the DataType of the value based on its underlying type
func (v Value) Type() DataType {
	if v.Null {
		return Unknown
	}
	switch v.Data.(type) {
	case int32:
		return Integer
	case int64, int:
		return BigInt
	case int16:
		return SmallInt
	case string:
		return Text
	case bool:
		return Boolean
	case float32:
		return Float
	case float64:
		return Double
	default:
		return Unknown
	}
}

// Equal reports whether two data types are the same SQL type.
func Equal(a, b DataType) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name() == b.Name()
}

// FromName resolves a SQL type name such as "bigint", "VARCHAR" or "INTEGER[]".
func FromName(name string) (DataType, bool) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if strings.HasSuffix(n, "[]") {
		elem, ok := FromName(strings.TrimSuffix(n, "[]"))
		if !ok {
			return nil, false
		}
		return ArrayOf(elem), true
	}
	switch n {
	case "INT", "INT4", "INTEGER":
		return Integer, true
	case "INT8", "BIGINT":
		return BigInt, true
	case "INT2", "SMALLINT":
		return SmallInt, true
	case "BOOL", "BOOLEAN":
		return Boolean, true
	case "TEXT", "VARCHAR", "CHARACTER VARYING", "CHAR", "CHARACTER", "BPCHAR":
		return Text, true
	case "REAL", "FLOAT4", "FLOAT":
		return Float, true
	case "DOUBLE", "DOUBLE PRECISION", "FLOAT8":
		return Double, true
	case "NUMERIC", "DECIMAL":
		return Decimal, true
	case "DATE":
		return Date, true
	case "TIMESTAMP", "TIMESTAMP WITHOUT TIME ZONE", "TIMESTAMPTZ", "TIMESTAMP WITH TIME ZONE":
		return Timestamp, true
	case "BYTEA":
		return Bytea, true
	case "UNKNOWN":
		return Unknown, true
	}
	return nil, false
}
