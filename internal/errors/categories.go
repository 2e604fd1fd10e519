package errors

// Category-specific error constructors for the optimizer and its collaborators

// Planner errors
func UnresolvedAttributeError(attribute, node string) *Error {
	return Newf(UndefinedColumn, "unresolved reference %s in %s", attribute, node).
		WithColumn(attribute).
		WithDetail("The attribute is not produced by any child of the operator.").
		WithHint("This indicates a defect in plan analysis.")
}

func AmbiguousReferenceError(attribute, node string) *Error {
	return Newf(AmbiguousColumn, "reference %s in %s is ambiguous", attribute, node).
		WithColumn(attribute)
}

func UnionArityError(node string, expected, actual, child int) *Error {
	return Newf(SyntaxError, "%s child %d has %d columns, expected %d", node, child, actual, expected)
}

func SchemaChangedError(batch, before, after string) *Error {
	return Newf(InternalError, "batch %s changed the plan output schema", batch).
		WithDetailf("before: %s, after: %s", before, after)
}

// Optimizer configuration errors
func UnknownRuleError(rule string) *Error {
	return Newf(UndefinedObject, "unknown optimizer rule %q", rule)
}

func InvalidStrategyError(strategy string, maxIterations int) *Error {
	return Newf(InvalidParameterValue, "invalid batch strategy %q with max iterations %d", strategy, maxIterations)
}

func InvalidConfigError(format string, args ...interface{}) *Error {
	return Newf(ConfigFileError, format, args...)
}

// Catalog errors
func UndefinedTableError(schemaName, tableName string) *Error {
	return Newf(UndefinedTable, "relation \"%s.%s\" does not exist", schemaName, tableName).
		WithTable(schemaName, tableName)
}

func UndefinedColumnError(columnName, tableName string) *Error {
	return Newf(UndefinedColumn, "column \"%s\" does not exist in \"%s\"", columnName, tableName).
		WithTable("", tableName).
		WithColumn(columnName)
}

func DuplicateColumnError(tableName, columnName string) *Error {
	return Newf(AmbiguousColumn, "column \"%s\" specified more than once in \"%s\"", columnName, tableName).
		WithTable("", tableName).
		WithColumn(columnName)
}

func UnsupportedTypeError(columnName, typeName string) *Error {
	return Newf(DatatypeMismatch, "column \"%s\" has unsupported type %s", columnName, typeName).
		WithColumn(columnName)
}
