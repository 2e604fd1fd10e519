package errors

// PostgreSQL Error Codes (SQLSTATE) used by the optimizer.
// Based on PostgreSQL error codes: https://www.postgresql.org/docs/current/errcodes-appendix.html

// Class 22 - Data Exception
const (
	DataException         = "22000"
	InvalidParameterValue = "22023"
)

// Class 42 - Syntax Error or Access Rule Violation
const (
	SyntaxErrorOrAccessRuleViolation = "42000"
	SyntaxError                      = "42601"
	AmbiguousColumn                  = "42702"
	UndefinedColumn                  = "42703"
	DatatypeMismatch                 = "42804"
	UndefinedTable                   = "42P01"
	UndefinedObject                  = "42704"
)

// Class F0 - Configuration File Error
const (
	ConfigFileError = "F0000"
)

// Class XX - Internal Error
const (
	InternalError = "XX000"
)
