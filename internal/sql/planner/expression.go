package planner

import (
	"fmt"
	"strings"

	"github.com/dshills/quantaopt/internal/sql/types"
)

// Expression represents an expression in a query plan.
type Expression interface {
	// String returns a string representation.
	String() string
	// DataType returns the data type of the expression.
	DataType() types.DataType
	// Children returns the direct sub-expressions.
	Children() []Expression
	// WithNewChildren returns a copy of the expression with the given
	// sub-expressions, in the order Children returns them.
	WithNewChildren(children []Expression) Expression
}

// NamedExpression is an expression that produces an output attribute.
type NamedExpression interface {
	Expression
	ToAttribute() *AttributeReference
}

// Literal represents a literal value.
type Literal struct {
	Value types.Value
	Type  types.DataType
}

// NewLiteral creates a literal, inferring its type from the value.
func NewLiteral(v interface{}) *Literal {
	if v == nil {
		return &Literal{Value: types.NewNullValue(), Type: types.Unknown}
	}
	value := types.NewValue(v)
	return &Literal{Value: value, Type: value.Type()}
}

func (l *Literal) String() string {
	if l.Value.IsNull() {
		return "NULL"
	}

	switch v := l.Value.Data.(type) {
	case string:
		return fmt.Sprintf("'%s'", strings.ReplaceAll(v, "'", "''"))
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("%v", l.Value.Data)
	}
}

func (l *Literal) DataType() types.DataType {
	return l.Type
}

func (l *Literal) Children() []Expression {
	return nil
}

func (l *Literal) WithNewChildren(children []Expression) Expression {
	return l
}

// BinaryOp represents a binary operation.
type BinaryOp struct {
	Left     Expression
	Right    Expression
	Operator BinaryOperator
	Type     types.DataType
}

// BinaryOperator represents a binary operator.
type BinaryOperator int

const (
	// Arithmetic operators
	OpAdd BinaryOperator = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo

	// Comparison operators
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual

	// Logical operators
	OpAnd
	OpOr

	// String operators
	OpConcat
	OpLike
)

func (op BinaryOperator) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpModulo:
		return "%"
	case OpEqual:
		return "="
	case OpNotEqual:
		return "!="
	case OpLess:
		return "<"
	case OpLessEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterEqual:
		return ">="
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpConcat:
		return "||"
	case OpLike:
		return "LIKE"
	default:
		return fmt.Sprintf("Unknown(%d)", op)
	}
}

// IsComparison reports whether the operator yields a boolean from two values.
func (op BinaryOperator) IsComparison() bool {
	return op >= OpEqual && op <= OpOr || op == OpLike
}

// NewBinaryOp creates a binary operation. Comparison and logical operators
// are typed BOOLEAN, arithmetic takes the type of the left operand.
func NewBinaryOp(left Expression, op BinaryOperator, right Expression) *BinaryOp {
	typ := left.DataType()
	switch {
	case op.IsComparison():
		typ = types.Boolean
	case op == OpConcat:
		typ = types.Text
	}
	return &BinaryOp{Left: left, Right: right, Operator: op, Type: typ}
}

func (b *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Operator.String(), b.Right.String())
}

func (b *BinaryOp) DataType() types.DataType {
	return b.Type
}

func (b *BinaryOp) Children() []Expression {
	return []Expression{b.Left, b.Right}
}

func (b *BinaryOp) WithNewChildren(children []Expression) Expression {
	c := *b
	c.Left, c.Right = children[0], children[1]
	return &c
}

// UnaryOp represents a unary operation.
type UnaryOp struct {
	Expr     Expression
	Operator UnaryOperator
	Type     types.DataType
}

// UnaryOperator represents a unary operator.
type UnaryOperator int

const (
	OpNot UnaryOperator = iota
	OpNegate
	OpIsNull
	OpIsNotNull
)

func (op UnaryOperator) String() string {
	switch op {
	case OpNot:
		return "NOT"
	case OpNegate:
		return "-"
	case OpIsNull:
		return "IS NULL"
	case OpIsNotNull:
		return "IS NOT NULL"
	default:
		return fmt.Sprintf("Unknown(%d)", op)
	}
}

// NewUnaryOp creates a unary operation.
func NewUnaryOp(op UnaryOperator, expr Expression) *UnaryOp {
	typ := types.Boolean
	if op == OpNegate {
		typ = expr.DataType()
	}
	return &UnaryOp{Expr: expr, Operator: op, Type: typ}
}

func (u *UnaryOp) String() string {
	if u.Operator == OpIsNull || u.Operator == OpIsNotNull {
		return fmt.Sprintf("%s %s", u.Expr.String(), u.Operator.String())
	}
	return fmt.Sprintf("%s %s", u.Operator.String(), u.Expr.String())
}

func (u *UnaryOp) DataType() types.DataType {
	return u.Type
}

func (u *UnaryOp) Children() []Expression {
	return []Expression{u.Expr}
}

func (u *UnaryOp) WithNewChildren(children []Expression) Expression {
	c := *u
	c.Expr = children[0]
	return &c
}

// FunctionCall represents a scalar function call. NonDeterministic marks
// functions such as random() whose result differs between evaluations.
type FunctionCall struct {
	Name             string
	Args             []Expression
	Type             types.DataType
	NonDeterministic bool
}

func (f *FunctionCall) String() string {
	var argStrs []string
	for _, arg := range f.Args {
		argStrs = append(argStrs, arg.String())
	}
	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(argStrs, ", "))
}

func (f *FunctionCall) DataType() types.DataType {
	return f.Type
}

func (f *FunctionCall) Children() []Expression {
	return f.Args
}

func (f *FunctionCall) WithNewChildren(children []Expression) Expression {
	c := *f
	c.Args = children
	return &c
}

// AggregateExpr represents an aggregate expression.
type AggregateExpr struct {
	Function AggregateFunc
	Args     []Expression
	Distinct bool
	Type     types.DataType
}

// AggregateFunc represents an aggregate function.
type AggregateFunc int

const (
	AggCount AggregateFunc = iota
	AggSum
	AggAvg
	AggMin
	AggMax
)

func (f AggregateFunc) String() string {
	switch f {
	case AggCount:
		return "COUNT"
	case AggSum:
		return "SUM"
	case AggAvg:
		return "AVG"
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// NewAggregate creates an aggregate call. COUNT is typed BIGINT, AVG is
// DOUBLE, the others take the type of their first argument.
func NewAggregate(fn AggregateFunc, args ...Expression) *AggregateExpr {
	typ := types.Unknown
	switch {
	case fn == AggCount:
		typ = types.BigInt
	case fn == AggAvg:
		typ = types.Double
	case len(args) > 0:
		typ = args[0].DataType()
	}
	return &AggregateExpr{Function: fn, Args: args, Type: typ}
}

func (a *AggregateExpr) String() string {
	var argStrs []string
	for _, arg := range a.Args {
		argStrs = append(argStrs, arg.String())
	}
	if len(argStrs) == 0 && a.Function == AggCount {
		argStrs = append(argStrs, "*")
	}

	distinct := ""
	if a.Distinct {
		distinct = "DISTINCT "
	}

	return fmt.Sprintf("%s(%s%s)", a.Function.String(), distinct, strings.Join(argStrs, ", "))
}

func (a *AggregateExpr) DataType() types.DataType {
	return a.Type
}

func (a *AggregateExpr) Children() []Expression {
	return a.Args
}

func (a *AggregateExpr) WithNewChildren(children []Expression) Expression {
	c := *a
	c.Args = children
	return &c
}

// Alias names a computed expression. The alias mints a new attribute whose
// identity is ID.
type Alias struct {
	Child Expression
	Name  string
	ID    ExprID
}

// NewAlias creates an alias with a fresh identity.
func NewAlias(child Expression, name string) *Alias {
	return &Alias{Child: child, Name: name, ID: NewExprID()}
}

func (a *Alias) String() string {
	return fmt.Sprintf("%s AS %s#%d", a.Child.String(), a.Name, a.ID)
}

func (a *Alias) DataType() types.DataType {
	return a.Child.DataType()
}

func (a *Alias) Children() []Expression {
	return []Expression{a.Child}
}

func (a *Alias) WithNewChildren(children []Expression) Expression {
	return &Alias{Child: children[0], Name: a.Name, ID: a.ID}
}

func (a *Alias) ToAttribute() *AttributeReference {
	return &AttributeReference{
		ID:       a.ID,
		Name:     a.Name,
		Type:     a.Child.DataType(),
		Nullable: Nullable(a.Child),
	}
}

// Generator is an expression producing zero or more rows per input row.
type Generator interface {
	Expression
	// ElementTypes returns the types of the generated columns.
	ElementTypes() []types.DataType
}

// Explode produces one row per element of an array.
type Explode struct {
	Child Expression
}

func (e *Explode) String() string {
	return fmt.Sprintf("explode(%s)", e.Child.String())
}

func (e *Explode) DataType() types.DataType {
	return types.ElementType(e.Child.DataType())
}

func (e *Explode) Children() []Expression {
	return []Expression{e.Child}
}

func (e *Explode) WithNewChildren(children []Expression) Expression {
	return &Explode{Child: children[0]}
}

func (e *Explode) ElementTypes() []types.DataType {
	return []types.DataType{e.DataType()}
}

// OrderByExpr represents a sort key.
type OrderByExpr struct {
	Expr  Expression
	Order SortOrder
}

func (o OrderByExpr) String() string {
	return fmt.Sprintf("%s %s", o.Expr.String(), o.Order.String())
}

// References returns the attributes referenced anywhere in exprs, in order
// of first appearance.
func References(exprs ...Expression) *AttributeSet {
	refs := NewAttributeSet()
	for _, e := range exprs {
		collectReferences(e, refs)
	}
	return refs
}

func collectReferences(e Expression, refs *AttributeSet) {
	if a, ok := e.(*AttributeReference); ok {
		refs.Add(a)
		return
	}
	for _, c := range e.Children() {
		collectReferences(c, refs)
	}
}

// Nullable reports whether an expression may evaluate to NULL.
func Nullable(e Expression) bool {
	switch e := e.(type) {
	case *AttributeReference:
		return e.Nullable
	case *Literal:
		return e.Value.IsNull()
	case *UnaryOp:
		if e.Operator == OpIsNull || e.Operator == OpIsNotNull {
			return false
		}
	case *AggregateExpr:
		return e.Function != AggCount
	case *Explode:
		return true
	}
	for _, c := range e.Children() {
		if Nullable(c) {
			return true
		}
	}
	return false
}

// Deterministic reports whether every function in the expression returns
// the same result for the same input.
func Deterministic(e Expression) bool {
	if f, ok := e.(*FunctionCall); ok && f.NonDeterministic {
		return false
	}
	for _, c := range e.Children() {
		if !Deterministic(c) {
			return false
		}
	}
	return true
}

// transformExpression rewrites e bottom-up. Sub-trees fn leaves unchanged
// are shared with the input.
func transformExpression(e Expression, fn func(Expression) Expression) Expression {
	children := e.Children()
	if len(children) > 0 {
		changed := false
		newChildren := make([]Expression, len(children))
		for i, c := range children {
			newChildren[i] = transformExpression(c, fn)
			if newChildren[i] != c {
				changed = true
			}
		}
		if changed {
			e = e.WithNewChildren(newChildren)
		}
	}
	return fn(e)
}

// expressionList joins the string forms of exprs.
func expressionList[E Expression](exprs []E) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
