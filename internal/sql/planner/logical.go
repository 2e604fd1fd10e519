package planner

import (
	"fmt"
	"strings"
)

// LocalRelation is a leaf with a fixed schema, such as a scanned table.
type LocalRelation struct {
	basePlan
	Name string
}

// NewLocalRelation creates a leaf relation producing attrs.
func NewLocalRelation(name string, attrs ...*AttributeReference) *LocalRelation {
	return &LocalRelation{
		basePlan: basePlan{output: attrs},
		Name:     name,
	}
}

func (r *LocalRelation) String() string {
	return fmt.Sprintf("LocalRelation(%s: %s)", r.Name, attributeList(r.output))
}

func (r *LocalRelation) WithNewChildren(children []LogicalPlan) LogicalPlan {
	return r
}

// LogicalProject represents a projection operation.
type LogicalProject struct {
	basePlan
	Projections []NamedExpression
}

// NewLogicalProject creates a new logical project node.
func NewLogicalProject(child LogicalPlan, projections []NamedExpression) *LogicalProject {
	output := make([]*AttributeReference, len(projections))
	for i, p := range projections {
		output[i] = p.ToAttribute()
	}
	return &LogicalProject{
		basePlan: basePlan{
			children: []LogicalPlan{child},
			output:   output,
		},
		Projections: projections,
	}
}

// NewProjectOf projects attrs out of child, unchanged.
func NewProjectOf(child LogicalPlan, attrs []*AttributeReference) *LogicalProject {
	projections := make([]NamedExpression, len(attrs))
	for i, a := range attrs {
		projections[i] = a
	}
	return NewLogicalProject(child, projections)
}

func (p *LogicalProject) String() string {
	return fmt.Sprintf("Project(%s)", expressionList(p.Projections))
}

func (p *LogicalProject) References() *AttributeSet {
	return References(namedExpressions(p.Projections)...)
}

func (p *LogicalProject) WithNewChildren(children []LogicalPlan) LogicalPlan {
	return NewLogicalProject(children[0], p.Projections)
}

// LogicalFilter represents a filter operation.
type LogicalFilter struct {
	basePlan
	Predicate Expression
}

// NewLogicalFilter creates a new logical filter node.
func NewLogicalFilter(child LogicalPlan, predicate Expression) *LogicalFilter {
	return &LogicalFilter{
		basePlan: basePlan{
			children: []LogicalPlan{child},
			output:   child.Output(),
		},
		Predicate: predicate,
	}
}

func (f *LogicalFilter) String() string {
	return fmt.Sprintf("Filter(%s)", f.Predicate.String())
}

func (f *LogicalFilter) References() *AttributeSet {
	return References(f.Predicate)
}

func (f *LogicalFilter) WithNewChildren(children []LogicalPlan) LogicalPlan {
	return NewLogicalFilter(children[0], f.Predicate)
}

// LogicalSort represents a sort operation.
type LogicalSort struct {
	basePlan
	OrderBy []OrderByExpr
}

// NewLogicalSort creates a new logical sort node.
func NewLogicalSort(child LogicalPlan, orderBy []OrderByExpr) *LogicalSort {
	return &LogicalSort{
		basePlan: basePlan{
			children: []LogicalPlan{child},
			output:   child.Output(),
		},
		OrderBy: orderBy,
	}
}

func (s *LogicalSort) String() string {
	var orderStrs []string
	for _, o := range s.OrderBy {
		orderStrs = append(orderStrs, o.String())
	}
	return fmt.Sprintf("Sort(%s)", strings.Join(orderStrs, ", "))
}

func (s *LogicalSort) References() *AttributeSet {
	exprs := make([]Expression, len(s.OrderBy))
	for i, o := range s.OrderBy {
		exprs[i] = o.Expr
	}
	return References(exprs...)
}

func (s *LogicalSort) WithNewChildren(children []LogicalPlan) LogicalPlan {
	return NewLogicalSort(children[0], s.OrderBy)
}

// LogicalLimit represents a limit operation.
type LogicalLimit struct {
	basePlan
	Limit  int64
	Offset int64
}

// NewLogicalLimit creates a new logical limit node.
func NewLogicalLimit(child LogicalPlan, limit, offset int64) *LogicalLimit {
	return &LogicalLimit{
		basePlan: basePlan{
			children: []LogicalPlan{child},
			output:   child.Output(),
		},
		Limit:  limit,
		Offset: offset,
	}
}

func (l *LogicalLimit) String() string {
	if l.Offset > 0 {
		return fmt.Sprintf("Limit(%d, %d)", l.Limit, l.Offset)
	}
	return fmt.Sprintf("Limit(%d)", l.Limit)
}

func (l *LogicalLimit) WithNewChildren(children []LogicalPlan) LogicalPlan {
	return NewLogicalLimit(children[0], l.Limit, l.Offset)
}

// LogicalAggregate represents an aggregation operation. Aggregates lists the
// output expressions: grouping attributes and aliased aggregate calls.
type LogicalAggregate struct {
	basePlan
	GroupBy    []Expression
	Aggregates []NamedExpression
}

// NewLogicalAggregate creates a new logical aggregate node.
func NewLogicalAggregate(child LogicalPlan, groupBy []Expression, aggregates []NamedExpression) *LogicalAggregate {
	output := make([]*AttributeReference, len(aggregates))
	for i, a := range aggregates {
		output[i] = a.ToAttribute()
	}
	return &LogicalAggregate{
		basePlan: basePlan{
			children: []LogicalPlan{child},
			output:   output,
		},
		GroupBy:    groupBy,
		Aggregates: aggregates,
	}
}

func (a *LogicalAggregate) String() string {
	var parts []string

	if len(a.GroupBy) > 0 {
		parts = append(parts, "GROUP BY "+expressionList(a.GroupBy))
	}

	if len(a.Aggregates) > 0 {
		parts = append(parts, expressionList(a.Aggregates))
	}

	return fmt.Sprintf("Aggregate(%s)", strings.Join(parts, " "))
}

func (a *LogicalAggregate) References() *AttributeSet {
	return References(append(append([]Expression{}, a.GroupBy...), namedExpressions(a.Aggregates)...)...)
}

func (a *LogicalAggregate) WithNewChildren(children []LogicalPlan) LogicalPlan {
	return NewLogicalAggregate(children[0], a.GroupBy, a.Aggregates)
}

// LogicalGenerate applies a generator to every input row. With Join set the
// input columns are carried next to the generated ones; Outer keeps input
// rows for which the generator yields nothing.
type LogicalGenerate struct {
	basePlan
	Generator       Generator
	Join            bool
	Outer           bool
	GeneratorOutput []*AttributeReference
}

// NewLogicalGenerate creates a new logical generate node.
func NewLogicalGenerate(child LogicalPlan, generator Generator, join, outer bool, generatorOutput []*AttributeReference) *LogicalGenerate {
	genOut := generatorOutput
	if outer {
		genOut = make([]*AttributeReference, len(generatorOutput))
		for i, a := range generatorOutput {
			genOut[i] = a.WithNullability(true)
		}
	}
	var output []*AttributeReference
	if join {
		output = append(output, child.Output()...)
	}
	output = append(output, genOut...)
	return &LogicalGenerate{
		basePlan: basePlan{
			children: []LogicalPlan{child},
			output:   output,
		},
		Generator:       generator,
		Join:            join,
		Outer:           outer,
		GeneratorOutput: generatorOutput,
	}
}

func (g *LogicalGenerate) String() string {
	return fmt.Sprintf("Generate(%s, join=%t, outer=%t, [%s])",
		g.Generator.String(), g.Join, g.Outer, attributeList(g.GeneratorOutput))
}

func (g *LogicalGenerate) References() *AttributeSet {
	return References(g.Generator)
}

func (g *LogicalGenerate) WithNewChildren(children []LogicalPlan) LogicalPlan {
	return NewLogicalGenerate(children[0], g.Generator, g.Join, g.Outer, g.GeneratorOutput)
}

// LogicalExpand emits one row per projection list for every input row, as
// grouping sets do. Every projection list lines up with Output by position
// and GroupingID is the output column telling the variants apart.
type LogicalExpand struct {
	basePlan
	Projections [][]Expression
	GroupingID  *AttributeReference
}

// NewLogicalExpand creates a new logical expand node.
func NewLogicalExpand(child LogicalPlan, projections [][]Expression, output []*AttributeReference, groupingID *AttributeReference) *LogicalExpand {
	return &LogicalExpand{
		basePlan: basePlan{
			children: []LogicalPlan{child},
			output:   output,
		},
		Projections: projections,
		GroupingID:  groupingID,
	}
}

func (e *LogicalExpand) String() string {
	rows := make([]string, len(e.Projections))
	for i, row := range e.Projections {
		rows[i] = "[" + expressionList(row) + "]"
	}
	return fmt.Sprintf("Expand([%s], [%s])", strings.Join(rows, ", "), attributeList(e.output))
}

func (e *LogicalExpand) References() *AttributeSet {
	var exprs []Expression
	for _, row := range e.Projections {
		exprs = append(exprs, row...)
	}
	return References(exprs...)
}

func (e *LogicalExpand) WithNewChildren(children []LogicalPlan) LogicalPlan {
	return NewLogicalExpand(children[0], e.Projections, e.output, e.GroupingID)
}

// LogicalUnion concatenates its children, aligning columns by position. The
// output takes the identities of the first child; a column is nullable if
// it is nullable in any child.
type LogicalUnion struct {
	basePlan
}

// NewLogicalUnion creates a new logical union node.
func NewLogicalUnion(children ...LogicalPlan) *LogicalUnion {
	first := children[0].Output()
	output := make([]*AttributeReference, len(first))
	for i, a := range first {
		nullable := a.Nullable
		for _, c := range children[1:] {
			if out := c.Output(); i < len(out) && out[i].Nullable {
				nullable = true
			}
		}
		output[i] = a.WithNullability(nullable)
	}
	return &LogicalUnion{
		basePlan: basePlan{
			children: children,
			output:   output,
		},
	}
}

func (u *LogicalUnion) String() string {
	return "Union"
}

func (u *LogicalUnion) WithNewChildren(children []LogicalPlan) LogicalPlan {
	return NewLogicalUnion(children...)
}

// LogicalExcept returns the rows of the left child absent from the right.
type LogicalExcept struct {
	basePlan
	All bool
}

// NewLogicalExcept creates a new logical except node.
func NewLogicalExcept(left, right LogicalPlan, all bool) *LogicalExcept {
	return &LogicalExcept{
		basePlan: basePlan{
			children: []LogicalPlan{left, right},
			output:   left.Output(),
		},
		All: all,
	}
}

func (e *LogicalExcept) String() string {
	if e.All {
		return "Except(ALL)"
	}
	return "Except"
}

func (e *LogicalExcept) WithNewChildren(children []LogicalPlan) LogicalPlan {
	return NewLogicalExcept(children[0], children[1], e.All)
}

// LogicalIntersect returns the rows present in both children. A column is
// nullable only if it is nullable on both sides.
type LogicalIntersect struct {
	basePlan
	All bool
}

// NewLogicalIntersect creates a new logical intersect node.
func NewLogicalIntersect(left, right LogicalPlan, all bool) *LogicalIntersect {
	leftOut, rightOut := left.Output(), right.Output()
	output := make([]*AttributeReference, len(leftOut))
	for i, a := range leftOut {
		nullable := a.Nullable && (i >= len(rightOut) || rightOut[i].Nullable)
		output[i] = a.WithNullability(nullable)
	}
	return &LogicalIntersect{
		basePlan: basePlan{
			children: []LogicalPlan{left, right},
			output:   output,
		},
		All: all,
	}
}

func (i *LogicalIntersect) String() string {
	if i.All {
		return "Intersect(ALL)"
	}
	return "Intersect"
}

func (i *LogicalIntersect) WithNewChildren(children []LogicalPlan) LogicalPlan {
	return NewLogicalIntersect(children[0], children[1], i.All)
}

// LogicalDistinct removes duplicate rows.
type LogicalDistinct struct {
	basePlan
}

// NewLogicalDistinct creates a new logical distinct node.
func NewLogicalDistinct(child LogicalPlan) *LogicalDistinct {
	return &LogicalDistinct{
		basePlan: basePlan{
			children: []LogicalPlan{child},
			output:   child.Output(),
		},
	}
}

func (d *LogicalDistinct) String() string {
	return "Distinct"
}

func (d *LogicalDistinct) WithNewChildren(children []LogicalPlan) LogicalPlan {
	return NewLogicalDistinct(children[0])
}

// SubqueryAlias names a subtree. It carries no column semantics.
type SubqueryAlias struct {
	basePlan
	Alias string
}

// NewSubqueryAlias creates a new subquery alias node.
func NewSubqueryAlias(child LogicalPlan, alias string) *SubqueryAlias {
	return &SubqueryAlias{
		basePlan: basePlan{
			children: []LogicalPlan{child},
			output:   child.Output(),
		},
		Alias: alias,
	}
}

func (s *SubqueryAlias) String() string {
	return fmt.Sprintf("SubqueryAlias(%s)", s.Alias)
}

func (s *SubqueryAlias) WithNewChildren(children []LogicalPlan) LogicalPlan {
	return NewSubqueryAlias(children[0], s.Alias)
}

// LogicalJoin represents a join operation. Condition is nil for a cross join.
type LogicalJoin struct {
	basePlan
	JoinType  JoinType
	Condition Expression
}

// NewLogicalJoin creates a new logical join node.
func NewLogicalJoin(left, right LogicalPlan, joinType JoinType, condition Expression) *LogicalJoin {
	return &LogicalJoin{
		basePlan: basePlan{
			children: []LogicalPlan{left, right},
			output:   joinOutput(left.Output(), right.Output(), joinType),
		},
		JoinType:  joinType,
		Condition: condition,
	}
}

func joinOutput(left, right []*AttributeReference, joinType JoinType) []*AttributeReference {
	switch joinType {
	case SemiJoin, AntiJoin:
		return left
	case LeftJoin:
		return append(append([]*AttributeReference{}, left...), withNullability(right)...)
	case RightJoin:
		return append(withNullability(left), right...)
	case FullJoin:
		return append(withNullability(left), withNullability(right)...)
	default:
		return append(append([]*AttributeReference{}, left...), right...)
	}
}

func withNullability(attrs []*AttributeReference) []*AttributeReference {
	out := make([]*AttributeReference, len(attrs))
	for i, a := range attrs {
		out[i] = a.WithNullability(true)
	}
	return out
}

func (j *LogicalJoin) String() string {
	if j.Condition == nil {
		return fmt.Sprintf("%sJoin", j.JoinType.String())
	}
	return fmt.Sprintf("%sJoin(%s)", j.JoinType.String(), j.Condition.String())
}

func (j *LogicalJoin) References() *AttributeSet {
	if j.Condition == nil {
		return NewAttributeSet()
	}
	return References(j.Condition)
}

func (j *LogicalJoin) WithNewChildren(children []LogicalPlan) LogicalPlan {
	return NewLogicalJoin(children[0], children[1], j.JoinType, j.Condition)
}

func namedExpressions(named []NamedExpression) []Expression {
	exprs := make([]Expression, len(named))
	for i, n := range named {
		exprs[i] = n
	}
	return exprs
}
