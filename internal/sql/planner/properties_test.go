package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/quantaopt/internal/sql/types"
)

// samplePlans returns resolved plans covering every operator kind.
func samplePlans() map[string]LogicalPlan {
	plans := make(map[string]LogicalPlan)

	r := relation("r", "a", "b", "c", "d")
	a, b, c, d := cols(r)[0], cols(r)[1], cols(r)[2], cols(r)[3]
	plans["filter sort limit"] = project(
		NewLogicalLimit(NewLogicalSort(NewLogicalFilter(r, gt(d, 0)), []OrderByExpr{{Expr: c}}), 5, 0), a)

	r1 := relation("r1", "a", "b", "c")
	r2 := relation("r2", "c", "d", "e")
	plans["union"] = project(NewLogicalUnion(NewLogicalFilter(r1, gt(cols(r1)[2], 1)), r2), cols(r1)[1])

	plans["except"] = project(NewLogicalExcept(relation("r", "a", "b"), relation("r", "a", "b"), true),
		NewAlias(NewLiteral(int32(1)), "one"))

	dr := relation("r", "a", "b", "c")
	plans["distinct over projection chain"] = NewLogicalDistinct(project(project(dr, cols(dr)[0], cols(dr)[1]), cols(dr)[0]))

	ir := relation("r", "a", "b")
	plans["intersect at root"] = NewLogicalIntersect(ir, relation("s", "x", "y"), false)

	s := NewAlias(NewAggregate(AggSum, b), "s")
	n := NewAlias(NewAggregate(AggCount), "n")
	plans["aggregate"] = project(NewLogicalAggregate(NewSubqueryAlias(r, "t"), []Expression{a}, []NamedExpression{a, s, n}),
		NewAlias(NewBinaryOp(s.ToAttribute(), OpDivide, n.ToAttribute()), "avg"))

	ga := NewAttribute("a", types.Integer, false)
	gb := NewAttribute("b", types.ArrayOf(types.Text), true)
	gc := NewAttribute("c", types.Text, true)
	gr := NewLocalRelation("g", ga, gb, gc)
	x := NewAttribute("x", types.Text, true)
	plans["generate"] = project(NewLogicalGenerate(gr, &Explode{Child: gb}, true, true, []*AttributeReference{x}), gc, x)

	er := relation("e", "a", "b", "c")
	ea := NewAttribute("a", types.Integer, true)
	eb := NewAttribute("b", types.Integer, true)
	gid := NewAttribute("gid", types.Integer, false)
	expand := NewLogicalExpand(er,
		[][]Expression{{cols(er)[0], cols(er)[1], NewLiteral(int32(0))}, {cols(er)[0], NewLiteral(nil), NewLiteral(int32(1))}},
		[]*AttributeReference{ea, eb, gid}, gid)
	plans["expand"] = project(expand, ea)

	jl := relation("l", "id", "v", "w")
	jr := relation("r", "id", "z")
	plans["join"] = project(
		NewLogicalJoin(jl, NewLogicalJoin(jr, relation("q", "k"), AntiJoin, nil), FullJoin, eq(cols(jl)[0], cols(jr)[0])),
		cols(jl)[1])

	return plans
}

func TestOptimize_Idempotent(t *testing.T) {
	for name, plan := range samplePlans() {
		t.Run(name, func(t *testing.T) {
			once := optimize(t, plan)
			twice := optimize(t, once)
			assert.Equal(t, Fingerprint(once), Fingerprint(twice))
		})
	}
}

func TestOptimize_PreservesRootSchema(t *testing.T) {
	for name, plan := range samplePlans() {
		t.Run(name, func(t *testing.T) {
			result := optimize(t, plan)
			before, after := plan.Output(), result.Output()
			require.Len(t, after, len(before))
			for i := range before {
				assert.Equal(t, before[i].ID, after[i].ID)
				assert.True(t, types.Equal(before[i].Type, after[i].Type))
			}
		})
	}
}

func TestOptimize_NoFalsePruning(t *testing.T) {
	for name, plan := range samplePlans() {
		t.Run(name, func(t *testing.T) {
			result := optimize(t, plan)
			assert.NoError(t, CheckResolved(result), Explain(result))
		})
	}
}

func TestOptimize_NeverPrunesBeneathSetOperators(t *testing.T) {
	r1 := relation("r1", "a", "b", "c")
	r2 := relation("r2", "x", "y", "z")

	roots := map[string]LogicalPlan{
		"except":    NewLogicalExcept(r1, r2, false),
		"intersect": NewLogicalIntersect(r1, r2, true),
		"distinct":  NewLogicalDistinct(r1),
		"projected except": project(NewLogicalExcept(r1, r2, false),
			cols(r1)[0]),
	}

	for name, plan := range roots {
		t.Run(name, func(t *testing.T) {
			result := optimize(t, plan)
			Walk(result, func(node LogicalPlan) bool {
				switch node.(type) {
				case *LogicalExcept, *LogicalIntersect, *LogicalDistinct:
					for _, child := range node.Children() {
						_, isProject := child.(*LogicalProject)
						assert.False(t, isProject, "projection inserted beneath %s", node.String())
					}
				}
				return true
			})
		})
	}
}

func TestOptimize_UnionBranchesAlignByPosition(t *testing.T) {
	r1 := relation("r1", "a", "b", "c", "d")
	r2 := relation("r2", "d", "c", "b", "a")
	r3 := relation("r3", "p", "q", "r", "s")
	plan := project(NewLogicalUnion(r1, r2, r3), cols(r1)[3], cols(r1)[1])

	result := optimize(t, plan)

	top, ok := result.(*LogicalProject)
	require.True(t, ok, Explain(result))
	assert.Equal(t, []string{"d", "b"}, []string{top.Output()[0].Name, top.Output()[1].Name})

	union, ok := top.Children()[0].(*LogicalUnion)
	require.True(t, ok, Explain(result))
	for _, branch := range union.Children() {
		p, ok := branch.(*LogicalProject)
		require.True(t, ok, Explain(branch))
		leaf := p.Children()[0].Output()
		assert.Equal(t, []*AttributeReference{leaf[1], leaf[3]}, p.Output(), Explain(branch))
	}
}
