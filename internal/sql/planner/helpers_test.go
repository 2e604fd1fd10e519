package planner

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/dshills/quantaopt/internal/feature"
	"github.com/dshills/quantaopt/internal/log"
	"github.com/dshills/quantaopt/internal/sql/types"
)

// relation creates a leaf over non-nullable INTEGER columns.
func relation(name string, columns ...string) *LocalRelation {
	attrs := make([]*AttributeReference, len(columns))
	for i, c := range columns {
		attrs[i] = NewAttribute(c, types.Integer, false)
	}
	return NewLocalRelation(name, attrs...)
}

// cols returns the output attributes of plan, so tests can destructure them.
func cols(plan LogicalPlan) []*AttributeReference {
	return plan.Output()
}

func project(child LogicalPlan, exprs ...NamedExpression) *LogicalProject {
	return NewLogicalProject(child, exprs)
}

func gt(left Expression, right interface{}) *BinaryOp {
	return NewBinaryOp(left, OpGreater, NewLiteral(right))
}

func eq(left, right Expression) *BinaryOp {
	return NewBinaryOp(left, OpEqual, right)
}

func testOptimizer(opts ...Option) *Optimizer {
	opts = append([]Option{
		WithLogger(log.Discard()),
		WithFeatures(feature.NewManager()),
	}, opts...)
	return NewOptimizer(opts...)
}

func optimize(t *testing.T, plan LogicalPlan) LogicalPlan {
	t.Helper()
	result, err := testOptimizer().Optimize(plan)
	require.NoError(t, err)
	return result
}

// pruneOnly runs ColumnPruning alone to a fixed point.
func pruneOnly(t *testing.T, plan LogicalPlan) LogicalPlan {
	t.Helper()
	o := testOptimizer(WithBatches(Batch{
		Name:     "prune",
		Strategy: FixedPoint(100),
		Rules:    []Rule{&ColumnPruning{}},
	}))
	result, err := o.Optimize(plan)
	require.NoError(t, err)
	return result
}

func assertPlan(t *testing.T, expected, actual LogicalPlan) {
	t.Helper()
	if diff := cmp.Diff(Explain(expected), Explain(actual)); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func idOf(a *AttributeReference) string {
	return strconv.FormatInt(int64(a.ID), 10)
}
