package planner

import (
	"github.com/dshills/quantaopt/internal/errors"
)

// checkNode verifies that every attribute referenced by the node's own
// expressions is produced by exactly one of its children, and that set
// operators combine children of equal arity.
func checkNode(plan LogicalPlan) error {
	children := plan.Children()

	producers := make(map[ExprID]int)
	for _, child := range children {
		for _, a := range OutputSet(child).Attributes() {
			producers[a.ID]++
		}
	}
	for _, ref := range plan.References().Attributes() {
		switch n := producers[ref.ID]; {
		case n == 0:
			return errors.UnresolvedAttributeError(ref.String(), plan.String())
		case n > 1:
			return errors.AmbiguousReferenceError(ref.String(), plan.String())
		}
	}

	switch p := plan.(type) {
	case *LogicalUnion, *LogicalExcept, *LogicalIntersect:
		expected := len(children[0].Output())
		for i, child := range children[1:] {
			if n := len(child.Output()); n != expected {
				return errors.UnionArityError(plan.String(), expected, n, i+1)
			}
		}
	case *LogicalExpand:
		expected := len(p.Output())
		for i, row := range p.Projections {
			if len(row) != expected {
				return errors.UnionArityError(p.String(), expected, len(row), i)
			}
		}
		if p.GroupingID != nil && !OutputSet(p).Contains(p.GroupingID) {
			return errors.UnresolvedAttributeError(p.GroupingID.String(), p.String())
		}
	}
	return nil
}

// CheckResolved verifies every node of plan, returning the first violation.
func CheckResolved(plan LogicalPlan) error {
	var err error
	Walk(plan, func(node LogicalPlan) bool {
		err = checkNode(node)
		return err == nil
	})
	return err
}
