package planner

// ColumnPruning removes columns no operator above needs. It inserts a
// Project beneath an operator whenever a child produces more than is
// required, collapses adjacent projections, and drops unreferenced
// aggregate and expand columns from the operators themselves.
//
// Requirements flow from the Project directly above an operator. A subtree
// with no Project above it is required in full, except where the operator
// itself consumes a subset of its input (Aggregate, Expand, Generate without
// join, the right side of a semi or anti join).
type ColumnPruning struct{}

// Name returns the rule name.
func (r *ColumnPruning) Name() string {
	return "ColumnPruning"
}

// Apply prunes plan bottom-up. It fails on the first node referencing an
// attribute its children do not produce.
func (r *ColumnPruning) Apply(plan LogicalPlan) (LogicalPlan, error) {
	return TransformUp(plan, r.prune)
}

func (r *ColumnPruning) prune(plan LogicalPlan) (LogicalPlan, error) {
	if err := checkNode(plan); err != nil {
		return nil, err
	}

	switch p := plan.(type) {
	case *LogicalProject:
		return r.pruneProject(p), nil

	case *LogicalAggregate:
		if child := prunedChild(p.child(), p.References()); child != p.child() {
			return p.WithNewChildren([]LogicalPlan{child}), nil
		}

	case *LogicalExpand:
		if child := prunedChild(p.child(), p.References()); child != p.child() {
			return p.WithNewChildren([]LogicalPlan{child}), nil
		}

	case *LogicalGenerate:
		if p.Join {
			return p, nil
		}
		if child := prunedChild(p.child(), p.References()); child != p.child() {
			return p.WithNewChildren([]LogicalPlan{child}), nil
		}

	case *LogicalJoin:
		// Right side columns of a semi or anti join never reach the output.
		if p.JoinType == SemiJoin || p.JoinType == AntiJoin {
			right := p.Children()[1]
			if pruned := prunedChild(right, p.References()); pruned != right {
				return p.WithNewChildren([]LogicalPlan{p.Children()[0], pruned}), nil
			}
		}
	}
	return plan, nil
}

// pruneProject applies the policy of the operator directly beneath p.
func (r *ColumnPruning) pruneProject(p *LogicalProject) LogicalPlan {
	required := p.References()

	switch child := p.child().(type) {
	case *LogicalProject:
		return collapseProjects(p, child)

	case *LogicalAggregate:
		if OutputSet(child).SubsetOf(required) {
			return p
		}
		var kept []NamedExpression
		for _, agg := range child.Aggregates {
			if required.Contains(agg.ToAttribute()) {
				kept = append(kept, agg)
			}
		}
		return p.WithNewChildren([]LogicalPlan{
			NewLogicalAggregate(child.child(), child.GroupBy, kept),
		})

	case *LogicalExpand:
		return pruneExpand(p, child, required)

	case *LogicalGenerate:
		if child.Join && required.SubsetOf(NewAttributeSet(child.GeneratorOutput...)) {
			return p.WithNewChildren([]LogicalPlan{
				NewLogicalGenerate(child.child(), child.Generator, false, child.Outer, child.GeneratorOutput),
			})
		}
		return pruneChildren(p, child, required)

	case *LogicalUnion:
		return pruneUnion(p, child, required)

	case *LogicalExcept, *LogicalIntersect, *LogicalDistinct:
		// Duplicate elimination and row matching depend on every column.
		return p

	case *LocalRelation:
		return p

	default:
		return pruneChildren(p, child, required)
	}
}

// pruneChildren restricts every child of node to what node and the Project
// above it reference together.
func pruneChildren(p *LogicalProject, node LogicalPlan, required *AttributeSet) LogicalPlan {
	required = node.References().Union(required)

	changed := false
	children := node.Children()
	newChildren := make([]LogicalPlan, len(children))
	for i, c := range children {
		newChildren[i] = prunedChild(c, required)
		if newChildren[i] != c {
			changed = true
		}
	}
	if !changed {
		return p
	}
	return p.WithNewChildren([]LogicalPlan{node.WithNewChildren(newChildren)})
}

// prunedChild projects c down to the required attributes it produces, in
// c's own output order. It returns c itself when nothing would be removed.
func prunedChild(c LogicalPlan, required *AttributeSet) LogicalPlan {
	output := c.Output()
	kept := required.Retain(output)
	if len(kept) == len(output) {
		return c
	}
	return NewProjectOf(c, kept)
}

// collapseProjects merges outer into inner. Inner entries the outer Project
// does not reference are dropped. The merge itself is skipped when an
// expression that is not deterministic would be evaluated in a new place.
func collapseProjects(outer, inner *LogicalProject) LogicalPlan {
	required := outer.References()

	var kept []NamedExpression
	for _, e := range inner.Projections {
		if required.Contains(e.ToAttribute()) {
			kept = append(kept, e)
		}
	}

	aliases := make(map[ExprID]*Alias)
	for _, e := range kept {
		if a, ok := e.(*Alias); ok {
			if !Deterministic(a.Child) {
				if len(kept) == len(inner.Projections) {
					return outer
				}
				return outer.WithNewChildren([]LogicalPlan{NewLogicalProject(inner.child(), kept)})
			}
			aliases[a.ID] = a
		}
	}

	projections := make([]NamedExpression, len(outer.Projections))
	for i, e := range outer.Projections {
		projections[i] = substituteAliases(e, aliases)
	}
	return NewLogicalProject(inner.child(), projections)
}

// substituteAliases replaces references to aliased attributes with the
// aliased expressions. A top-level reference becomes an Alias keeping the
// identity of the attribute it replaces.
func substituteAliases(e NamedExpression, aliases map[ExprID]*Alias) NamedExpression {
	if attr, ok := e.(*AttributeReference); ok {
		if a, found := aliases[attr.ID]; found {
			return &Alias{Child: a.Child, Name: attr.Name, ID: attr.ID}
		}
		return attr
	}
	return transformExpression(e, func(expr Expression) Expression {
		if attr, ok := expr.(*AttributeReference); ok {
			if a, found := aliases[attr.ID]; found {
				return a.Child
			}
		}
		return expr
	}).(NamedExpression)
}

// pruneExpand drops the output columns nothing above references, removing
// the same position from every projection list. The grouping id is kept.
func pruneExpand(p *LogicalProject, e *LogicalExpand, required *AttributeSet) LogicalPlan {
	output := e.Output()
	keep := make([]bool, len(output))
	var newOutput []*AttributeReference
	for i, a := range output {
		if required.Contains(a) || (e.GroupingID != nil && a.SameRef(e.GroupingID)) {
			keep[i] = true
			newOutput = append(newOutput, a)
		}
	}
	if len(newOutput) == len(output) {
		return pruneChildren(p, e, required)
	}

	projections := make([][]Expression, len(e.Projections))
	for r, row := range e.Projections {
		newRow := make([]Expression, 0, len(newOutput))
		for i, expr := range row {
			if keep[i] {
				newRow = append(newRow, expr)
			}
		}
		projections[r] = newRow
	}
	return p.WithNewChildren([]LogicalPlan{
		NewLogicalExpand(e.child(), projections, newOutput, e.GroupingID),
	})
}

// pruneUnion projects every branch of u down to the positions of the union
// output that p references.
func pruneUnion(p *LogicalProject, u *LogicalUnion, required *AttributeSet) LogicalPlan {
	output := u.Output()
	var positions []int
	for i, a := range output {
		if required.Contains(a) {
			positions = append(positions, i)
		}
	}
	if len(positions) == len(output) {
		return p
	}

	children := u.Children()
	newChildren := make([]LogicalPlan, len(children))
	for i, c := range children {
		childOutput := c.Output()
		selected := make([]*AttributeReference, len(positions))
		for j, pos := range positions {
			selected[j] = childOutput[pos]
		}
		newChildren[i] = NewProjectOf(c, selected)
	}
	return p.WithNewChildren([]LogicalPlan{NewLogicalUnion(newChildren...)})
}
