package planner

// RemoveNoopProject replaces a Project that passes its child's output
// through unchanged with the child.
type RemoveNoopProject struct{}

// Name returns the rule name.
func (r *RemoveNoopProject) Name() string {
	return "RemoveNoopProject"
}

// Apply removes every no-op projection in plan.
func (r *RemoveNoopProject) Apply(plan LogicalPlan) (LogicalPlan, error) {
	return TransformUp(plan, func(node LogicalPlan) (LogicalPlan, error) {
		p, ok := node.(*LogicalProject)
		if !ok {
			return node, nil
		}
		for _, e := range p.Projections {
			if _, ok := e.(*AttributeReference); !ok {
				return node, nil
			}
		}
		if sameOutput(p.Output(), p.child().Output()) {
			return p.child(), nil
		}
		return node, nil
	})
}
