package planner

import (
	"fmt"
)

// LogicalPlan represents a node in a logical query plan.
//
// Nodes are immutable. A rewrite produces a new node through
// WithNewChildren and leaves the original untouched, so unchanged subtrees
// may be shared between the input and output of an optimization.
type LogicalPlan interface {
	// Children returns the child plans.
	Children() []LogicalPlan
	// Output returns the ordered attributes this node produces.
	Output() []*AttributeReference
	// References returns the attributes referenced by this node's own
	// expressions, excluding anything inside its children.
	References() *AttributeSet
	// WithNewChildren returns a copy of the node over the given children.
	WithNewChildren(children []LogicalPlan) LogicalPlan
	// String returns a one-line description of the node itself.
	String() string
	logicalNode()
}

// JoinType represents the type of join.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	RightJoin
	FullJoin
	CrossJoin
	SemiJoin
	AntiJoin
)

func (j JoinType) String() string {
	switch j {
	case InnerJoin:
		return "INNER"
	case LeftJoin:
		return "LEFT"
	case RightJoin:
		return "RIGHT"
	case FullJoin:
		return "FULL"
	case CrossJoin:
		return "CROSS"
	case SemiJoin:
		return "SEMI"
	case AntiJoin:
		return "ANTI"
	default:
		return fmt.Sprintf("Unknown(%d)", j)
	}
}

// SortOrder represents the sort order.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

func (s SortOrder) String() string {
	if s == Descending {
		return "DESC"
	}
	return "ASC"
}

// basePlan provides common functionality for plan nodes.
type basePlan struct {
	children []LogicalPlan
	output   []*AttributeReference
}

func (p *basePlan) Children() []LogicalPlan {
	return p.children
}

func (p *basePlan) Output() []*AttributeReference {
	return p.output
}

func (p *basePlan) References() *AttributeSet {
	return NewAttributeSet()
}

func (p *basePlan) logicalNode() {}

// child returns the only child of a unary node.
func (p *basePlan) child() LogicalPlan {
	return p.children[0]
}
