package planner

import (
	"strings"
)

// Explain renders plan as an indented tree, one node per line:
//
//	Union
//	:- Project(b#2)
//	:  +- LocalRelation(r1: a#1, b#2, c#3)
//	+- Project(d#5)
//	   +- LocalRelation(r2: c#4, d#5, e#6)
func Explain(plan LogicalPlan) string {
	var sb strings.Builder
	explainNode(&sb, plan, "", "")
	return sb.String()
}

func explainNode(sb *strings.Builder, plan LogicalPlan, prefix, childPrefix string) {
	sb.WriteString(prefix)
	sb.WriteString(plan.String())
	sb.WriteByte('\n')

	children := plan.Children()
	for i, child := range children {
		if i == len(children)-1 {
			explainNode(sb, child, childPrefix+"+- ", childPrefix+"   ")
		} else {
			explainNode(sb, child, childPrefix+":- ", childPrefix+":  ")
		}
	}
}
