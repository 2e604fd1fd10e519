package planner

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// TransformUp rewrites plan bottom-up: fn is called on every node after its
// children have been rewritten. A node is rebuilt only when one of its
// children changed, so untouched subtrees are shared with the input.
func TransformUp(plan LogicalPlan, fn func(LogicalPlan) (LogicalPlan, error)) (LogicalPlan, error) {
	children := plan.Children()
	if len(children) > 0 {
		changed := false
		newChildren := make([]LogicalPlan, len(children))
		for i, child := range children {
			newChild, err := TransformUp(child, fn)
			if err != nil {
				return nil, err
			}
			newChildren[i] = newChild
			if newChild != child {
				changed = true
			}
		}
		if changed {
			plan = plan.WithNewChildren(newChildren)
		}
	}
	return fn(plan)
}

// Walk visits plan and its descendants in pre-order until fn returns false.
func Walk(plan LogicalPlan, fn func(LogicalPlan) bool) bool {
	if !fn(plan) {
		return false
	}
	for _, child := range plan.Children() {
		if !Walk(child, fn) {
			return false
		}
	}
	return true
}

// Fingerprint returns a string describing the whole plan tree: every node's
// kind, expressions and output attributes, including types and
// nullability. Two plans are structurally identical if and only if their
// fingerprints match.
func Fingerprint(plan LogicalPlan) string {
	var sb strings.Builder
	writeFingerprint(&sb, plan)
	return sb.String()
}

func writeFingerprint(sb *strings.Builder, plan LogicalPlan) {
	if plan == nil {
		sb.WriteString("nil")
		return
	}

	fmt.Fprintf(sb, "%T:", plan)
	sb.WriteString(plan.String())
	sb.WriteString("=>(")
	for i, a := range plan.Output() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(a.signature())
	}
	sb.WriteByte(')')

	children := plan.Children()
	if len(children) > 0 {
		sb.WriteByte('[')
		for i, child := range children {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeFingerprint(sb, child)
		}
		sb.WriteByte(']')
	}
}

// FingerprintHash hashes the plan fingerprint.
func FingerprintHash(plan LogicalPlan) uint64 {
	return xxhash.Sum64String(Fingerprint(plan))
}

// Equal reports whether two plans are structurally identical.
func Equal(a, b LogicalPlan) bool {
	if a == b {
		return true
	}
	return Fingerprint(a) == Fingerprint(b)
}
