package planner

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/dshills/quantaopt/internal/sql/types"
)

// ExprID is the identity of an attribute. It is assigned once, when the
// attribute is created during analysis, and carried unchanged through every
// rewrite. Two attributes are the same column if and only if their IDs match.
type ExprID int64

var lastExprID atomic.Int64

// NewExprID allocates a process-wide unique expression ID.
func NewExprID() ExprID {
	return ExprID(lastExprID.Add(1))
}

// AttributeReference is a handle to a column value flowing through the plan.
type AttributeReference struct {
	ID       ExprID
	Name     string // display only, not unique
	Type     types.DataType
	Nullable bool
}

// NewAttribute creates an attribute with a fresh identity.
func NewAttribute(name string, typ types.DataType, nullable bool) *AttributeReference {
	return &AttributeReference{
		ID:       NewExprID(),
		Name:     name,
		Type:     typ,
		Nullable: nullable,
	}
}

func (a *AttributeReference) String() string {
	return fmt.Sprintf("%s#%d", a.Name, a.ID)
}

func (a *AttributeReference) DataType() types.DataType {
	return a.Type
}

func (a *AttributeReference) Children() []Expression {
	return nil
}

func (a *AttributeReference) WithNewChildren(children []Expression) Expression {
	return a
}

func (a *AttributeReference) ToAttribute() *AttributeReference {
	return a
}

// SameRef reports whether both handles point at the same column.
func (a *AttributeReference) SameRef(other *AttributeReference) bool {
	return other != nil && a.ID == other.ID
}

// WithNullability returns the attribute with the given nullability, keeping
// its identity.
func (a *AttributeReference) WithNullability(nullable bool) *AttributeReference {
	if a.Nullable == nullable {
		return a
	}
	c := *a
	c.Nullable = nullable
	return &c
}

// signature describes every property of the attribute, for fingerprints.
func (a *AttributeReference) signature() string {
	typeName := "?"
	if a.Type != nil {
		typeName = a.Type.Name()
	}
	null := ""
	if a.Nullable {
		null = "?"
	}
	return fmt.Sprintf("%s#%d:%s%s", a.Name, a.ID, typeName, null)
}

// AttributeSet is an insertion-ordered set of attributes keyed by identity.
// The zero value and the nil pointer are both empty sets.
type AttributeSet struct {
	attrs []*AttributeReference
	index map[ExprID]struct{}
}

// NewAttributeSet creates a set holding attrs, deduplicated by identity.
func NewAttributeSet(attrs ...*AttributeReference) *AttributeSet {
	s := &AttributeSet{index: make(map[ExprID]struct{}, len(attrs))}
	for _, a := range attrs {
		s.Add(a)
	}
	return s
}

// Add inserts a and reports whether it was not already present.
func (s *AttributeSet) Add(a *AttributeReference) bool {
	if s.index == nil {
		s.index = make(map[ExprID]struct{})
	}
	if _, ok := s.index[a.ID]; ok {
		return false
	}
	s.index[a.ID] = struct{}{}
	s.attrs = append(s.attrs, a)
	return true
}

// AddAll inserts every attribute of other.
func (s *AttributeSet) AddAll(other *AttributeSet) {
	for _, a := range other.Attributes() {
		s.Add(a)
	}
}

// Contains reports whether an attribute with a's identity is in the set.
func (s *AttributeSet) Contains(a *AttributeReference) bool {
	return s.ContainsID(a.ID)
}

// ContainsID reports whether the identity is in the set.
func (s *AttributeSet) ContainsID(id ExprID) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[id]
	return ok
}

// Len returns the number of attributes.
func (s *AttributeSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.attrs)
}

// Attributes returns the attributes in insertion order.
func (s *AttributeSet) Attributes() []*AttributeReference {
	if s == nil {
		return nil
	}
	return s.attrs
}

// Union returns a new set with the attributes of s followed by those of other.
func (s *AttributeSet) Union(other *AttributeSet) *AttributeSet {
	u := NewAttributeSet(s.Attributes()...)
	u.AddAll(other)
	return u
}

// SubsetOf reports whether every attribute of s is in other.
func (s *AttributeSet) SubsetOf(other *AttributeSet) bool {
	for _, a := range s.Attributes() {
		if !other.Contains(a) {
			return false
		}
	}
	return true
}

// Retain returns the attributes of ordered that are in s, in ordered's order.
func (s *AttributeSet) Retain(ordered []*AttributeReference) []*AttributeReference {
	out := make([]*AttributeReference, 0, len(ordered))
	for _, a := range ordered {
		if s.Contains(a) {
			out = append(out, a)
		}
	}
	return out
}

func (s *AttributeSet) String() string {
	names := make([]string, 0, s.Len())
	for _, a := range s.Attributes() {
		names = append(names, a.String())
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// OutputSet returns the output attributes of plan as a set.
func OutputSet(plan LogicalPlan) *AttributeSet {
	return NewAttributeSet(plan.Output()...)
}

// sameOutput reports whether two attribute lists name the same columns in
// the same order with the same names.
func sameOutput(a, b []*AttributeReference) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Name != b[i].Name {
			return false
		}
	}
	return true
}

// sameSchema reports whether two attribute lists carry the same identities
// and types in the same order.
func sameSchema(a, b []*AttributeReference) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || !types.Equal(a[i].Type, b[i].Type) {
			return false
		}
	}
	return true
}

func attributeList(attrs []*AttributeReference) string {
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = a.String()
	}
	return strings.Join(names, ", ")
}
