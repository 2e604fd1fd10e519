package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/quantaopt/internal/sql/types"
)

func TestAttributeIdentity(t *testing.T) {
	a1 := NewAttribute("a", types.Integer, false)
	a2 := NewAttribute("a", types.Integer, false)

	assert.NotEqual(t, a1.ID, a2.ID, "every attribute gets its own identity")
	assert.False(t, a1.SameRef(a2), "equal names are not the same column")
	assert.True(t, a1.SameRef(a1.WithNullability(true)))
	assert.Same(t, a1, a1.WithNullability(false))
	assert.False(t, a1.Nullable, "WithNullability does not modify the original")
}

func TestAttributeSet(t *testing.T) {
	a := NewAttribute("a", types.Integer, false)
	b := NewAttribute("b", types.Text, true)
	c := NewAttribute("c", types.Integer, false)
	shadow := NewAttribute("a", types.Integer, false)

	s := NewAttributeSet(b, a, b)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []*AttributeReference{b, a}, s.Attributes(), "insertion order, deduplicated")
	assert.True(t, s.Contains(a.WithNullability(true)), "membership is by identity")
	assert.False(t, s.Contains(shadow))

	assert.True(t, NewAttributeSet(a).SubsetOf(s))
	assert.False(t, NewAttributeSet(a, c).SubsetOf(s))

	u := s.Union(NewAttributeSet(c, a))
	assert.Equal(t, []*AttributeReference{b, a, c}, u.Attributes())
	assert.Equal(t, 2, s.Len(), "union leaves the receiver alone")

	assert.Equal(t, []*AttributeReference{a, b}, s.Retain([]*AttributeReference{a, c, b}))
	assert.Equal(t, "{b#"+idOf(b)+", a#"+idOf(a)+"}", s.String())
}

func TestAttributeSet_Nil(t *testing.T) {
	var s *AttributeSet
	a := NewAttribute("a", types.Integer, false)

	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains(a))
	assert.Nil(t, s.Attributes())
	assert.True(t, s.SubsetOf(NewAttributeSet()))
	assert.Equal(t, []*AttributeReference{a}, s.Union(NewAttributeSet(a)).Attributes())

	var zero AttributeSet
	assert.True(t, zero.Add(a))
	assert.False(t, zero.Add(a))
}
