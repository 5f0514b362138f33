package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameIndex_Default(t *testing.T) {
	v := SameIndex()

	assert.True(t, v.Valid(Indices{}))
	assert.True(t, v.Valid(Indices{"a": 3}))
	assert.True(t, v.Valid(Indices{"a": 3, "b": 3, "c": 3}))
	assert.False(t, v.Valid(Indices{"a": 3, "b": 2}))
}

func TestSameIndex_Named(t *testing.T) {
	v := SameIndex("a", "b")

	assert.True(t, v.Valid(Indices{"a": 1, "b": 1, "c": 7}), "c is not constrained")
	assert.False(t, v.Valid(Indices{"a": 1, "b": 2}))
	assert.True(t, v.Valid(Indices{"a": 1}), "constant b passes")
}

func TestOneApart(t *testing.T) {
	v := OneApart("y1", "y2")

	assert.True(t, v.Valid(Indices{"y1": 3, "y2": 4}))
	assert.False(t, v.Valid(Indices{"y1": 4, "y2": 4}))
	assert.False(t, v.Valid(Indices{"y1": 4, "y2": 3}))
	assert.True(t, v.Valid(Indices{"y2": 4}), "constant operand passes")
}

func TestAtLeast(t *testing.T) {
	v := AtLeast("idx", 20)

	assert.True(t, v.Valid(Indices{"idx": 20}))
	assert.False(t, v.Valid(Indices{"idx": 19}))
}

func TestAllOfAndFixedValidities(t *testing.T) {
	v := AllOf(SameIndex(), AtLeast("a", 2))

	assert.True(t, v.Valid(Indices{"a": 2, "b": 2}))
	assert.False(t, v.Valid(Indices{"a": 1, "b": 1}))
	assert.False(t, v.Valid(Indices{"a": 2, "b": 3}))

	assert.True(t, Always().Valid(Indices{"a": 1, "b": 9}))
	assert.False(t, Never().Valid(Indices{}))
}

func TestValidityStrings(t *testing.T) {
	assert.Equal(t, "same_index(*)", SameIndex().String())
	assert.Equal(t, "same_index(a,b)", SameIndex("a", "b").String())
	assert.Equal(t, "one_apart(y1,y2)", OneApart("y1", "y2").String())
	assert.Equal(t, "all_of(always,at_least(i,3))", AllOf(Always(), AtLeast("i", 3)).String())
}

func TestFormatIndices(t *testing.T) {
	assert.Equal(t, "a@1 b@2", FormatIndices(Indices{"b": 2, "a": 1}))
	assert.Equal(t, "", FormatIndices(Indices{}))
}
