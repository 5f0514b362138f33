package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexRule_Candidates(t *testing.T) {
	tests := []struct {
		name string
		rule IndexRule
		base int
		want []int
	}{
		{"same", Same(), 4, []int{4}},
		{"previous", Shift(-1), 4, []int{3}},
		{"previous at zero", Shift(-1), 0, nil},
		{"next", Shift(1), 0, []int{1}},
		{"latest", Latest(), 4, []int{4, 3}},
		{"latest at zero", Latest(), 0, []int{0}},
		{"latest below zero", Latest(), -1, nil},
		{"index of", IndexOf("x"), 4, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Candidates(tt.base))
		})
	}
}

func TestIndexRule_String(t *testing.T) {
	assert.Equal(t, "same", Same().String())
	assert.Equal(t, "shift(-1)", Shift(-1).String())
	assert.Equal(t, "shift(+2)", Shift(2).String())
	assert.Equal(t, "latest", Latest().String())
	assert.Equal(t, "index_of(base)", IndexOf("base").String())
}

func TestIndices_Max(t *testing.T) {
	_, ok := Indices{}.Max()
	assert.False(t, ok)

	max, ok := Indices{"a": 1, "b": 5, "c": 2}.Max()
	assert.True(t, ok)
	assert.Equal(t, 5, max)
}

func TestArgs(t *testing.T) {
	a := Args{"b": 2, "a": 1}

	v, err := a.Float("a")
	assert.NoError(t, err)
	assert.Equal(t, 1.0, v)

	_, err = a.Float("missing")
	assert.Error(t, err)

	assert.Equal(t, []string{"a", "b"}, a.Names())
}
