package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTermination(t *testing.T) {
	tests := []struct {
		name  string
		term  Termination
		value float64
		index int
		want  bool
		str   string
	}{
		{"index below", IndexAtLeast(3), 0, 2, false, "index>=3"},
		{"index reached", IndexAtLeast(3), 0, 3, true, "index>=3"},
		{"value at least", ValueAtLeast(1.5), 1.5, 0, true, "value>=1.5"},
		{"value below", ValueAtLeast(1.5), 1.4, 9, false, "value>=1.5"},
		{"value at most", ValueAtMost(0), -0.1, 0, true, "value<=0"},
		{"all of", AllOf(IndexAtLeast(2), ValueAtLeast(1)), 1, 1, false, "all(index>=2,value>=1)"},
		{"all of met", AllOf(IndexAtLeast(2), ValueAtLeast(1)), 1, 2, true, "all(index>=2,value>=1)"},
		{"any of", AnyOf(IndexAtLeast(10), ValueAtMost(0)), -1, 0, true, "any(index>=10,value<=0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.term.Done(tt.value, tt.index))
			assert.Equal(t, tt.str, tt.term.String())
		})
	}
}

func TestRequest_DefaultTermination(t *testing.T) {
	req := Request{Target: "x", MinIndex: 4}
	assert.Equal(t, "index>=4", req.termination().String())

	req.Termination = ValueAtMost(1)
	assert.Equal(t, "value<=1", req.termination().String())
}
