package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocatorStartsAtOne(t *testing.T) {
	a := New()
	assert.Equal(t, 1, a.Peek())
	assert.Equal(t, 1, a.Next())
	assert.Equal(t, 2, a.Next())
	assert.Equal(t, 3, a.Peek())
}

func TestAllocatorObserve(t *testing.T) {
	tests := []struct {
		name     string
		observed []int
		want     int
	}{
		{"nothing observed", nil, 1},
		{"single id", []int{7}, 8},
		{"unordered ids", []int{4, 12, 3}, 13},
		{"lower than counter is ignored", []int{0, -5}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New()
			for _, id := range tt.observed {
				a.Observe(id)
			}
			assert.Equal(t, tt.want, a.Next())
		})
	}
}

func TestAllocatorNeverRepeats(t *testing.T) {
	a := New()
	seen := make(map[int]bool)
	for i := 0; i < 50; i++ {
		id := a.Next()
		assert.False(t, seen[id], "id %d handed out twice", id)
		seen[id] = true
		if i == 20 {
			a.Observe(10)
		}
	}
}

func TestAllocatorReset(t *testing.T) {
	a := New()
	a.Observe(40)
	a.Reset()
	assert.Equal(t, 1, a.Next())
}
