package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	t.Run("add and contains", func(t *testing.T) {
		set := NewSet("a", "b")
		set.Add("c")

		assert.True(t, set.Contains("a"))
		assert.True(t, set.Contains("c"))
		assert.False(t, set.Contains("d"))
	})

	t.Run("delete", func(t *testing.T) {
		set := NewSet(1, 2, 3)
		set.Delete(2)

		assert.False(t, set.Contains(2))
		assert.Len(t, set.ToSlice(), 2)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		set := NewSet("x", "x", "x")
		assert.Len(t, set.ToSlice(), 1)
	})
}
