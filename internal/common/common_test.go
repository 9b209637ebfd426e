package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupBy(t *testing.T) {
	order, groups := GroupBy([]string{"apple", "bean", "avocado", "carrot", "beet"}, func(s string) byte { return s[0] })

	assert.Equal(t, []byte{'a', 'b', 'c'}, order)
	assert.Equal(t, []string{"apple", "avocado"}, groups['a'])
	assert.Equal(t, []string{"bean", "beet"}, groups['b'])
	assert.Equal(t, []string{"carrot"}, groups['c'])
}

func TestRemoveAtInsertAt(t *testing.T) {
	s := []int{1, 2, 3, 4}

	assert.Equal(t, []int{1, 3, 4}, RemoveAt(s, 1))
	assert.Equal(t, []int{1, 2, 3, 4}, s)
	assert.Equal(t, []int{2, 3, 4}, RemoveAt(s, 0))
	assert.Equal(t, []int{1, 2, 3}, RemoveAt(s, 3))

	assert.Equal(t, []int{1, 9, 8, 2, 3, 4}, InsertAt(s, 1, 9, 8))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, InsertAt(s, 4, 5))
	assert.Equal(t, []int{1, 2, 3, 4}, InsertAt(s, 2))
}

func TestModulePaths(t *testing.T) {
	assert.Equal(t, "generated.orders", JoinModule("generated", "", "orders"))
	assert.Empty(t, JoinModule("", ""))

	assert.Equal(t, "orders", ModuleBase("generated.orders"))
	assert.Equal(t, "generated", ModuleBase("generated"))
	assert.Empty(t, ModuleBase(""))

	assert.Equal(t, "generated", ModuleParent("generated.orders"))
	assert.Empty(t, ModuleParent("generated"))
}
