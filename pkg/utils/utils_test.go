package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafelyRunRecoversPanic(t *testing.T) {
	err := SafelyRun(func() { panic("boom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	assert.NoError(t, SafelyRun(func() {}))
}

func TestIfErrReturnStopsAtFirstError(t *testing.T) {
	calls := 0
	stop := errors.New("stop")
	err := IfErrReturn(
		func() error { calls++; return nil },
		func() error { calls++; return stop },
		func() error { calls++; return nil },
	)
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, calls)
}

func TestFilterSlice(t *testing.T) {
	out := FilterSlice([]int{1, 2, 3, 4}, func(i int) (string, bool) {
		return string(rune('a' + i)), i%2 == 0
	})
	assert.Equal(t, []string{"c", "e"}, out)
}

func TestDistinctKeepsOrder(t *testing.T) {
	assert.Equal(t, []int64{3, 1, 2}, Distinct([]int64{3, 1, 3, 2, 1}))
	assert.True(t, Contains([]int64{3, 1}, 1))
	assert.False(t, Contains([]int64{3, 1}, 2))
}
