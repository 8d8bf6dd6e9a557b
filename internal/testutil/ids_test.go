package testutil

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialIDs(t *testing.T) {
	ids := NewSequentialIDs("")

	assert.Equal(t, "snap-0001", ids.Generate())
	assert.Equal(t, "snap-0002", ids.Generate())

	ids.Reset()
	assert.Equal(t, "snap-0001", ids.Generate())
}

func TestSequentialIDs_Prefix(t *testing.T) {
	ids := NewSequentialIDs("top")
	assert.Equal(t, "top-0001", ids.Generate())
}

func TestSequentialIDs_Concurrent(t *testing.T) {
	ids := NewSequentialIDs("c")

	const n = 100
	var wg sync.WaitGroup
	results := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = ids.Generate()
		}(i)
	}
	wg.Wait()

	sort.Strings(results)
	for i := 1; i < n; i++ {
		require.NotEqual(t, results[i-1], results[i], "duplicate ID")
	}
	assert.Equal(t, "c-0100", results[n-1])
}

func TestFixedIDs(t *testing.T) {
	ids := NewFixedIDs("a", "b")

	assert.Equal(t, "a", ids.Generate())
	assert.Equal(t, "b", ids.Generate())
	assert.PanicsWithValue(t, "FixedIDs: all IDs exhausted", func() { ids.Generate() })
}
