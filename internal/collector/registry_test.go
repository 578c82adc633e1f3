package collector

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedCollector struct {
	name string
}

func (n namedCollector) Name() string        { return n.name }
func (n namedCollector) Description() string { return "test collector " + n.name }
func (n namedCollector) Collect(context.Context, string, int) ([]Article, error) {
	return []Article{}, nil
}

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	r, err := NewRegistry(NewArxivCollector(""), &PlaceholderCollector{})
	require.NoError(t, err)

	for _, name := range []string{"arxiv", "ARXIV", "Arxiv"} {
		c, ok := r.Lookup(name)
		require.True(t, ok, "lookup %q", name)
		assert.Equal(t, ArxivName, c.Name())
	}

	c, ok := r.Lookup("example articles")
	require.True(t, ok)
	assert.Equal(t, PlaceholderName, c.Name())

	_, ok = r.Lookup("arxi")
	assert.False(t, ok)
}

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	r, err := NewRegistry(namedCollector{"b"}, namedCollector{"a"}, namedCollector{"c"})
	require.NoError(t, err)

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "b", all[0].Name())
	assert.Equal(t, "a", all[1].Name())
	assert.Equal(t, "c", all[2].Name())
	assert.Equal(t, 3, r.Len())

	// 快照不受后续修改影响
	all[0] = namedCollector{"z"}
	assert.Equal(t, "b", r.All()[0].Name())
}

func TestRegistryRejectsDuplicatesAndReservedNames(t *testing.T) {
	r, err := NewRegistry(namedCollector{"Arxiv"})
	require.NoError(t, err)

	err = r.Register(namedCollector{"ARXIV"})
	assert.ErrorIs(t, err, ErrDuplicateCollector)

	assert.Error(t, r.Register(namedCollector{"All"}))
	assert.Error(t, r.Register(namedCollector{"  "}))
	assert.Equal(t, 1, r.Len())

	_, err = NewRegistry(namedCollector{"x"}, namedCollector{"X"})
	assert.ErrorIs(t, err, ErrDuplicateCollector)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = r.Register(namedCollector{string(rune('a' + i))})
		}(i)
		go func() {
			defer wg.Done()
			_ = r.All()
			_, _ = r.Lookup("a")
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, r.Len())
}
