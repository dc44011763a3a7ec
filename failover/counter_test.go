package failover

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	c := NewCounter(5)
	require.Equal(t, uint64(5), c.Load())
	require.Equal(t, uint64(6), c.Inc())
	require.Equal(t, uint64(8), c.Advance(2))

	c.Store(1)
	require.Equal(t, uint64(1), c.Load())
}

func TestCounter_ObserveMax(t *testing.T) {
	c := NewCounter(10)

	require.False(t, c.ObserveMax(9))
	require.False(t, c.ObserveMax(10))
	require.Equal(t, uint64(10), c.Load())

	require.True(t, c.ObserveMax(12))
	require.Equal(t, uint64(12), c.Load())
}

func TestCounter_ConcurrentInc(t *testing.T) {
	c := NewCounter(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Inc()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, uint64(5000), c.Load())
}
