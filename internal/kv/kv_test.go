package kv

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_, ok, err := s.Get(ctx, "c1:theme")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "c1:theme", "dark"))
	v, ok, err := s.Get(ctx, "c1:theme")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "dark", v)

	require.NoError(t, s.Set(ctx, "c1:theme", "light"))
	v, _, _ = s.Get(ctx, "c1:theme")
	require.Equal(t, "light", v)

	require.NoError(t, s.Delete(ctx, "c1:theme"))
	require.NoError(t, s.Delete(ctx, "c1:theme"))
	_, ok, _ = s.Get(ctx, "c1:theme")
	require.False(t, ok)
}

func TestMemory_EmptyValueIsStored(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.Set(ctx, "k", ""))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, v)
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemory()
	require.ErrorIs(t, s.Set(ctx, "k", "v"), context.Canceled)
	_, _, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
}

func TestMemory_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("client-%d:language", i)
			_ = s.Set(ctx, key, "fr")
			_, _, _ = s.Get(ctx, key)
		}(i)
	}
	wg.Wait()
	require.Equal(t, 50, s.Len())
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var s Store = Noop{}

	require.NoError(t, s.Set(ctx, "k", "v"))
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, s.Delete(ctx, "k"))
}

func TestNew(t *testing.T) {
	require.IsType(t, Noop{}, New("none"))
	require.IsType(t, &Memory{}, New("memory"))
	require.IsType(t, &Memory{}, New(""))
}
