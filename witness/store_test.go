package witness

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/go-agewitness/common/types"
)

func TestStoreFirstWriteWins(t *testing.T) {
	store := NewStore()
	first := &types.Witness{Commitment: types.Hash32{1}, Signature: types.EdSignature{1}}
	second := &types.Witness{Commitment: types.Hash32{1}, Signature: types.EdSignature{2}}

	require.True(t, store.Add(first))
	require.False(t, store.Add(second))
	require.Equal(t, 1, store.Len())

	got, exists := store.Get(types.Hash32{1})
	require.True(t, exists)
	require.Same(t, first, got)

	got, exists = store.GetHex(types.Hash32{1}.Hex())
	require.True(t, exists)
	require.Same(t, first, got)

	require.True(t, store.Has(types.Hash32{1}))
	require.False(t, store.Has(types.Hash32{2}))
	_, exists = store.GetHex("zz")
	require.False(t, exists)
	_, exists = store.GetHex(types.Hash32{2}.Hex())
	require.False(t, exists)
}

func TestStoreConcurrentAdd(t *testing.T) {
	store := NewStore()
	const writers = 8

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		added = map[types.Hash32]int{}
	)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				w := &types.Witness{Commitment: types.Hash32{byte(j)}, Signature: types.EdSignature{byte(i)}}
				if store.Add(w) {
					mu.Lock()
					added[w.ID()]++
					mu.Unlock()
				}
				_, exists := store.Get(w.ID())
				assert.True(t, exists)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 100, store.Len())
	for id, count := range added {
		require.Equal(t, 1, count, id.ShortString())
	}
}
