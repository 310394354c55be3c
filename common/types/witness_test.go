package types_test

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/go-agewitness/codec"
	"github.com/spacemeshos/go-agewitness/common/types"
)

func fuzzExtension(ext *map[string]string, c fuzz.Continue) {
	n := c.Intn(types.MaxExtensionEntries + 1)
	if n == 0 {
		*ext = nil
		return
	}
	*ext = make(map[string]string, n)
	for range n {
		(*ext)[fmt.Sprintf("key-%d", c.Intn(1000))] = c.RandString()
	}
}

func TestWitnessEncoding(t *testing.T) {
	f := fuzz.NewWithSeed(1001).NilChance(0).Funcs(fuzzExtension)
	for range 100 {
		var object types.Witness
		f.Fuzz(&object)

		buf, err := codec.Encode(&object)
		require.NoError(t, err)
		var decoded types.Witness
		require.NoError(t, codec.Decode(buf, &decoded))
		require.Equal(t, object, decoded)
		require.Equal(t, buf, codec.MustEncode(&decoded))
	}
}

// witnessPrefix is the encoding of every field before the extension of goldenWitness.
func witnessPrefix() []byte {
	return slices.Concat(
		bytes.Repeat([]byte{1}, types.Hash32Length),
		bytes.Repeat([]byte{2}, types.NodeIDSize),
		bytes.Repeat([]byte{3}, types.EdSignatureSize),
		[]byte{0x04}, // created at 1, compact
	)
}

func goldenWitness() types.Witness {
	w := types.Witness{CreatedAt: 1, Extension: map[string]string{"c": "d", "a": "b"}}
	copy(w.Commitment[:], bytes.Repeat([]byte{1}, types.Hash32Length))
	copy(w.PublicKey[:], bytes.Repeat([]byte{2}, types.NodeIDSize))
	copy(w.Signature[:], bytes.Repeat([]byte{3}, types.EdSignatureSize))
	return w
}

func TestWitnessGoldenEncoding(t *testing.T) {
	w := goldenWitness()
	// two entries sorted by key
	expected := slices.Concat(witnessPrefix(), []byte{
		0x08,
		0x04, 'a', 0x04, 'b',
		0x04, 'c', 0x04, 'd',
	})
	require.Equal(t, expected, codec.MustEncode(&w))

	var decoded types.Witness
	require.NoError(t, codec.Decode(expected, &decoded))
	require.Equal(t, w, decoded)

	w.Extension = nil
	require.Equal(t, slices.Concat(witnessPrefix(), []byte{0x00}), codec.MustEncode(&w))
}

func TestWitnessExtensionOrder(t *testing.T) {
	for _, tc := range []struct {
		desc      string
		extension []byte
	}{
		{"unsorted", []byte{0x08, 0x04, 'c', 0x04, 'd', 0x04, 'a', 0x04, 'b'}},
		{"duplicate", []byte{0x08, 0x04, 'a', 0x04, 'b', 0x04, 'a', 0x04, 'b'}},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			var decoded types.Witness
			err := codec.Decode(slices.Concat(witnessPrefix(), tc.extension), &decoded)
			require.ErrorContains(t, err, "not sorted or not unique")
		})
	}
}

func TestWitnessExtensionLimits(t *testing.T) {
	w := goldenWitness()
	w.Extension = map[string]string{}
	for i := range types.MaxExtensionEntries + 1 {
		w.Extension[fmt.Sprintf("key-%02d", i)] = "value"
	}
	_, err := codec.Encode(&w)
	require.ErrorIs(t, err, types.ErrExtensionTooLarge)

	var decoded types.Witness
	tooMany := slices.Concat(witnessPrefix(), []byte{byte((types.MaxExtensionEntries + 1) << 2)})
	require.ErrorIs(t, codec.Decode(tooMany, &decoded), types.ErrExtensionTooLarge)

	w.Extension = map[string]string{strings.Repeat("k", types.MaxExtensionKeySize+1): "value"}
	_, err = codec.Encode(&w)
	require.Error(t, err)

	w.Extension = map[string]string{"key": strings.Repeat("v", types.MaxExtensionValueSize+1)}
	_, err = codec.Encode(&w)
	require.Error(t, err)
}

func TestWitnessTrailingBytes(t *testing.T) {
	w := goldenWitness()
	buf := append(codec.MustEncode(&w), 0)
	var decoded types.Witness
	require.ErrorIs(t, codec.Decode(buf, &decoded), codec.ErrTrailingBytes)
}

func TestWitnessAge(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w := types.Witness{CreatedAt: uint64(created.UnixMilli())}
	require.Equal(t, created, w.Created().UTC())
	require.Equal(t, 48*time.Hour, w.Age(created.Add(48*time.Hour)))
	require.Zero(t, w.Age(created.Add(-time.Hour)))
	require.Equal(t, w.Commitment.Hex(), w.Hex())
}
