package signing

import (
	"crypto/rand"
	"encoding/hex"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestNewEdSignerFromBuffer(t *testing.T) {
	b := []byte{1, 2, 3}
	_, err := NewEdSigner(WithPrivateKey(b))
	require.ErrorIs(t, err, ErrInvalidKey)

	b = make([]byte, 64)
	_, err = NewEdSigner(WithPrivateKey(b))
	require.ErrorContains(t, err, "private and public do not match")
}

func TestEdSigner_Sign(t *testing.T) {
	ed, err := NewEdSigner()
	require.NoError(t, err)

	m := make([]byte, 4)
	rand.Read(m)
	sig := ed.Sign(WITNESS, m)
	signed := make([]byte, len(m)+1)
	signed[0] = byte(WITNESS)
	copy(signed[1:], m)

	id := ed.NodeID()
	ok := ed25519.Verify(id[:], signed, sig[:])
	require.Truef(t, ok, "failed to verify message %x with sig %x", m, sig)
}

func TestEdSigner_ValidKeyEncoding(t *testing.T) {
	ed, err := NewEdSigner()
	require.NoError(t, err)

	id := ed.NodeID()
	require.Equal(t, []byte(ed.priv[32:]), id.Bytes())
}

func TestEdSigner_WithPrivateKey(t *testing.T) {
	ed, err := NewEdSigner()
	require.NoError(t, err)

	key := ed.PrivateKey()
	ed2, err := NewEdSigner(WithPrivateKey(key))
	require.NoError(t, err)
	require.Equal(t, ed.priv, ed2.priv)
	require.Equal(t, ed.NodeID(), ed2.NodeID())
}

func TestEdSigner_Files(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		path := filepath.Join("data", "identity.key")

		created, err := NewEdSigner(WithFs(fsys), ToFile(path))
		require.NoError(t, err)
		exists, err := afero.Exists(fsys, path)
		require.NoError(t, err)
		require.True(t, exists)

		loaded, err := NewEdSigner(WithFs(fsys), FromFile(path))
		require.NoError(t, err)
		require.Equal(t, created.NodeID(), loaded.NodeID())
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		_, err := NewEdSigner(WithFs(fsys), ToFile("identity.key"))
		require.NoError(t, err)

		_, err = NewEdSigner(WithFs(fsys), ToFile("identity.key"))
		require.ErrorIs(t, err, fs.ErrExist)
	})

	t.Run("corrupted key", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		key := make([]byte, PrivateKeySize)
		require.NoError(t, afero.WriteFile(fsys, "identity.key", []byte(hex.EncodeToString(key)), 0o600))

		_, err := NewEdSigner(WithFs(fsys), FromFile("identity.key"))
		require.ErrorIs(t, err, ErrInvalidKey)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewEdSigner(WithFs(afero.NewMemMapFs()), FromFile("identity.key"))
		require.ErrorIs(t, err, fs.ErrNotExist)
	})
}

func TestEdVerifier_Prefix(t *testing.T) {
	signer, err := NewEdSigner(WithPrefix([]byte("net")))
	require.NoError(t, err)
	msg := []byte("commitment")
	sig := signer.Sign(WITNESS, msg)

	same := NewEdVerifier(WithVerifierPrefix([]byte("net")))
	require.True(t, same.Verify(WITNESS, signer.NodeID(), msg, sig))
	require.False(t, same.Verify(NONCE, signer.NodeID(), msg, sig), "domains must not be interchangeable")

	other := NewEdVerifier(WithVerifierPrefix([]byte("other")))
	require.False(t, other.Verify(WITNESS, signer.NodeID(), msg, sig))
}

func TestKeyFileWhitespace(t *testing.T) {
	ed, err := NewEdSigner()
	require.NoError(t, err)
	fsys := afero.NewMemMapFs()
	data := "  " + hex.EncodeToString(ed.PrivateKey()) + "\n"
	require.NoError(t, afero.WriteFile(fsys, "identity.key", []byte(data), 0o600))

	loaded, err := NewEdSigner(WithFs(fsys), FromFile("identity.key"))
	require.NoError(t, err)
	require.Equal(t, ed.NodeID(), loaded.NodeID())
}

func TestDomainString(t *testing.T) {
	require.Equal(t, "WITNESS", WITNESS.String())
	require.Equal(t, "NONCE", NONCE.String())
	require.Equal(t, "UNKNOWN", Domain(7).String())
}
