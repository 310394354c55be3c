package signing

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
	"github.com/spf13/afero"
)

// PrivateKey is an alias to ed25519.PrivateKey.
type PrivateKey = ed25519.PrivateKey

// PrivateKeySize size of the private key in bytes.
const PrivateKeySize = ed25519.PrivateKeySize

// ErrInvalidKey is returned when a private key is malformed or inconsistent.
var ErrInvalidKey = errors.New("invalid private key")

func checkPrivateKey(priv PrivateKey) error {
	if len(priv) != PrivateKeySize {
		return fmt.Errorf("%w: length %d/%d", ErrInvalidKey, len(priv), PrivateKeySize)
	}
	derived := ed25519.NewKeyFromSeed(priv[:ed25519.SeedSize])
	if !bytes.Equal(derived[ed25519.SeedSize:], priv[ed25519.SeedSize:]) {
		return fmt.Errorf("%w: private and public do not match", ErrInvalidKey)
	}
	return nil
}

// keyFile holds a hex encoded private key. Whitespace around the key is ignored.
type keyFile struct {
	fs   afero.Fs
	path string
}

func (f keyFile) name() string {
	return filepath.Base(f.path)
}

func (f keyFile) load() (PrivateKey, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open identity file at %s: %w", f.path, err)
	}
	data = bytes.TrimSpace(data)
	if n := hex.DecodedLen(len(data)); n != PrivateKeySize {
		return nil, fmt.Errorf("%w: size %d/%d for %s", ErrInvalidKey, n, PrivateKeySize, f.name())
	}
	priv := make(PrivateKey, PrivateKeySize)
	if _, err := hex.Decode(priv, data); err != nil {
		return nil, fmt.Errorf("decoding private key in %s: %w", f.name(), err)
	}
	if err := checkPrivateKey(priv); err != nil {
		return nil, err
	}
	return priv, nil
}

// save never replaces an existing key: a lost key is a lost witness history.
func (f keyFile) save(priv PrivateKey) error {
	exists, err := afero.Exists(f.fs, f.path)
	switch {
	case err != nil:
		return fmt.Errorf("stat identity file %s: %w", f.name(), err)
	case exists:
		return fmt.Errorf("save identity file %s: %w", f.name(), fs.ErrExist)
	}
	if err := f.fs.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create identity dir: %w", err)
	}
	if err := afero.WriteFile(f.fs, f.path, []byte(hex.EncodeToString(priv)), 0o600); err != nil {
		return fmt.Errorf("failed to write identity file: %w", err)
	}
	return nil
}
