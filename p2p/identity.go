package p2p

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/natefinch/atomic"
)

const (
	// KeyFilename is a filename with the hex encoded network identity key.
	KeyFilename = "p2p.key"
	keyDir      = "p2p"
)

// EnsureIdentity loads the network identity from dir or generates a new one.
func EnsureIdentity(dir string) (crypto.PrivKey, error) {
	if err := os.MkdirAll(filepath.Join(dir, keyDir), 0o700); err != nil {
		return nil, fmt.Errorf("create p2p dir: %w", err)
	}
	path := filepath.Join(dir, keyDir, KeyFilename)
	key, err := loadIdentity(path)
	switch {
	case err == nil:
		return key, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}
	key, _, err = crypto.GenerateEd25519Key(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate identity: %w", err)
	}
	raw, err := crypto.MarshalPrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("marshal identity: %w", err)
	}
	dst := make([]byte, hex.EncodedLen(len(raw)))
	hex.Encode(dst, raw)
	if err := atomic.WriteFile(path, bytes.NewReader(dst)); err != nil {
		return nil, fmt.Errorf("write identity to %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return nil, fmt.Errorf("restrict identity file permissions: %w", err)
	}
	return key, nil
}

func loadIdentity(path string) (crypto.PrivKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw := make([]byte, hex.DecodedLen(len(data)))
	n, err := hex.Decode(raw, bytes.TrimSpace(data))
	if err != nil {
		return nil, fmt.Errorf("decode identity from %s: %w", path, err)
	}
	key, err := crypto.UnmarshalPrivateKey(raw[:n])
	if err != nil {
		return nil, fmt.Errorf("unmarshal identity from %s: %w", path, err)
	}
	return key, nil
}
