// Package signing holds the ed25519 identity of a node. Every signed message is
// prefixed with the network id and a Domain byte.
package signing

import (
	"errors"
	"fmt"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
	"github.com/spf13/afero"

	"github.com/spacemeshos/go-agewitness/common/types"
)

type signerOptions struct {
	priv   PrivateKey
	fs     afero.Fs
	file   string
	create bool
	prefix []byte
}

// SignerOpt modifies EdSigner.
type SignerOpt func(*signerOptions) error

// WithPrefix sets the prefix used by EdSigner. This usually is the network id.
func WithPrefix(prefix []byte) SignerOpt {
	return func(opts *signerOptions) error {
		opts.prefix = prefix
		return nil
	}
}

// WithFs sets the filesystem used by FromFile and ToFile. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) SignerOpt {
	return func(opts *signerOptions) error {
		opts.fs = fs
		return nil
	}
}

// ToFile generates a key and writes it to path. Fails if path exists.
func ToFile(path string) SignerOpt {
	return func(opts *signerOptions) error {
		if opts.file != "" {
			return errors.New("invalid option ToFile: file already set")
		}
		opts.file = path
		opts.create = true
		return nil
	}
}

// FromFile loads the key from path.
func FromFile(path string) SignerOpt {
	return func(opts *signerOptions) error {
		if opts.priv != nil || opts.file != "" {
			return errors.New("invalid option FromFile: key source already set")
		}
		opts.file = path
		return nil
	}
}

// WithPrivateKey uses priv instead of a generated key.
func WithPrivateKey(priv PrivateKey) SignerOpt {
	return func(opts *signerOptions) error {
		if opts.priv != nil {
			return errors.New("invalid option WithPrivateKey: private key already set")
		}
		if err := checkPrivateKey(priv); err != nil {
			return err
		}
		opts.priv = priv
		return nil
	}
}

// EdSigner signs witnesses and nonces on behalf of an account owner.
type EdSigner struct {
	priv   PrivateKey
	id     types.NodeID
	prefix []byte
}

// NewEdSigner creates a signer. Without a key option a new key is generated.
func NewEdSigner(opts ...SignerOpt) (*EdSigner, error) {
	cfg := &signerOptions{fs: afero.NewOsFs()}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	file := keyFile{fs: cfg.fs, path: cfg.file}
	if cfg.file != "" && !cfg.create {
		priv, err := file.load()
		if err != nil {
			return nil, err
		}
		cfg.priv = priv
	}
	if cfg.priv == nil {
		_, priv, err := ed25519.GenerateKey(nil)
		if err != nil {
			return nil, fmt.Errorf("could not generate key pair: %w", err)
		}
		cfg.priv = priv
	}
	if cfg.create {
		if err := file.save(cfg.priv); err != nil {
			return nil, err
		}
	}
	return &EdSigner{
		priv:   cfg.priv,
		id:     types.BytesToNodeID(cfg.priv[ed25519.SeedSize:]),
		prefix: cfg.prefix,
	}, nil
}

// Sign signs m in domain d.
func (es *EdSigner) Sign(d Domain, m []byte) types.EdSignature {
	return types.EdSignature(ed25519.Sign(es.priv, signedMessage(es.prefix, d, m)))
}

// NodeID returns the public key of the signer.
func (es *EdSigner) NodeID() types.NodeID {
	return es.id
}

// PrivateKey returns private key.
func (es *EdSigner) PrivateKey() PrivateKey {
	return es.priv
}

func (es *EdSigner) String() string {
	return es.id.ShortString()
}
