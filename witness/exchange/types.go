package exchange

import (
	"github.com/spacemeshos/go-scale"

	"github.com/spacemeshos/go-agewitness/common/types"
)

const (
	// MaxAccountFieldsSize bounds the account fields revealed in a proof.
	MaxAccountFieldsSize = 4096
	// MaxSaltSize bounds the salt revealed in a proof.
	MaxSaltSize = 256
	// MaxErrorSize bounds the error message in a response.
	MaxErrorSize = 1024
)

// Challenge is sent by the verifier. It names the witness the prover claims and
// carries a fresh liveness nonce.
type Challenge struct {
	Commitment types.Hash32
	Nonce      uint64
}

// EncodeScale implements scale codec interface.
func (c *Challenge) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeByteArray(enc, c.Commitment[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, c.Nonce)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (c *Challenge) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		n, err := scale.DecodeByteArray(dec, c.Commitment[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		c.Nonce = field
	}
	return total, nil
}

// Proof reveals the account behind a witness and answers the challenge.
type Proof struct {
	AccountFields  []byte
	Salt           []byte
	PublicKey      types.NodeID
	Witness        types.Witness
	NonceSignature types.EdSignature
}

// EncodeScale implements scale codec interface.
func (p *Proof) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeByteSliceWithLimit(enc, p.AccountFields, MaxAccountFieldsSize)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeByteSliceWithLimit(enc, p.Salt, MaxSaltSize)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeByteArray(enc, p.PublicKey[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := p.Witness.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeByteArray(enc, p.NonceSignature[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (p *Proof) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeByteSliceWithLimit(dec, MaxAccountFieldsSize)
		if err != nil {
			return total, err
		}
		total += n
		p.AccountFields = field
	}
	{
		field, n, err := scale.DecodeByteSliceWithLimit(dec, MaxSaltSize)
		if err != nil {
			return total, err
		}
		total += n
		p.Salt = field
	}
	{
		n, err := scale.DecodeByteArray(dec, p.PublicKey[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := p.Witness.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.DecodeByteArray(dec, p.NonceSignature[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// Response carries either a proof or an error reported by the prover.
type Response struct {
	Error string
	Proof Proof
}

// EncodeScale implements scale codec interface.
func (r *Response) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeStringWithLimit(enc, r.Error, MaxErrorSize)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := r.Proof.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (r *Response) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeStringWithLimit(dec, MaxErrorSize)
		if err != nil {
			return total, err
		}
		total += n
		r.Error = field
	}
	{
		n, err := r.Proof.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
