package types

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spacemeshos/go-scale"
	"go.uber.org/zap/zapcore"
)

const (
	// MaxExtensionEntries is the number of key/value pairs a witness may carry.
	MaxExtensionEntries = 16
	// MaxExtensionKeySize is the maximal length of an extension key in bytes.
	MaxExtensionKeySize = 64
	// MaxExtensionValueSize is the maximal length of an extension value in bytes.
	MaxExtensionValueSize = 1024
)

// ErrExtensionTooLarge is returned when decoding extension data over the limits.
var ErrExtensionTooLarge = errors.New("witness extension data is too large")

// Witness is a signed commitment to payment account data together with the
// time the issuer claims to have created it.
//
// SAFETY: a Witness is never mutated after construction. Values shared between
// goroutines (e.g. returned from the store) must be treated as read-only,
// including the Extension map.
type Witness struct {
	// Commitment binds account data and salt. It is the identity of the witness.
	Commitment Hash32
	// PublicKey of the identity that signed the commitment.
	PublicKey NodeID
	// Signature over the commitment.
	Signature EdSignature
	// CreatedAt in milliseconds since epoch, supplied by the issuer.
	CreatedAt uint64
	// Extension holds forward compatible fields. It is not part of the identity.
	Extension map[string]string
}

// ID returns the commitment, which is the storage key of the witness.
func (w *Witness) ID() Hash32 {
	return w.Commitment
}

// Hex returns the hex encoded commitment.
func (w *Witness) Hex() string {
	return w.Commitment.Hex()
}

// Created returns CreatedAt as time.
func (w *Witness) Created() time.Time {
	return time.UnixMilli(int64(w.CreatedAt))
}

// Age returns the time elapsed between creation and now. Witnesses dated in the
// future have zero age.
func (w *Witness) Age(now time.Time) time.Duration {
	age := now.Sub(w.Created())
	if age < 0 {
		return 0
	}
	return age
}

// MarshalLogObject implements logging encoder for Witness.
func (w *Witness) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	if w == nil {
		return nil
	}
	encoder.AddString("id", w.Commitment.ShortString())
	encoder.AddString("signer", w.PublicKey.ShortString())
	encoder.AddTime("created", w.Created())
	encoder.AddInt("extension", len(w.Extension))
	return nil
}

// EncodeScale implements scale codec interface.
func (w *Witness) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeByteArray(enc, w.Commitment[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeByteArray(enc, w.PublicKey[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeByteArray(enc, w.Signature[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, w.CreatedAt)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := encodeExtension(enc, w.Extension)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (w *Witness) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		n, err := scale.DecodeByteArray(dec, w.Commitment[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.DecodeByteArray(dec, w.PublicKey[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.DecodeByteArray(dec, w.Signature[:])
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
		w.CreatedAt = field
	}
	{
		field, n, err := decodeExtension(dec)
		if err != nil {
			return total, err
		}
		total += n
		w.Extension = field
	}
	return total, nil
}

// extension is encoded as a compact length followed by key/value pairs sorted by key,
// so that equal maps always produce equal bytes.
func encodeExtension(enc *scale.Encoder, ext map[string]string) (total int, err error) {
	if len(ext) > MaxExtensionEntries {
		return 0, fmt.Errorf("%w: %d entries", ErrExtensionTooLarge, len(ext))
	}
	n, err := scale.EncodeCompact32(enc, uint32(len(ext)))
	if err != nil {
		return total, err
	}
	total += n
	keys := make([]string, 0, len(ext))
	for key := range ext {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		n, err := scale.EncodeStringWithLimit(enc, key, MaxExtensionKeySize)
		if err != nil {
			return total, err
		}
		total += n
		n, err = scale.EncodeStringWithLimit(enc, ext[key], MaxExtensionValueSize)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func decodeExtension(dec *scale.Decoder) (map[string]string, int, error) {
	total := 0
	length, n, err := scale.DecodeCompact32(dec)
	if err != nil {
		return nil, total, err
	}
	total += n
	if length > MaxExtensionEntries {
		return nil, total, fmt.Errorf("%w: %d entries", ErrExtensionTooLarge, length)
	}
	if length == 0 {
		return nil, total, nil
	}
	ext := make(map[string]string, length)
	var prev string
	for i := range length {
		key, n, err := scale.DecodeStringWithLimit(dec, MaxExtensionKeySize)
		if err != nil {
			return nil, total, err
		}
		total += n
		if i > 0 && key <= prev {
			return nil, total, fmt.Errorf("extension keys are not sorted or not unique: %q after %q", key, prev)
		}
		prev = key
		value, n, err := scale.DecodeStringWithLimit(dec, MaxExtensionValueSize)
		if err != nil {
			return nil, total, err
		}
		total += n
		ext[key] = value
	}
	return ext, total, nil
}
