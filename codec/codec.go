// Package codec encodes witnesses and exchange messages with the scale codec.
// Types implement scale.Encodable and scale.Decodable by hand.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/spacemeshos/go-scale"
)

// ErrTrailingBytes is returned by Decode when the value does not consume the whole buffer.
var ErrTrailingBytes = errors.New("trailing bytes after decoded value")

var buffers = sync.Pool{
	New: func() any {
		b := new(bytes.Buffer)
		// fits a witness without extension data
		b.Grow(256)
		return b
	},
}

// Encode value to a new byte slice.
func Encode(value scale.Encodable) ([]byte, error) {
	b := buffers.Get().(*bytes.Buffer)
	defer func() {
		b.Reset()
		buffers.Put(b)
	}()
	if _, err := value.EncodeScale(scale.NewEncoder(b)); err != nil {
		return nil, fmt.Errorf("encode %T: %w", value, err)
	}
	return bytes.Clone(b.Bytes()), nil
}

// MustEncode encodes value and panics on error. Only for values constructed
// locally, which are known to be within encoding limits.
func MustEncode(value scale.Encodable) []byte {
	buf, err := Encode(value)
	if err != nil {
		panic(err)
	}
	return buf
}

// Decode value from buf. The whole buffer must be consumed.
func Decode(buf []byte, value scale.Decodable) error {
	r := bytes.NewReader(buf)
	if _, err := value.DecodeScale(scale.NewDecoder(r)); err != nil {
		return fmt.Errorf("decode %T: %w", value, err)
	}
	if r.Len() != 0 {
		return fmt.Errorf("decode %T: %w: %d", value, ErrTrailingBytes, r.Len())
	}
	return nil
}
