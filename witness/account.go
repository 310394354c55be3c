package witness

import (
	"bytes"
	"slices"
)

// RawAccount is account data that is already in its committed layout.
type RawAccount []byte

// AgeWitnessInputBytes implements AgeWitnessInput.
func (a RawAccount) AgeWitnessInputBytes() []byte {
	return a
}

// FieldsAccount is a payment account described by its method and named fields,
// e.g. method "SEPA" with fields iban and bic.
type FieldsAccount struct {
	Method string            `mapstructure:"method"`
	Fields map[string]string `mapstructure:"fields"`
}

// AgeWitnessInputBytes implements AgeWitnessInput.
//
// Layout is the method followed by key=value pairs sorted by key, all separated
// by a zero byte. Returns nil for an account without fields.
func (a *FieldsAccount) AgeWitnessInputBytes() []byte {
	if len(a.Fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(a.Fields))
	for key := range a.Fields {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var buf bytes.Buffer
	buf.WriteString(a.Method)
	for _, key := range keys {
		buf.WriteByte(0)
		buf.WriteString(key)
		buf.WriteByte('=')
		buf.WriteString(a.Fields[key])
	}
	return buf.Bytes()
}
