package witness

import "errors"

var (
	// ErrNoSigner is the cause of a SigningError when no signing key is available.
	ErrNoSigner = errors.New("signing key is not available")
	// ErrInvalidSignature is the cause of a SigningError when the produced signature
	// doesn't verify against the signer's public key.
	ErrInvalidSignature = errors.New("produced signature is invalid")

	errMalformedData = errors.New("malformed witness")
	errKnownWitness  = errors.New("known witness")
)

// SigningError is returned when a witness can't be constructed because the signing
// key is unavailable or corrupted. Nothing is published in this case.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return "sign witness: " + e.Err.Error()
}

func (e *SigningError) Unwrap() error {
	return e.Err
}
