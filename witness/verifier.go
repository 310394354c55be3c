package witness

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/go-agewitness/common/types"
	"github.com/spacemeshos/go-agewitness/signing"
)

// DefaultReleaseTolerance is the clock skew allowed for witnesses dated before the
// release date.
const DefaultReleaseTolerance = 24 * time.Hour

// Reason is the outcome of a verification.
type Reason uint8

const (
	Accept Reason = iota
	MalformedInput
	StaleOrInvalidCreationDate
	KeyMismatch
	CommitmentMismatch
	InvalidWitnessSignature
	InvalidNonceSignature
)

func (r Reason) String() string {
	switch r {
	case Accept:
		return "accept"
	case MalformedInput:
		return "malformed_input"
	case StaleOrInvalidCreationDate:
		return "stale_or_invalid_creation_date"
	case KeyMismatch:
		return "key_mismatch"
	case CommitmentMismatch:
		return "commitment_mismatch"
	case InvalidWitnessSignature:
		return "invalid_witness_signature"
	case InvalidNonceSignature:
		return "invalid_nonce_signature"
	default:
		return "unknown"
	}
}

// State of the verification state machine.
type State uint8

const (
	StateStart State = iota
	StateCheckReleaseDate
	StateCheckKeyBinding
	StateCheckCommitment
	StateCheckSignature
	StateCheckNonceSignature
	StateAccept
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateCheckReleaseDate:
		return "check_release_date"
	case StateCheckKeyBinding:
		return "check_key_binding"
	case StateCheckCommitment:
		return "check_commitment"
	case StateCheckSignature:
		return "check_signature"
	case StateCheckNonceSignature:
		return "check_nonce_signature"
	case StateAccept:
		return "accept"
	default:
		return "unknown"
	}
}

// Result of a verification. State is the state in which verification terminated.
type Result struct {
	Reason Reason
	State  State
}

// Accepted is true only if every check passed. Any other result means the claimed
// age must not be trusted, regardless of the reason.
func (r Result) Accepted() bool {
	return r.Reason == Accept && r.State == StateAccept
}

// MarshalLogObject implements logging encoder for Result.
func (r Result) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddString("reason", r.Reason.String())
	encoder.AddString("state", r.State.String())
	return nil
}

// VerificationInput is the material a counter-party presents in a verification session.
type VerificationInput struct {
	AccountFields []byte
	Salt          []byte
	Witness       *types.Witness
	// PublicKey the counter-party claims to own.
	PublicKey []byte
	// Nonce generated by the verifier for this session.
	Nonce uint64
	// NonceSignature produced by the counter-party over EncodeNonce(Nonce).
	NonceSignature []byte
}

// EncodeNonce returns the signed representation of the nonce, 8 bytes big-endian.
func EncodeNonce(nonce uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, nonce)
}

// SignNonce answers a liveness challenge.
func SignNonce(signer Signer, nonce uint64) types.EdSignature {
	return signer.Sign(signing.NONCE, EncodeNonce(nonce))
}

// VerifierOpt configures Verifier.
type VerifierOpt func(*Verifier)

// WithVerifierLogger sets the logger.
func WithVerifierLogger(logger *zap.Logger) VerifierOpt {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// WithVerifierClock sets the clock used to report the age of accepted witnesses.
func WithVerifierClock(clock clockwork.Clock) VerifierOpt {
	return func(v *Verifier) {
		v.clock = clock
	}
}

// WithReleaseTolerance overwrites DefaultReleaseTolerance.
func WithReleaseTolerance(tolerance time.Duration) VerifierOpt {
	return func(v *Verifier) {
		v.tolerance = tolerance
	}
}

// Verifier runs the verification protocol for witnesses presented by counter-parties.
// It is stateless and safe for concurrent use.
type Verifier struct {
	logger      *zap.Logger
	clock       clockwork.Clock
	verifier    sigVerifier
	releaseDate time.Time
	tolerance   time.Duration
}

// NewVerifier creates a Verifier that rejects witnesses dated before releaseDate
// minus the tolerance.
func NewVerifier(verifier *signing.EdVerifier, releaseDate time.Time, opts ...VerifierOpt) *Verifier {
	v := &Verifier{
		logger:      zap.NewNop(),
		clock:       clockwork.NewRealClock(),
		verifier:    verifier,
		releaseDate: releaseDate,
		tolerance:   DefaultReleaseTolerance,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Floor is the earliest creation date an acceptable witness may carry.
func (v *Verifier) Floor() time.Time {
	return v.releaseDate.Add(-v.tolerance)
}

type check struct {
	state  State
	reason Reason
	ok     func(*VerificationInput) bool
}

// Verify runs the checks in order and stops at the first failing one.
func (v *Verifier) Verify(in *VerificationInput) Result {
	result := v.verify(in)
	verifications.WithLabelValues(result.Reason.String()).Inc()
	if result.Accepted() {
		age := in.Witness.Age(v.clock.Now())
		acceptedAge.Observe(age.Hours() / 24)
		v.logger.Debug("accepted witness", zap.Inline(in.Witness), zap.Duration("age", age))
	} else {
		v.logger.Debug("rejected witness", zap.Inline(result))
	}
	return result
}

func (v *Verifier) verify(in *VerificationInput) Result {
	if malformed(in) {
		return Result{Reason: MalformedInput, State: StateStart}
	}
	checks := []check{
		{StateCheckReleaseDate, StaleOrInvalidCreationDate, v.checkReleaseDate},
		{StateCheckKeyBinding, KeyMismatch, checkKeyBinding},
		{StateCheckCommitment, CommitmentMismatch, checkCommitment},
		{StateCheckSignature, InvalidWitnessSignature, v.checkSignature},
		{StateCheckNonceSignature, InvalidNonceSignature, v.checkNonceSignature},
	}
	for _, c := range checks {
		if !c.ok(in) {
			return Result{Reason: c.reason, State: c.state}
		}
	}
	return Result{Reason: Accept, State: StateAccept}
}

func malformed(in *VerificationInput) bool {
	return in == nil ||
		in.Witness == nil ||
		len(in.AccountFields) == 0 ||
		len(in.Salt) == 0 ||
		len(in.PublicKey) != types.NodeIDSize ||
		len(in.NonceSignature) != types.EdSignatureSize
}

func (v *Verifier) checkReleaseDate(in *VerificationInput) bool {
	floor := v.Floor().UnixMilli()
	return floor <= 0 || in.Witness.CreatedAt >= uint64(floor)
}

func checkKeyBinding(in *VerificationInput) bool {
	return bytes.Equal(in.PublicKey, in.Witness.PublicKey.Bytes())
}

func checkCommitment(in *VerificationInput) bool {
	digest, err := Commit(in.AccountFields, in.Salt)
	return err == nil && digest == in.Witness.Commitment
}

func (v *Verifier) checkSignature(in *VerificationInput) bool {
	return v.verifier.Verify(signing.WITNESS, in.Witness.PublicKey, in.Witness.Commitment.Bytes(), in.Witness.Signature)
}

func (v *Verifier) checkNonceSignature(in *VerificationInput) bool {
	return v.verifier.Verify(
		signing.NONCE,
		in.Witness.PublicKey,
		EncodeNonce(in.Nonce),
		types.BytesToEdSignature(in.NonceSignature),
	)
}
