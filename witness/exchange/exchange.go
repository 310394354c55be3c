// Package exchange implements the direct witness exchange between two trade
// counter-parties. The verifier opens a stream, sends a Challenge and the prover
// answers with a Proof that is checked by witness.Verifier.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/libp2p/go-msgio"
	"go.uber.org/zap"

	"github.com/spacemeshos/go-agewitness/codec"
	"github.com/spacemeshos/go-agewitness/common/types"
	"github.com/spacemeshos/go-agewitness/witness"
)

// ProtocolID of the exchange stream.
const ProtocolID = protocol.ID("/aw/exchange/1")

// DefaultTimeout bounds a single exchange.
const DefaultTimeout = 10 * time.Second

const (
	maxChallengeSize = 64
	maxResponseSize  = 64 << 10
)

var (
	// ErrUnknownAccount is reported by the prover when it doesn't own the challenged account.
	ErrUnknownAccount = errors.New("unknown account")
	// ErrPeerResponse wraps an error reported by the prover.
	ErrPeerResponse = errors.New("peer response failed")
	// ErrUnexpectedWitness is returned when the prover answers for another commitment.
	ErrUnexpectedWitness = errors.New("proof for unexpected witness")
)

// Host is the subset of libp2p host used by the exchange.
type Host interface {
	SetStreamHandler(protocol.ID, network.StreamHandler)
	RemoveStreamHandler(protocol.ID)
	NewStream(context.Context, peer.ID, ...protocol.ID) (network.Stream, error)
}

// Opt configures Server and Client.
type Opt func(*config)

type config struct {
	logger  *zap.Logger
	timeout time.Duration
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTimeout bounds the time a single exchange may take.
func WithTimeout(timeout time.Duration) Opt {
	return func(c *config) {
		c.timeout = timeout
	}
}

func newConfig(opts []Opt) config {
	c := config{logger: zap.NewNop(), timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Server answers challenges for accounts in the AccountBook.
type Server struct {
	config
	host  Host
	book  *AccountBook
	store *witness.Store
}

// NewServer creates a Server. Witnesses of local accounts are looked up in the store.
func NewServer(h Host, book *AccountBook, store *witness.Store, opts ...Opt) *Server {
	return &Server{config: newConfig(opts), host: h, book: book, store: store}
}

// Start registers the stream handler.
func (s *Server) Start() {
	s.host.SetStreamHandler(ProtocolID, s.handleStream)
}

// Stop removes the stream handler.
func (s *Server) Stop() {
	s.host.RemoveStreamHandler(ProtocolID)
}

func (s *Server) handleStream(stream network.Stream) {
	defer stream.Close()
	remote := stream.Conn().RemotePeer()
	if err := stream.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		s.logger.Debug("failed to set stream deadline", zap.Stringer("peer", remote), zap.Error(err))
	}
	reader := msgio.NewVarintReaderSize(stream, maxChallengeSize)
	msg, err := reader.ReadMsg()
	if err != nil {
		s.logger.Debug("failed to read challenge", zap.Stringer("peer", remote), zap.Error(err))
		serverRequestFailed.Inc()
		return
	}
	var challenge Challenge
	err = codec.Decode(msg, &challenge)
	reader.ReleaseMsg(msg)
	if err != nil {
		s.logger.Debug("malformed challenge", zap.Stringer("peer", remote), zap.Error(err))
		serverRequestFailed.Inc()
		return
	}

	var resp Response
	proof, err := s.prove(&challenge)
	if err != nil {
		resp.Error = err.Error()
		serverRequestRejected.Inc()
	} else {
		resp.Proof = *proof
		serverRequestOk.Inc()
	}
	if err := msgio.NewVarintWriter(stream).WriteMsg(codec.MustEncode(&resp)); err != nil {
		s.logger.Debug("failed to write response", zap.Stringer("peer", remote), zap.Error(err))
		return
	}
	s.logger.Debug("answered challenge",
		zap.Stringer("peer", remote),
		zap.Stringer("id", challenge.Commitment),
		zap.String("error", resp.Error),
	)
}

func (s *Server) prove(challenge *Challenge) (*Proof, error) {
	account, exists := s.book.Get(challenge.Commitment)
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, challenge.Commitment.ShortString())
	}
	w, exists := s.store.Get(challenge.Commitment)
	if !exists {
		return nil, fmt.Errorf("no witness issued for %s", challenge.Commitment.ShortString())
	}
	return &Proof{
		AccountFields:  account.Fields,
		Salt:           account.Salt,
		PublicKey:      account.Signer.NodeID(),
		Witness:        *w,
		NonceSignature: witness.SignNonce(account.Signer, challenge.Nonce),
	}, nil
}

// Outcome of a completed exchange.
type Outcome struct {
	Session witness.Session
	Witness *types.Witness
	Result  witness.Result
}

// Client challenges counter-parties and verifies their proofs.
type Client struct {
	config
	host     Host
	verifier *witness.Verifier
	nonces   *witness.NonceSource
}

// NewClient creates a Client.
func NewClient(h Host, verifier *witness.Verifier, nonces *witness.NonceSource, opts ...Opt) *Client {
	return &Client{config: newConfig(opts), host: h, verifier: verifier, nonces: nonces}
}

// Verify challenges the peer to prove the witness with the given commitment.
// Rejections by the verifier are reported in Outcome.Result, errors are returned
// only when the exchange itself failed.
func (c *Client) Verify(ctx context.Context, pid peer.ID, commitment types.Hash32) (*Outcome, error) {
	start := time.Now()
	outcome, err := c.verify(ctx, pid, commitment)
	if err != nil {
		clientFailed.Inc()
		return nil, err
	}
	clientLatency.Observe(time.Since(start).Seconds())
	c.logger.Debug("exchange completed",
		zap.Stringer("peer", pid),
		zap.Stringer("session", outcome.Session.ID),
		zap.Object("result", outcome.Result),
	)
	return outcome, nil
}

func (c *Client) verify(ctx context.Context, pid peer.ID, commitment types.Hash32) (*Outcome, error) {
	session, err := c.nonces.Next()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	proof, err := c.request(ctx, pid, &Challenge{Commitment: commitment, Nonce: session.Nonce})
	if err != nil {
		return nil, err
	}
	if proof.Witness.Commitment != commitment {
		return nil, fmt.Errorf("%w: %s instead of %s",
			ErrUnexpectedWitness, proof.Witness.Commitment.ShortString(), commitment.ShortString())
	}
	result := c.verifier.Verify(&witness.VerificationInput{
		AccountFields:  proof.AccountFields,
		Salt:           proof.Salt,
		Witness:        &proof.Witness,
		PublicKey:      proof.PublicKey.Bytes(),
		Nonce:          session.Nonce,
		NonceSignature: proof.NonceSignature.Bytes(),
	})
	return &Outcome{Session: session, Witness: &proof.Witness, Result: result}, nil
}

func (c *Client) request(ctx context.Context, pid peer.ID, challenge *Challenge) (*Proof, error) {
	stream, err := c.host.NewStream(ctx, pid, ProtocolID)
	if err != nil {
		return nil, fmt.Errorf("open stream to %s: %w", pid, err)
	}
	defer stream.Close()
	if deadline, ok := ctx.Deadline(); ok {
		if err := stream.SetDeadline(deadline); err != nil {
			c.logger.Debug("failed to set stream deadline", zap.Stringer("peer", pid), zap.Error(err))
		}
	}
	if err := msgio.NewVarintWriter(stream).WriteMsg(codec.MustEncode(challenge)); err != nil {
		return nil, fmt.Errorf("write challenge to %s: %w", pid, err)
	}
	if err := stream.CloseWrite(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("close write: %w", err)
	}
	msg, err := msgio.NewVarintReaderSize(stream, maxResponseSize).ReadMsg()
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", pid, err)
	}
	var resp Response
	if err := codec.Decode(msg, &resp); err != nil {
		return nil, fmt.Errorf("decode response from %s: %w", pid, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrPeerResponse, resp.Error)
	}
	return &resp.Proof, nil
}
