// Package pubsub broadcasts witnesses over gossipsub.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"time"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"go.uber.org/zap"
)

// WitnessTopic carries account age witnesses.
const WitnessTopic = "aw1"

// Peer score thresholds. Peers that keep sending rejected messages fall below
// the gossip threshold first and are graylisted eventually.
const (
	GossipScoreThreshold             = -500
	PublishScoreThreshold            = -1000
	GraylistScoreThreshold           = -2500
	AcceptPXScoreThreshold           = 1000
	OpportunisticGraftScoreThreshold = 3.5
)

// ErrValidationReject is returned by a GossipHandler when the message is malformed
// or malicious and the sender should be penalized.
var ErrValidationReject = errors.New("validation reject")

// ErrNoNetwork is returned by publishers that are not connected to the network.
// Messages are not delivered and may be published again later.
var ErrNoNetwork = errors.New("pubsub: not connected to the network")

// DefaultConfig for PubSub.
func DefaultConfig() Config {
	return Config{
		Flood:          true,
		MaxMessageSize: 64 << 10,
		QueueSize:      1024,
	}
}

// Config for PubSub.
type Config struct {
	Flood          bool
	IsBootnode     bool
	MaxMessageSize int
	QueueSize      int
}

//go:generate mockgen -typed -package=mocks -destination=./mocks/publisher.go -source=./pubsub.go

// Publisher interface for publishing messages.
type Publisher interface {
	Publish(context.Context, string, []byte) error
}

// Subscriber is an interface for subscribing to messages.
type Subscriber interface {
	Register(string, GossipHandler, ...ValidatorOpt)
}

// PublishSubscriber common interface for publisher and subscribing.
type PublishSubscriber interface {
	Publisher
	Subscriber
}

// GossipHandler is a function that is for receiving messages.
// Returning ErrValidationReject rejects the message, any other error ignores it.
type GossipHandler = func(context.Context, peer.ID, []byte) error

// ValidatorOpt is a type for validator options.
type ValidatorOpt = pubsub.ValidatorOpt

// New creates a gossipsub router on top of h.
func New(ctx context.Context, logger *zap.Logger, h host.Host, cfg Config) (*GossipPubSub, error) {
	ps, err := pubsub.NewGossipSub(ctx, h, options(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gossipsub instance: %w", err)
	}
	return &GossipPubSub{
		logger: logger,
		pubsub: ps,
		host:   h,
		topics: map[string]*pubsub.Topic{},
	}, nil
}

func options(cfg Config) []pubsub.Option {
	opts := []pubsub.Option{
		pubsub.WithFloodPublish(cfg.Flood),
		pubsub.WithMessageIdFn(msgID),
		// witnesses are signed by their owners, the envelope doesn't need to be
		pubsub.WithNoAuthor(),
		pubsub.WithMessageSignaturePolicy(pubsub.StrictNoSign),
		pubsub.WithPeerScore(
			&pubsub.PeerScoreParams{
				AppSpecificScore:  func(peer.ID) float64 { return 0 },
				AppSpecificWeight: 1,

				// behavioural penalties decay after an hour
				BehaviourPenaltyThreshold: 6,
				BehaviourPenaltyWeight:    -10,
				BehaviourPenaltyDecay:     pubsub.ScoreParameterDecay(time.Hour),

				DecayInterval: pubsub.DefaultDecayInterval,
				DecayToZero:   pubsub.DefaultDecayToZero,
				RetainScore:   6 * time.Hour,
			},
			&pubsub.PeerScoreThresholds{
				GossipThreshold:             GossipScoreThreshold,
				PublishThreshold:            PublishScoreThreshold,
				GraylistThreshold:           GraylistScoreThreshold,
				AcceptPXThreshold:           AcceptPXScoreThreshold,
				OpportunisticGraftThreshold: OpportunisticGraftScoreThreshold,
			},
		),
	}
	if cfg.QueueSize != 0 {
		opts = append(opts,
			pubsub.WithPeerOutboundQueueSize(cfg.QueueSize),
			pubsub.WithValidateQueueSize(cfg.QueueSize),
		)
	}
	if cfg.MaxMessageSize != 0 {
		opts = append(opts, pubsub.WithMaxMessageSize(cfg.MaxMessageSize))
	}
	if cfg.IsBootnode {
		opts = append(opts, pubsub.WithPeerExchange(true))
	}
	return opts
}
