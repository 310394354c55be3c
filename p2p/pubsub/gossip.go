package pubsub

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	pb "github.com/libp2p/go-libp2p-pubsub/pb"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"go.uber.org/zap"

	"github.com/spacemeshos/go-agewitness/hash"
)

// NullPubSub refuses to publish with ErrNoNetwork. It is used when witnesses are issued
// without a running network.
type NullPubSub struct{}

var _ PublishSubscriber = (*NullPubSub)(nil)

// Register implements Subscriber.
func (*NullPubSub) Register(string, GossipHandler, ...ValidatorOpt) {}

// Publish implements Publisher.
func (*NullPubSub) Publish(context.Context, string, []byte) error {
	return ErrNoNetwork
}

// GossipPubSub runs gossip handlers as topic validators, so that only messages
// accepted by the handler are relayed.
type GossipPubSub struct {
	logger *zap.Logger
	pubsub *pubsub.PubSub
	host   host.Host

	mu     sync.RWMutex
	topics map[string]*pubsub.Topic
}

var _ PublishSubscriber = (*GossipPubSub)(nil)

// Register joins topic and validates every message with handler. Peers that
// send rejected messages are disconnected. Registering a topic twice panics.
func (ps *GossipPubSub) Register(topic string, handler GossipHandler, opts ...ValidatorOpt) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if _, exist := ps.topics[topic]; exist {
		ps.logger.Panic("already registered a topic", zap.String("topic", topic))
	}
	validator := ps.validator(topic, DropPeerOnValidationReject(handler, ps.host, ps.logger))
	if err := ps.pubsub.RegisterTopicValidator(topic, validator, opts...); err != nil {
		ps.logger.Panic("failed to register topic validator", zap.String("topic", topic), zap.Error(err))
	}
	joined, err := ps.pubsub.Join(topic)
	if err != nil {
		ps.logger.Panic("failed to join a topic", zap.String("topic", topic), zap.Error(err))
	}
	// relaying without a subscription, handlers see messages through validation
	if _, err := joined.Relay(); err != nil {
		ps.logger.Panic("failed to enable relay for topic", zap.String("topic", topic), zap.Error(err))
	}
	ps.topics[topic] = joined
}

func (ps *GossipPubSub) validator(topic string, handler GossipHandler) pubsub.ValidatorEx {
	return func(ctx context.Context, pid peer.ID, msg *pubsub.Message) pubsub.ValidationResult {
		start := time.Now()
		err := handler(ctx, pid, msg.Data)
		result := castResult(err)
		processedMessagesDuration.WithLabelValues(topic, resultLabel(result)).Observe(float64(time.Since(start)))
		if err != nil {
			ps.logger.Debug("topic validation failed",
				zap.String("topic", topic),
				zap.Stringer("peer", pid),
				zap.Error(err),
			)
		}
		return result
	}
}

// Publish message to the topic. The topic must be registered.
func (ps *GossipPubSub) Publish(ctx context.Context, topic string, msg []byte) error {
	ps.mu.RLock()
	joined := ps.topics[topic]
	ps.mu.RUnlock()
	if joined == nil {
		return fmt.Errorf("publish to %s: topic is not registered", topic)
	}
	if err := joined.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish to topic %v: %w", topic, err)
	}
	return nil
}

// TopicPeers returns peers we are connected to on topic.
func (ps *GossipPubSub) TopicPeers(topic string) []peer.ID {
	return ps.pubsub.ListPeers(topic)
}

// DropPeerOnValidationReject closes connections to a peer whose message was
// rejected by handler.
func DropPeerOnValidationReject(handler GossipHandler, h host.Host, logger *zap.Logger) GossipHandler {
	return func(ctx context.Context, pid peer.ID, msg []byte) error {
		err := handler(ctx, pid, msg)
		if !errors.Is(err, ErrValidationReject) || pid == h.ID() {
			return err
		}
		logger.Debug("dropping peer on validation reject", zap.Stringer("peer", pid), zap.Error(err))
		if cerr := h.Network().ClosePeer(pid); cerr != nil {
			logger.Debug("failed to close peer", zap.Stringer("peer", pid), zap.Error(cerr))
		}
		return err
	}
}

func castResult(err error) pubsub.ValidationResult {
	switch {
	case err == nil:
		return pubsub.ValidationAccept
	case errors.Is(err, ErrValidationReject):
		return pubsub.ValidationReject
	default:
		return pubsub.ValidationIgnore
	}
}

func resultLabel(r pubsub.ValidationResult) string {
	switch r {
	case pubsub.ValidationAccept:
		return "accept"
	case pubsub.ValidationReject:
		return "reject"
	default:
		return "ignore"
	}
}

// msgID deduplicates by content, so the same witness relayed by different peers
// is processed once.
func msgID(msg *pb.Message) string {
	var topic []byte
	if msg.Topic != nil {
		topic = []byte(*msg.Topic)
	}
	id := hash.Blake3(topic, msg.Data)
	return string(id[:])
}
