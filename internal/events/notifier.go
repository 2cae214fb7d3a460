package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"

	"github.com/redis/go-redis/v9"
)

// Notifier publishes change-capture events and per-user notification pushes
// into Redis channels, and runs the subscriber side of both.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish marshals the payload and sends it on the event type's channel.
func (n *Notifier) Publish(ctx context.Context, eventType string, payload any) error {
	if n.rdb == nil {
		return nil
	}
	env, err := NewEnvelope(eventType, payload)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", eventType, err)
	}
	return n.rdb.Publish(ctx, ChannelFor(eventType), raw).Err()
}

// PublishUser sends a notification payload to a user's push channel.
func (n *Notifier) PublishUser(ctx context.Context, handle string, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(handle), payload).Err()
}

// StartCaptureSubscriber subscribes to every change-capture channel and calls
// onEvent for each decoded envelope. Undecodable messages are logged and
// dropped. Delivery is at-least-once from the handler's point of view, so
// onEvent must be idempotent.
func (n *Notifier) StartCaptureSubscriber(ctx context.Context, onEvent func(Envelope)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, CapturePattern)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					log.Printf("capture subscriber: undecodable message on %s: %v", msg.Channel, err)
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in CaptureSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onEvent(env)
				}()
			}
		}
	}()

	return nil
}

// StartUserSubscriber subscribes to the per-user push channels and calls
// onMessage for each incoming message. onMessage receives channel and payload.
func (n *Notifier) StartUserSubscriber(ctx context.Context, onMessage func(channel string, payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, UserChannelPrefix+"*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in UserSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannelPrefix prefixes the per-user push channels.
const UserChannelPrefix = "notifications:user:"

// UserChannel derives the Redis channel name for a user's push stream.
func UserChannel(handle string) string {
	return UserChannelPrefix + handle
}
