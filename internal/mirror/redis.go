package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roach88/crease/internal/ir"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string // Redis server address (host:port)
	Password string // Redis password (optional)
	DB       int    // Redis database number
	Channel  string // pub/sub channel frames are published on
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	slog.Info("connected to redis mirror", "addr", cfg.Addr, "channel", cfg.Channel)
	return client, nil
}

// Publisher publishes snapshot frames to a Redis channel and keeps the
// newest frame of each match under a key for late subscribers.
type Publisher struct {
	client  *redis.Client
	channel string
	seq     sequencer
}

// NewPublisher wraps an existing client.
func NewPublisher(client *redis.Client, channel string) *Publisher {
	return &Publisher{client: client, channel: channel}
}

// LatestKey is the key holding the newest frame of a match.
func LatestKey(channel, matchID string) string {
	return channel + ":latest:" + matchID
}

// Notify implements engine.Sink. Publishing is fire-and-forget: failures
// are logged and never returned, so a Redis outage cannot fail a command.
func (p *Publisher) Notify(ctx context.Context, cmd ir.Command, state ir.MatchState) error {
	f := NewFrame(p.seq.take(state.MatchID), cmd.Type, state)
	if err := p.Publish(ctx, f); err != nil {
		slog.Warn("mirror: redis publish failed", "match_id", f.MatchID, "seq", f.Seq, "error", err)
	}
	return nil
}

// Publish sends one frame and stores it as the match's newest.
func (p *Publisher) Publish(ctx context.Context, f Frame) error {
	data, err := MarshalFrame(f)
	if err != nil {
		return err
	}

	pipe := p.client.Pipeline()
	pipe.Set(ctx, LatestKey(p.channel, f.MatchID), data, 0)
	pipe.Publish(ctx, p.channel, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish frame: %w", err)
	}
	return nil
}

// Latest reads the newest stored frame of a match. ok is false when the
// match has never been published.
func (p *Publisher) Latest(ctx context.Context, matchID string) (f Frame, ok bool, err error) {
	data, err := p.client.Get(ctx, LatestKey(p.channel, matchID)).Bytes()
	if err == redis.Nil {
		return Frame{}, false, nil
	}
	if err != nil {
		return Frame{}, false, fmt.Errorf("read latest frame: %w", err)
	}
	f, err = UnmarshalFrame(data)
	if err != nil {
		return Frame{}, false, err
	}
	return f, true, nil
}

// Subscriber receives frames published on a Redis channel.
type Subscriber struct {
	client  *redis.Client
	channel string
}

// NewSubscriber wraps an existing client.
func NewSubscriber(client *redis.Client, channel string) *Subscriber {
	return &Subscriber{client: client, channel: channel}
}

// Run delivers every frame to fn until ctx is cancelled. Malformed
// messages are logged and skipped. The subscription is confirmed before
// Run starts receiving, so frames published after ready is closed are
// never missed.
func (s *Subscriber) Run(ctx context.Context, ready chan<- struct{}, fn func(Frame)) error {
	sub := s.client.Subscribe(ctx, s.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.channel, err)
	}
	if ready != nil {
		close(ready)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			f, err := UnmarshalFrame([]byte(msg.Payload))
			if err != nil {
				slog.Warn("mirror: dropping malformed frame", "channel", msg.Channel, "error", err)
				continue
			}
			fn(f)
		}
	}
}

// Relay forwards every frame received from Redis to the hub's spectators.
// It lets a server without a scorer mirror a match scored elsewhere.
func Relay(ctx context.Context, sub *Subscriber, hub *Hub, ready chan<- struct{}) error {
	return sub.Run(ctx, ready, hub.Broadcast)
}
