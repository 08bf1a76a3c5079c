package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mehfilhq/mehfil/internal/domain"
)

// SignalService carries feed events over a redis pub/sub channel. Every
// mutation handler publishes here; a single subscriber pumps the channel
// into the hub's broadcast scope. One channel equals one scope, so adding
// topic rooms later means adding channels, not changing publish call sites.
type SignalService struct {
	rdb     *redis.Client
	channel string
}

func NewSignalService(redisClient *redis.Client, channel string) *SignalService {
	return &SignalService{
		rdb:     redisClient,
		channel: channel,
	}
}

func (s *SignalService) Publish(ctx context.Context, event domain.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, s.channel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Listen subscribes to the feed channel and invokes fn for every decoded
// event until ctx is cancelled. Undecodable payloads are logged and skipped.
func (s *SignalService) Listen(ctx context.Context, fn func(domain.Event)) {
	sub := s.rdb.Subscribe(ctx, s.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event domain.Event
			err := json.Unmarshal([]byte(msg.Payload), &event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Failed to decode feed event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			fn(event)
		}
	}
}
