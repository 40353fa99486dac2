// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/checkmate/internal/platform/constants"
)

// subscriberBuffer bounds how far a slow websocket may lag before events are dropped.
const subscriberBuffer = 32

// RedisFeed publishes and subscribes to per-game Redis pub/sub channels.
type RedisFeed struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisFeed returns a feed on client.
func NewRedisFeed(client *redis.Client, logger *slog.Logger) *RedisFeed {
	return &RedisFeed{client: client, logger: logger}
}

func eventChannel(gameID string) string {
	return constants.RedisPrefixGameEvents + gameID
}

// Publish sends event to the game's channel.
func (feed *RedisFeed) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("game_event_encode_failed: %w", err)
	}
	if err := feed.client.Publish(ctx, eventChannel(event.GameID), payload).Err(); err != nil {
		return fmt.Errorf("game_event_publish_failed: %w", err)
	}
	return nil
}

// Subscribe listens on the game's channel. The returned channel is closed when
// ctx is cancelled or the subscription drops.
func (feed *RedisFeed) Subscribe(ctx context.Context, gameID string) (<-chan Event, error) {
	pubsub := feed.client.Subscribe(ctx, eventChannel(gameID))

	// Wait for the confirmation so no event published after we return is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("game_event_subscribe_failed: %w", err)
	}

	events := make(chan Event, subscriberBuffer)
	go func() {
		defer close(events)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case message, ok := <-messages:
				if !ok {
					return
				}

				var event Event
				if err := json.Unmarshal([]byte(message.Payload), &event); err != nil {
					feed.logger.Warn("game_event_decode_failed",
						slog.String("game_id", gameID),
						slog.Any("error", err),
					)
					continue
				}

				select {
				case events <- event:
				default:
					feed.logger.Warn("game_event_dropped", slog.String("game_id", gameID))
				}
			}
		}
	}()

	return events, nil
}
