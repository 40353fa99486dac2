// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/checkmate/internal/platform/constants"
)

// RedisGuestRepository implements [GuestRepository] using Redis key expiry.
type RedisGuestRepository struct {
	client *redis.Client
}

// NewRedisGuestRepository creates a new Redis-backed GuestRepository.
func NewRedisGuestRepository(client *redis.Client) *RedisGuestRepository {
	return &RedisGuestRepository{client: client}
}

/*
SaveGuest stores the guest under its ID until ttl elapses.

Parameters:
  - context: context.Context
  - guest: *Guest
  - ttl: time.Duration

Returns:
  - error: Storage failures
*/
func (repository *RedisGuestRepository) SaveGuest(context context.Context, guest *Guest, ttl time.Duration) error {
	payload, err := json.Marshal(guest)
	if err != nil {
		return fmt.Errorf("redis_guest_encode_failed: %w", err)
	}

	if err := repository.client.Set(context, constants.RedisPrefixGuest+guest.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_guest_set_failed: %w", err)
	}
	return nil
}

/*
FindGuest retrieves a live guest.

Description: Returns ErrGuestNotFound if the key is absent or has expired.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Guest: Stored guest
  - error: ErrGuestNotFound or connectivity errors
*/
func (repository *RedisGuestRepository) FindGuest(context context.Context, id string) (*Guest, error) {
	payload, err := repository.client.Get(context, constants.RedisPrefixGuest+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrGuestNotFound
		}
		return nil, fmt.Errorf("redis_guest_get_failed: %w", err)
	}

	var guest Guest
	if err := json.Unmarshal(payload, &guest); err != nil {
		return nil, fmt.Errorf("redis_guest_decode_failed: %w", err)
	}
	return &guest, nil
}
