package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const maxTourTxRetries = 10

// RedisTours stores each tour as a JSON string under "tour:<id>". Every
// write refreshes the TTL.
type RedisTours struct {
	client *redis.Client
	ttl    time.Duration
}

var _ TourStore = (*RedisTours)(nil)

func NewRedisTours(client *redis.Client, ttl time.Duration) *RedisTours {
	return &RedisTours{client: client, ttl: ttl}
}

func tourKey(id string) string { return "tour:" + id }

func (r *RedisTours) CreateTour(ctx context.Context, t Tour) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding tour: %w", err)
	}
	ok, err := r.client.SetNX(ctx, tourKey(t.ID), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("storing tour %s: %w", t.ID, err)
	}
	if !ok {
		return ErrTourExists
	}
	return nil
}

func (r *RedisTours) GetTour(ctx context.Context, id string) (Tour, error) {
	data, err := r.client.Get(ctx, tourKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Tour{}, ErrNotFound
	}
	if err != nil {
		return Tour{}, fmt.Errorf("loading tour %s: %w", id, err)
	}
	var t Tour
	if err := json.Unmarshal(data, &t); err != nil {
		return Tour{}, fmt.Errorf("decoding tour %s: %w", id, err)
	}
	return t, nil
}

// ModifyTour uses WATCH/MULTI so concurrent events on one tour are applied
// one at a time. A transaction that loses the race is retried.
func (r *RedisTours) ModifyTour(ctx context.Context, id string, fn func(*Tour) error) (Tour, error) {
	key := tourKey(id)

	for range maxTourTxRetries {
		var t Tour
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}
			t = Tour{}
			if err := json.Unmarshal(data, &t); err != nil {
				return fmt.Errorf("decoding tour %s: %w", id, err)
			}
			if err := fn(&t); err != nil {
				return err
			}
			out, err := json.Marshal(t)
			if err != nil {
				return fmt.Errorf("encoding tour: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, out, r.ttl)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return Tour{}, err
		}
		return t, nil
	}
	return Tour{}, fmt.Errorf("modifying tour %s: gave up after %d conflicting writes", id, maxTourTxRetries)
}

func (r *RedisTours) DeleteTour(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, tourKey(id)).Result()
	if err != nil {
		return fmt.Errorf("deleting tour %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping lets the tour store double as a health check.
func (r *RedisTours) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
