// Package redis provides a store backed by redis, so cached entities survive restarts.
//
// Messages are stored as Discord sends them, so reactors fetched before a restart are unknown again after it.
package redis

import (
	"context"
	"encoding/json"
	"time"

	"emperror.dev/errors"
	"github.com/mediocregopher/radix/v4"

	"github.com/starshine-sys/cordial/store"
)

var _ store.Store = (*Store)(nil)

const DefaultMessageTTL = 24 * time.Hour

type Store struct {
	client     radix.Client
	prefix     string
	messageTTL time.Duration
}

// Config configures the redis store.
type Config struct {
	// Addr is the address of the redis server, such as localhost:6379.
	Addr string
	// Prefix is prepended to every key.
	Prefix string
	// MessageTTL is how long messages are kept. Defaults to DefaultMessageTTL.
	MessageTTL time.Duration
}

func New(ctx context.Context, c Config) (*Store, error) {
	client, err := (&radix.PoolConfig{}).New(ctx, "tcp", c.Addr)
	if err != nil {
		return nil, errors.Wrap(err, "creating radix client")
	}

	if c.MessageTTL <= 0 {
		c.MessageTTL = DefaultMessageTTL
	}
	return &Store{client: client, prefix: c.Prefix, messageTTL: c.MessageTTL}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(parts ...string) string {
	k := s.prefix
	for i, p := range parts {
		if i != 0 {
			k += ":"
		}
		k += p
	}
	return k
}

// hget gets a single JSON value from a hash.
func hget[T any](ctx context.Context, s *Store, key, field string) (v T, err error) {
	var raw []byte

	err = s.client.Do(ctx, radix.Cmd(&raw, "HGET", key, field))
	if err != nil {
		return v, err
	}

	if raw == nil {
		return v, store.ErrNotFound
	}

	return v, json.Unmarshal(raw, &v)
}

// hmget gets multiple JSON values from a hash, skipping missing fields.
func hmget[T any](ctx context.Context, s *Store, key string, fields []string) ([]T, error) {
	if len(fields) == 0 {
		return nil, nil
	}

	var raws [][]byte
	err := s.client.Do(ctx, radix.Cmd(&raws, "HMGET", append([]string{key}, fields...)...))
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			continue
		}

		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
