// Package kv provides the string key-value slots the stores persist their
// snapshots to.
package kv

import (
	"context"
)

// Store is a string-keyed slot store. Get returns models.ErrKeyNotFound when
// the key has no value.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

type prefixed struct {
	inner  Store
	prefix string
}

// Prefixed namespaces every key of inner with prefix.
func Prefixed(inner Store, prefix string) Store {
	return &prefixed{inner: inner, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = p.prefix + k
	}
	return p.inner.Delete(ctx, full...)
}
