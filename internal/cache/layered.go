package cache

import (
	"context"
	"errors"
)

// Layered reads through a fast Store to a slow one and writes to both.
type Layered struct {
	front, back Store
}

// NewLayered stacks front (usually Memory) over back (usually SQLite).
func NewLayered(front, back Store) *Layered {
	return &Layered{front: front, back: back}
}

func (l *Layered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if v, ok, err := l.front.Get(ctx, key); err == nil && ok {
		return v, true, nil
	}
	v, ok, err := l.back.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = l.front.Set(ctx, key, v)
	return v, true, nil
}

func (l *Layered) Set(ctx context.Context, key string, value []byte) error {
	return errors.Join(l.front.Set(ctx, key, value), l.back.Set(ctx, key, value))
}

func (l *Layered) Delete(ctx context.Context, key string) error {
	return errors.Join(l.front.Delete(ctx, key), l.back.Delete(ctx, key))
}

func (l *Layered) Clear(ctx context.Context) error {
	return errors.Join(l.front.Clear(ctx), l.back.Clear(ctx))
}

func (l *Layered) Close() error {
	return errors.Join(l.front.Close(), l.back.Close())
}
