package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory is an in-process Store bounded by entry count and age.
type Memory struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemory returns a Store holding at most size entries for ttl each.
func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = 1
	}
	return &Memory{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.lru.Get(key)
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.lru.Add(key, value)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.lru.Remove(key)
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.lru.Purge()
	return nil
}

func (m *Memory) Close() error { return nil }

// Len is the number of entries currently held.
func (m *Memory) Len() int { return m.lru.Len() }
