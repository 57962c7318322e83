// Package metrics records request and analysis counters. The OTel recorder
// pushes them to an OTLP collector over gRPC; NoOp drops them.
package metrics

import (
	"context"
	"time"
)

// Recorder receives one call per served request and per analysis verdict.
type Recorder interface {
	// RecordRequest counts a finished HTTP request and its latency.
	RecordRequest(ctx context.Context, route string, status int, d time.Duration)
	// RecordVerdict counts an analysis outcome, e.g. ("check_linearity", "linear").
	RecordVerdict(ctx context.Context, op, outcome string)
	// RecordCache counts a response cache lookup.
	RecordCache(ctx context.Context, hit bool)
	Close(ctx context.Context) error
}

// NoOp is a Recorder that does nothing.
type NoOp struct{}

// NewNoOp creates a recorder for running without a collector.
func NewNoOp() *NoOp {
	return &NoOp{}
}

func (NoOp) RecordRequest(context.Context, string, int, time.Duration) {}
func (NoOp) RecordVerdict(context.Context, string, string)             {}
func (NoOp) RecordCache(context.Context, bool)                         {}
func (NoOp) Close(context.Context) error                               { return nil }
