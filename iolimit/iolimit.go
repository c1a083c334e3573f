// Copyright 2024 The DLite-Go Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package iolimit bounds the number of concurrent blocking calls
// dispatched across the StoragePlugin boundary. It adapts the teacher's
// util/limiter.CountLimit - a non-blocking, error-returning count limit
// - into a semaphore a caller can block on, since a driver call should
// wait for a free slot rather than fail the caller outright.
package iolimit

import (
	"context"

	"github.com/sintef/dlite-go/util/limiter"
)

// Limiter bounds the number of concurrent driver calls in flight.
type Limiter struct {
	sem   chan struct{}
	count limiter.CountLimit
}

// New returns a Limiter allowing at most concurrency simultaneous calls.
// concurrency <= 0 means unbounded.
func New(concurrency int) *Limiter {
	if concurrency <= 0 {
		return &Limiter{}
	}
	return &Limiter{
		sem:   make(chan struct{}, concurrency),
		count: limiter.NewCountLimit(concurrency),
	}
}

// Acquire blocks until a slot is free or ctx is done. The channel send
// provides the blocking wait; count mirrors the same reservation so
// InFlight reports a consistent count without racing the channel's
// internal state.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l == nil || l.sem == nil {
		return nil
	}
	select {
	case l.sem <- struct{}{}:
		_ = l.count.Acquire()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees the slot Acquire reserved.
func (l *Limiter) Release() {
	if l == nil || l.sem == nil {
		return
	}
	<-l.sem
	l.count.Release()
}

// InFlight reports the number of calls currently holding a slot.
func (l *Limiter) InFlight() int {
	if l == nil || l.count == nil {
		return 0
	}
	return l.count.Running()
}

// Call runs fn with a slot held, releasing it when fn returns.
func (l *Limiter) Call(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}
