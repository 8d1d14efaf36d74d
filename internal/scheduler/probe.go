// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"sync"
	"time"
)

// ProbeStatus is the outcome of the last backend check.
type ProbeStatus struct {
	Checked   bool
	OK        bool
	CheckedAt time.Time
	Latency   time.Duration
	Error     string
}

// Probe periodically checks that the backend answers and keeps the last result.
type Probe struct {
	check func(ctx context.Context) error
	now   func() time.Time

	mu     sync.RWMutex
	status ProbeStatus
}

// NewProbe creates a probe around check.
func NewProbe(check func(ctx context.Context) error) *Probe {
	return &Probe{check: check, now: time.Now}
}

// Run performs one check. The error is returned so the scheduler records it.
func (p *Probe) Run(ctx context.Context) error {
	started := p.now()
	err := p.check(ctx)
	st := ProbeStatus{
		Checked:   true,
		OK:        err == nil,
		CheckedAt: started,
		Latency:   p.now().Sub(started),
	}
	if err != nil {
		st.Error = err.Error()
	}

	p.mu.Lock()
	p.status = st
	p.mu.Unlock()
	return err
}

// Status returns the last result. Checked is false before the first run.
func (p *Probe) Status() ProbeStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}
