/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package coordinator implements the poll-and-cache components that sit
// between the device client and the bridge's read surfaces.
package coordinator

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// refreshCooldown bounds how often manual refresh requests reach the
// device; requests inside the cooldown are served by the outcome of the
// most recent poll.
const refreshCooldown = 10 * time.Second

type updateFunc func(ctx context.Context) (interface{}, error)

// coordinator runs one poll loop and caches its last successful result.
// At most one poll is ever in flight: the ticker, the initial refresh and
// manual refreshes all serialize on pollMu.
type coordinator struct {
	name     string
	interval time.Duration
	update   updateFunc
	limiter  *rate.Limiter

	pollMu sync.Mutex

	dataMu    sync.RWMutex
	data      interface{}
	hasData   bool
	lastErr   error
	updatedAt time.Time

	listenerMu sync.Mutex
	listeners  []func()

	done     chan struct{}
	stopOnce sync.Once
}

func newCoordinator(name string, interval time.Duration, update updateFunc) *coordinator {
	return &coordinator{
		name:     name,
		interval: interval,
		update:   update,
		limiter:  rate.NewLimiter(rate.Every(refreshCooldown), 1),
		done:     make(chan struct{}),
	}
}

// Start performs an initial refresh and begins the poll loop. A failed
// initial refresh is logged, not fatal: the loop keeps trying and readers
// see the coordinator as unhealthy until a poll succeeds.
func (c *coordinator) Start(ctx context.Context) error {
	log.Printf("Starting %s coordinator with interval %v", c.name, c.interval)

	if err := c.refresh(ctx); err != nil {
		log.Printf("Initial %s poll failed: %v", c.name, err)
	}

	go c.run(ctx)

	return nil
}

// Stop halts the poll loop. Safe to call more than once.
func (c *coordinator) Stop(context.Context) error {
	c.stopOnce.Do(func() {
		close(c.done)
	})

	return nil
}

func (c *coordinator) run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.refresh(ctx); err != nil {
				log.Printf("Error during %s poll: %v", c.name, err)
			}
		}
	}
}

// refresh runs one poll. On failure the previous result is retained and
// keeps being served; the error is recorded for dependents and returned.
func (c *coordinator) refresh(ctx context.Context) error {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()

	data, err := c.update(ctx)

	c.dataMu.Lock()
	c.lastErr = err

	if err == nil {
		c.data = data
		c.hasData = true
		c.updatedAt = time.Now()
	}
	c.dataMu.Unlock()

	c.notify()

	return err
}

// RequestRefresh triggers an out-of-schedule poll. Requests arriving inside
// the cooldown window are coalesced: the caller gets the outcome of the
// most recent poll instead of a new device exchange.
func (c *coordinator) RequestRefresh(ctx context.Context) error {
	if !c.limiter.Allow() {
		return c.LastError()
	}

	return c.refresh(ctx)
}

// Data returns the last successful result, if any.
func (c *coordinator) Data() (interface{}, bool) {
	c.dataMu.RLock()
	defer c.dataMu.RUnlock()

	return c.data, c.hasData
}

// LastError returns the error from the most recent poll, nil after a
// successful one.
func (c *coordinator) LastError() error {
	c.dataMu.RLock()
	defer c.dataMu.RUnlock()

	return c.lastErr
}

// Healthy reports whether the coordinator holds data and its most recent
// poll succeeded.
func (c *coordinator) Healthy() bool {
	c.dataMu.RLock()
	defer c.dataMu.RUnlock()

	return c.hasData && c.lastErr == nil
}

// LastUpdated returns the completion time of the last successful poll.
func (c *coordinator) LastUpdated() time.Time {
	c.dataMu.RLock()
	defer c.dataMu.RUnlock()

	return c.updatedAt
}

// AddListener registers fn to run after every completed poll, successful
// or not.
func (c *coordinator) AddListener(fn func()) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()

	c.listeners = append(c.listeners, fn)
}

func (c *coordinator) notify() {
	c.listenerMu.Lock()
	listeners := make([]func(), len(c.listeners))
	copy(listeners, c.listeners)
	c.listenerMu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
