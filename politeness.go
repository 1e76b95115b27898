// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// This file includes modifications to code originally developed by Adam Tauber,
// licensed under the Apache License, Version 2.0.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package crawler

import (
	"context"
	"math/rand"
	"regexp"
	"sync"
	"time"

	"github.com/gobwas/glob"
)

// LimitRule provides connection restrictions for domains.
// Both DomainRegexp and DomainGlob can be used to specify
// the included domains patterns, but at least one is required.
// There can be two kind of limitations:
//   - Parallelism: Set limit for the number of concurrent requests to matching domains
//   - Delay: Wait specified amount of time between requests to matching domains
type LimitRule struct {
	// DomainRegexp is a regular expression to match against domains
	DomainRegexp string
	// DomainGlob is a glob pattern to match against domains
	DomainGlob string
	// Delay is the duration to wait before creating a new request to the matching domains
	Delay time.Duration
	// RandomDelay is the extra randomized duration to wait added to Delay before creating a new request
	RandomDelay time.Duration
	// Parallelism is the number of the maximum allowed concurrent requests of the matching domains
	Parallelism    int
	waitChan       chan bool
	compiledRegexp *regexp.Regexp
	compiledGlob   glob.Glob
}

// Init initializes the private members of LimitRule
func (r *LimitRule) Init() error {
	waitChanSize := 1
	if r.Parallelism > 1 {
		waitChanSize = r.Parallelism
	}
	r.waitChan = make(chan bool, waitChanSize)
	hasPattern := false
	if r.DomainRegexp != "" {
		c, err := regexp.Compile(r.DomainRegexp)
		if err != nil {
			return err
		}
		r.compiledRegexp = c
		hasPattern = true
	}
	if r.DomainGlob != "" {
		c, err := glob.Compile(r.DomainGlob)
		if err != nil {
			return err
		}
		r.compiledGlob = c
		hasPattern = true
	}
	if !hasPattern {
		return ErrNoPattern
	}
	return nil
}

// Match checks that the domain parameter triggers the rule
func (r *LimitRule) Match(domain string) bool {
	match := false
	if r.compiledRegexp != nil && r.compiledRegexp.MatchString(domain) {
		match = true
	}
	if r.compiledGlob != nil && r.compiledGlob.Match(domain) {
		match = true
	}
	return match
}

// jitteredDelay returns the rule's delay with its random component
// drawn for this request.
func (r *LimitRule) jitteredDelay() time.Duration {
	delay := r.Delay
	if r.RandomDelay != 0 {
		delay += time.Duration(rand.Int63n(int64(r.RandomDelay)))
	}
	return delay
}

// acquire takes a parallelism token for the rule's domains.
func (r *LimitRule) acquire() {
	r.waitChan <- true
}

// release returns the token taken by acquire.
func (r *LimitRule) release() {
	<-r.waitChan
}

// PolitenessGate spaces out fetches per host across all workers. Each
// host carries a monotonic next-allowed time; a worker reserves the
// next slot and sleeps until it opens, so two workers leasing pages of
// the same site can never fetch closer together than the crawl delay.
type PolitenessGate struct {
	mu   sync.Mutex
	next map[string]time.Time
}

// NewPolitenessGate returns an empty gate.
func NewPolitenessGate() *PolitenessGate {
	return &PolitenessGate{next: make(map[string]time.Time)}
}

// reserve claims the next fetch slot for host and returns how long the
// caller must wait before using it. A non-positive delay asks for no
// spacing at all, so it neither waits nor claims a slot.
func (g *PolitenessGate) reserve(host string, delay time.Duration, now time.Time) time.Duration {
	if delay <= 0 {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	slot := now
	if next, ok := g.next[host]; ok && next.After(now) {
		slot = next
	}
	g.next[host] = slot.Add(delay)
	return slot.Sub(now)
}

// Wait blocks until the caller may fetch from host, keeping
// consecutive fetches to the host at least delay apart. Cancelling the
// context unblocks the wait; the claimed slot stays consumed.
func (g *PolitenessGate) Wait(ctx context.Context, host string, delay time.Duration) error {
	wait := g.reserve(host, delay, time.Now())
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
