// Copyright 2025 Agentic World, LLC (Sherin Thomas)
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

import "errors"

var (
	// ErrMissingURL is the error thrown when a candidate URL is empty
	// or has no resolvable host
	ErrMissingURL = errors.New("missing URL")
	// ErrUnsupportedScheme is the error thrown when a candidate URL
	// uses a scheme other than http or https
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	// ErrFragmentOnly is the error thrown when a candidate URL is a
	// bare fragment or a lone slash and carries no target of its own
	ErrFragmentOnly = errors.New("fragment-only URL")
	// ErrMissingBase is the error thrown when a relative URL is
	// canonicalized without a base to resolve it against
	ErrMissingBase = errors.New("relative URL without a base")
	// ErrOutsideScope is the error thrown when a URL's host does not
	// fall under the allowed domain suffix
	ErrOutsideScope = errors.New("URL outside the allowed domain")
	// ErrDisallowedURL is the error thrown when a URL matches one of
	// the configured disallowed patterns
	ErrDisallowedURL = errors.New("URL matches a disallowed pattern")
	// ErrDisallowedByRobots is the error thrown when the site's robots
	// policy forbids fetching a URL
	ErrDisallowedByRobots = errors.New("URL disallowed by robots.txt")
	// ErrURLTooLong is the error thrown when a URL exceeds the
	// maximum length accepted by the frontier
	ErrURLTooLong = errors.New("URL too long")
	// ErrFrontierFull is the error thrown when the page table has
	// reached its configured row cap
	ErrFrontierFull = errors.New("frontier is full")
	// ErrPageNotLeased is the error thrown when a terminal update
	// targets a page that is not currently leased
	ErrPageNotLeased = errors.New("page is not leased")
	// ErrBinaryBudgetExhausted is the error thrown when storing a
	// binary payload would exceed the aggregate size cap
	ErrBinaryBudgetExhausted = errors.New("binary storage budget exhausted")
	// ErrNoPattern is the error thrown when a limit rule carries
	// neither a domain glob nor a domain regexp
	ErrNoPattern = errors.New("no pattern defined in limit rule")
)
