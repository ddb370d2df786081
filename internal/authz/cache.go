// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package authz

// # Scoped Identity Cache

// keyKind discriminates the three lookup families memoized per request.
type keyKind int

const (
	// kindPersonByIdentity caches person-id lookups keyed by external
	// identity (token subject plus optional invitation code).
	kindPersonByIdentity keyKind = iota

	// kindAccountByPerson caches user-account-id lookups keyed by person id.
	kindAccountByPerson

	// kindRolesByPerson caches role-set lookups keyed by person id.
	kindRolesByPerson
)

// cacheKey is the discriminated key type of the scoped cache. Storing native
// values under a typed key avoids any serialize/deserialize round trip.
type cacheKey struct {
	kind keyKind
	id   string
}

// Scope is a request-lifetime memoization store for identity and role lookups.
//
// # Contract
//
//   - A compute function runs at most once per distinct key within the scope.
//   - Legitimate "not found" results (empty person id, empty role set) are
//     cached too, so repeated misses do not hit the store again.
//   - Failures are propagated to the caller and never cached; the next call
//     with the same key retries the store.
//
// # Concurrency
//
// A Scope belongs to exactly one in-flight request and is torn down with it.
// It is not safe for concurrent use and must never be shared across requests.
type Scope struct {
	entries map[cacheKey]any
}

// NewScope creates an empty per-request [Scope].
func NewScope() *Scope {
	return &Scope{entries: make(map[cacheKey]any)}
}

// memoize returns the cached value for key, computing and storing it on the
// first call. Errors from compute are returned uncached.
func (scope *Scope) memoize(key cacheKey, compute func() (any, error)) (any, error) {
	if value, ok := scope.entries[key]; ok {
		return value, nil
	}

	value, err := compute()
	if err != nil {
		return nil, err
	}

	scope.entries[key] = value
	return value, nil
}
