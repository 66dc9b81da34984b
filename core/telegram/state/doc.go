// Package state keeps short-lived per-user values (pending inputs, staged uploads)
// behind a small keyed Store so handlers never share global maps.
//
// Two backends exist: a bounded in-process LRU with TTL eviction and Redis.
package state
