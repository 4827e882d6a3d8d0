// Package cache provides precision-aware value caches for expensive
// numerical sub-results.
//
// Every entry remembers the binary precision it was computed at. A lookup
// that asks for more precision than an entry carries is a miss, so a value
// computed at 128 bits is never served to a caller working at 256 bits.
// Exact values (integers, rationals) are stored with precision [Exact].
//
// Two key layouts share one slot store:
//
//   - [Linear]: slot index = n
//   - [Triangle]: slot index = n(n+1)/2 + k, for 0 <= k <= n
//
// The backing slice grows on demand and keeps every stored entry. All
// methods are safe for concurrent use; reads share a read lock, stores and
// growth take the write lock.
package cache
