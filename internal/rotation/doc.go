// Package rotation decides which listings occupy the visible exposure slots.
//
// Small, high-value pools (premium and recommended panels) are split into
// slot-sized groups and one group is picked per request from a shared cache
// counter (Partitioner). Large pools (general and boosted feeds) are read from
// the head of an order-indexed queue and, at most once per visitor and
// cooldown window, the read batch is moved to the tail by a detached worker
// (Cursor). New entrants join at the tail (SlotAssigner) and a daily job
// renumbers every queue densely (Compactor).
//
// Cache failures never reach the caller, but the two read paths degrade in
// opposite directions: the Partitioner falls back to group 0 and stops
// rotating, the Cursor treats an unreachable cooldown store as permission to
// rotate. Both behaviours are relied upon and kept distinct.
package rotation
