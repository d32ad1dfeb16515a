// Package delivery contains the Delivery aggregate and its status state
// machine, the heart of the lifecycle core.
//
// The aggregate enforces every lifecycle invariant locally:
//   - legal status transitions, per current status and acting role
//   - monotonic progression along pending -> accepted -> picked_up -> delivered
//     with cancellation as the only sideways exit
//   - picker binding: fixed at acceptance, immutable afterwards
//   - sender-only metadata edits, and only while pending
//
// Nothing outside this package mutates a delivery's status field; the
// application layer loads the aggregate, calls RequestTransition, and persists
// the result. Duplicate submissions of an already-applied transition are
// no-ops by design, which protects against double-tapped UI buttons.
package delivery
