// Package kernel contains shared value objects used across the domain model.
//
// The kernel provides:
//   - UUID: validated identifier for deliveries and actors
//   - Coordinates: WGS84 geographic position for location samples
//
// All kernel types are immutable value objects. Their zero values are invalid
// and fail Validate; instances must be created through the provided
// constructors so that invariants hold everywhere a value appears.
package kernel
