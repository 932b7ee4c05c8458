// Package core provides the foundational domain types, interfaces and execution
// contexts used by AggMesh. It defines the core abstractions for:
//
//   - Units (aggregators, behaviors and commands, the executable work items)
//   - Execution plans (ordered phases grouped by execution strategy)
//   - ExecutionContext (per-run shared state, status and cancellation carrier)
//   - Execution and validation results
//   - Pluggable resource collaborators (monitor and optimizer)
//
// The package intentionally keeps implementation concerns (plan generation,
// phase execution, metric recording) out of scope, exposing small interfaces
// to enable custom backends and extensions. All exported identifiers include
// concise documentation to aid discoverability and external consumption.
package core
