// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer AggMeshLogger with contextual
// helpers (execution, plan, component) and domain specific logging helpers
// for units, phases and throttling decisions.
package logging
