// Package ir provides the in-memory intermediate representation of hardware
// module descriptions.
//
// This package contains entity definitions and small pure helpers only.
// All other internal packages import ir; ir imports nothing internal except
// document (for scalar operation results).
//
// Key design constraints:
//   - Every name-keyed collection of a module is an insertion-ordered slice;
//     declaration order is the container order used by encoders
//   - Config values, sizes and dimensions are expression text, never numbers
//   - Multi-valued connection collections are keyed by instance name
package ir
