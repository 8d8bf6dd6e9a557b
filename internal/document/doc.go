// Package document provides the dynamic document model used as the
// interchange form of the hardware IR.
//
// Documents are trees of sealed Value types. All codec packages build and
// read Values; text formats are applied only at the boundary. This keeps
// field presence checks independent of the wire format.
//
// Key design constraints:
//   - Non-integer numbers parse to Number; IR readers reject them per field,
//     and canonical JSON rejects them outright
//   - Object keys are always emitted in RFC 8785 order (deterministic output)
//   - JSON null parses to Null and is treated as an absent field by readers
//   - Parse accepts JSONC (comments, trailing commas) for hand-written input
package document
