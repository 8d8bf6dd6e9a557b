// Package codec converts hardware IR entities to and from documents.
//
// Leaf entities (bundles, pipes, instances, port signatures, storages and
// operation packages) have exact encode/decode pairs. Modules are
// encode-only: ModuleEncoder flattens a module's interface and topology into
// one document and expands each instantiated submodule's interface exactly
// one level deep.
//
// Decode failures are typed: *ParseError for malformed text and *FieldError
// for missing or mistyped fields. Soft conditions (empty port args, blank
// code lines, unknown submodules, unresolvable ordering) never surface as
// errors; they only shape the output.
package codec
