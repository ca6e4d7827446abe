// Package resolve maps declaration trees to canonical types and fills the
// registry.
//
// Declarations are resolved in source order. A name must be declared before
// it is used, except struct and union tags, which a reference implicitly
// declares as incomplete. Untagged aggregates are named after their typedef
// or declaration, or get a generated anon<N>_<kind> name from a per-layer
// counter.
package resolve
