// Package ctype holds the canonical description of C types used by the
// generator, and the static table that maps scalar spellings to FFI
// primitive tags.
package ctype
