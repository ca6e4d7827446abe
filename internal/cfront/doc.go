// Package cfront turns C source into the cdecl forest using the tree-sitter
// C grammar.
//
// Only file-scope declarations are converted: typedefs, prototypes,
// variables and bare struct/union/enum definitions. Function bodies, field
// lists and preprocessor lines are skipped. Regions the grammar could not
// parse are reported and the surrounding declarations still convert.
package cfront
