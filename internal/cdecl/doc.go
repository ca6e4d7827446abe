// Package cdecl is the declaration tree handed to the resolver.
//
// The node shapes follow the C declarator grammar: a declaration wraps a
// chain of PtrDecl / ArrayDecl / FuncDecl modifiers that ends in a TypeDecl
// naming the declared identifier, whose payload is the type specifier
// (IdentifierType, Struct, Union or Enum).
package cdecl
