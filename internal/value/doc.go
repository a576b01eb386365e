// Package value provides the typed column values rowfilter evaluates.
//
// A run declares one Type per column position. Raw tab-separated fields are
// coerced into Values with Coerce, and only the fields an expression actually
// references are ever coerced. Value is a sealed interface: only String, Int,
// Float, Bool, Empty and List implement it, so evaluators can switch over the
// full set exhaustively.
//
// This package imports nothing internal; every other package builds on it.
package value
