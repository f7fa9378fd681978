// Package resolve links the reference graph of a loaded shape table and
// computes effective trait sets. Resolution is iterative over the table, so
// cyclic shape graphs (self-referencing structures, mutually recursive
// definitions) resolve without unbounded recursion.
package resolve
