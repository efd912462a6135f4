// Package hostname parses and validates domain names for emailaddr.
// It splits an optional protocol prefix and port suffix, checks label
// syntax (IDNA2008 for internationalized labels) and resolves the
// top-level domain against the public suffix list.
//
// The root emailaddr package only depends on the Parse method, so any
// type with the same shape can replace this parser.
package hostname
