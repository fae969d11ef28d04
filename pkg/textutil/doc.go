// Package textutil shortens text for display without splitting a UTF-8
// sequence. Lengths are counted in characters (runes), not bytes.
package textutil
