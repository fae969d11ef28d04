package textutil

import "unicode/utf8"

// Ellipsis marks text that was cut.
const Ellipsis = "..."

// Head returns the first n characters of s.
func Head(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for count := 0; i < len(s) && count < n; count++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i]
}

// Truncate returns the first n characters of s, followed by Ellipsis when
// anything was dropped.
func Truncate(s string, n int) string {
	head := Head(s, n)
	if len(head) == len(s) {
		return s
	}
	return head + Ellipsis
}

// Fit shortens s to at most width characters, Ellipsis included.
func Fit(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	if width <= len(Ellipsis) {
		return Head(s, width)
	}
	return Head(s, width-len(Ellipsis)) + Ellipsis
}
