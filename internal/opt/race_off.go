//go:build !race

package opt

// Race reports whether the binary was built with the race detector.
const Race = false
