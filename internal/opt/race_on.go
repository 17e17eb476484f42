//go:build race

package opt

// Race reports whether the binary was built with the race detector.
// Timing-sensitive checks widen their margins when it is set.
const Race = true
