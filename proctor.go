// Package proctor holds shared metadata for the proctor harness.
package proctor

// Version is the current proctor release.
const Version = "0.3.0"
