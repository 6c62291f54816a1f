// Package solana holds the shared chain plumbing used by every component:
// account fetch wrappers, ATA preparation, transaction send/confirm and the
// endpoint multiplexer.
package solana

// IsSimulate indicates whether simulation mode is enabled. When set,
// SendTransaction dry-runs the transaction instead of submitting it.
var IsSimulate bool
