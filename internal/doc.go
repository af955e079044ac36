// Package internal holds helpers that are private to authcore.
//
// # Sub-packages
//
//   - logging: slog construction from configuration
//   - workpool: bounded, non-blocking worker pool for credential hashing
//
// # What this package must NOT do
//
//   - Export types that appear in the public authcore API.
//   - Be imported by any package outside the authcore module.
package internal
