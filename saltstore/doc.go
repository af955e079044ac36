// Package saltstore keeps one random token salt per identity in Redis.
//
// The salt is mixed into every token signature for its identity, so
// [Store.Rotate] invalidates all tokens previously issued to that identity
// without affecting any other identity or the signing key.
//
// # What this package must NOT do
//
//   - Store credentials, credential references or tokens.
//   - Log salt values.
package saltstore
