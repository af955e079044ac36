// Package token issues and validates compact HMAC-SHA-512 bearer tokens bound
// to a per-identity salt.
//
// # Token format
//
//	<base64url(identity)>.<base64url(expiry RFC 3339)>.<base64url(signature)>
//
// The signature is HMAC-SHA-512 keyed by the process-wide signing key over
// the first two encoded fields joined by "." followed by the 16 salt bytes.
// Rotating an identity's salt invalidates every token issued for it without
// touching the signing key.
//
// # Architecture boundaries
//
// This package is pure: no I/O, no shared mutable state. Salts are fetched
// by the caller.
//
// # What this package must NOT do
//
//   - Check expiry before the signature.
//   - Compare signatures in variable time.
package token
