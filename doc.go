// Package authcore is a stateless authentication core: versioned credential
// hashing on a bounded worker pool, a compact HMAC-SHA-512 signed token with
// per-identity salts, and an HS256 JWT wrapper whose kid names the identity.
//
// An [Engine] is built once through [Builder.Build] and is safe for concurrent
// use. Its seven entry points are the whole public boundary:
//
//   - [Engine.Hash] and [Engine.Validate] produce and check "#<tag>#<native>"
//     credential references. Validate also reports whether the reference was
//     made with the current default scheme.
//   - [Engine.IssueToken] and [Engine.ValidateToken] handle the custom token
//     "b64u(identity).b64u(expiry).b64u(signature)".
//   - [Engine.EncodeStandardToken], [Engine.DecodeIdentityHeader] and
//     [Engine.DecodeSubject] handle standard tokens keyed per identity.
//
// # Errors
//
// Every error stays typed. [Kind] sorts it into format, crypto, lifecycle,
// scheduling or config so callers can tell an expired token from a forged
// one. [Public] collapses any of them to [ErrAuthenticationFailed] for end
// users.
//
// # What this package must NOT do
//
//   - Log or format cleartext content, salts, keys, tokens or references.
//   - Retry a failed hash or validation.
//   - Hold mutable state after Build, apart from metrics counters.
package authcore
