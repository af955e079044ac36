// Package jwt wraps golang-jwt for interoperable HS256 tokens signed with a
// per-identity key.
//
// # Two-phase verification
//
// The verification key depends on the identity, so decoding happens in two
// steps: [Manager.DecodeKeyID] reads the unauthenticated "kid" header to
// learn which identity's key to fetch, then [Manager.DecodeSubject] verifies
// signature and expiry with that key. [Manager.Resolve] runs both steps
// around a caller-supplied key lookup.
//
// The kid value is untrusted until DecodeSubject succeeds and must never be
// used for authorization.
//
// # What this package must NOT do
//
//   - Collapse expired, malformed and bad-signature failures into one error.
//   - Accept any algorithm other than HS256.
package jwt
