// Package middleware adapts authcore token validation to net/http.
//
// # Guards
//
//   - [RequireJWT] verifies a standard token in two phases: kid, then the
//     per-identity key from the caller's lookup.
//   - [RequireToken] verifies a custom token against the per-identity salt
//     from the caller's lookup.
//
// Both read the Authorization: Bearer header and, on success, attach an
// [authcore.Identity] to the request context. Every failure answers 401 with
// the same body so clients cannot tell expired from forged.
//
// # What this package must NOT do
//
//   - Implement verification itself. All decisions come from the Engine.
//   - Write the failure cause into the response.
package middleware
