// Package password turns a cleartext secret into a versioned, verifiable
// credential reference and checks candidates against it.
//
// # Output format
//
// References are stored as
//
//	#<scheme>#<native>
//
// where <scheme> is a two-digit [SchemeTag] and <native> is the scheme's own
// encoding. For the default Argon2id scheme the native part is a PHC string:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// The pepper is applied as HMAC-SHA-256(pepper, content) before Argon2id,
// not as the Argon2 secret parameter. References written by a system that
// used the native secret input share the PHC layout but never validate here.
//
// [Hasher.Validate] reports [SchemeStatusOutdated] when a reference was
// produced by a scheme other than the configured default, so the caller can
// re-hash after a successful login.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Salts are supplied by the
// caller; this package never generates or stores them.
//
// # What this package must NOT do
//
//   - Store or retrieve references.
//   - Log or print cleartext content, salts or the pepper.
//   - Reveal which check failed when a candidate is rejected.
package password
