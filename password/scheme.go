package password

import (
	"fmt"
)

// SchemeTag identifies one hashing algorithm version.
type SchemeTag string

const (
	// SchemeHMAC is the legacy HMAC-SHA-512 scheme. It is kept so existing
	// references keep validating; it is never a valid default.
	SchemeHMAC SchemeTag = "01"
	// SchemeArgon2 is the peppered Argon2id scheme.
	SchemeArgon2 SchemeTag = "02"

	// DefaultScheme is used when no default is configured.
	DefaultScheme = SchemeArgon2
)

// SchemeStatus tells whether a validated reference used the default scheme.
type SchemeStatus uint8

const (
	// SchemeStatusOk means the reference was produced by the default scheme.
	SchemeStatusOk SchemeStatus = iota
	// SchemeStatusOutdated means the reference should be re-hashed.
	SchemeStatusOutdated
)

func (s SchemeStatus) String() string {
	switch s {
	case SchemeStatusOk:
		return "ok"
	case SchemeStatusOutdated:
		return "outdated"
	default:
		return "unknown"
	}
}

// NeedsRehash reports whether a successfully validated credential should be
// hashed again with the default scheme.
func NeedsRehash(status SchemeStatus) bool {
	return status == SchemeStatusOutdated
}

// Scheme hashes and validates content for one algorithm version.
//
// Hash must be deterministic for a given content, salt, pepper and parameter
// set. Validate returns nil on match and ErrCredentialMismatch otherwise.
type Scheme interface {
	Tag() SchemeTag
	Hash(content *ContentToHash) (string, error)
	Validate(content *ContentToHash, native string) error
}

// SchemeConfig carries what the schemes need: the server-wide pepper and
// the Argon2id cost parameters.
type SchemeConfig struct {
	Pepper []byte
	Argon2 Argon2Params
}

// Registry maps tags to the closed set of schemes. Adding an algorithm means
// adding one SchemeTag, one Scheme type and one case in Get.
type Registry struct {
	hmac   *HMACScheme
	argon2 *Argon2Scheme
}

// NewRegistry builds every scheme once from cfg.
func NewRegistry(cfg SchemeConfig) (*Registry, error) {
	hmacScheme, err := NewHMACScheme(cfg.Pepper)
	if err != nil {
		return nil, err
	}
	argonScheme, err := NewArgon2Scheme(cfg.Pepper, cfg.Argon2)
	if err != nil {
		return nil, err
	}

	return &Registry{hmac: hmacScheme, argon2: argonScheme}, nil
}

// Get returns the scheme for tag or ErrUnknownScheme.
func (r *Registry) Get(tag SchemeTag) (Scheme, error) {
	switch tag {
	case SchemeHMAC:
		return r.hmac, nil
	case SchemeArgon2:
		return r.argon2, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, string(tag))
	}
}

// Tags lists every registered tag, oldest first.
func Tags() []SchemeTag {
	return []SchemeTag{SchemeHMAC, SchemeArgon2}
}

// ParseSchemeTag validates s against the registry.
func ParseSchemeTag(s string) (SchemeTag, error) {
	for _, tag := range Tags() {
		if string(tag) == s {
			return tag, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScheme, s)
}

// Deprecated reports whether tag may be validated but must not be the default.
func (t SchemeTag) Deprecated() bool {
	return t == SchemeHMAC
}
