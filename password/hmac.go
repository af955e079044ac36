package password

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
)

// HMACScheme is legacy scheme 01: base64url(HMAC-SHA-512(pepper, content || salt)).
//
// It has no work factor. References it produced validate but always report
// SchemeStatusOutdated, and it is rejected as a default.
type HMACScheme struct {
	pepper []byte
}

// NewHMACScheme copies pepper.
func NewHMACScheme(pepper []byte) (*HMACScheme, error) {
	if len(pepper) < minPepperBytes {
		return nil, fmt.Errorf("%w: pepper must be >= %d bytes", ErrInvalidConfig, minPepperBytes)
	}
	return &HMACScheme{pepper: append([]byte(nil), pepper...)}, nil
}

func (h *HMACScheme) Tag() SchemeTag { return SchemeHMAC }

func (h *HMACScheme) sum(content *ContentToHash) []byte {
	mac := hmac.New(sha512.New, h.pepper)
	_, _ = mac.Write([]byte(content.Content))
	_, _ = mac.Write(content.Salt[:])
	return mac.Sum(nil)
}

func (h *HMACScheme) Hash(content *ContentToHash) (string, error) {
	if content == nil {
		return "", ErrHashFailed
	}
	return base64.RawURLEncoding.EncodeToString(h.sum(content)), nil
}

func (h *HMACScheme) Validate(content *ContentToHash, native string) error {
	if content == nil {
		return ErrCredentialMismatch
	}
	expected, err := base64.RawURLEncoding.DecodeString(native)
	if err != nil {
		return ErrCredentialMismatch
	}
	if !hmac.Equal(h.sum(content), expected) {
		return ErrCredentialMismatch
	}
	return nil
}
