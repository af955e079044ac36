package token

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

var b64u = base64.RawURLEncoding.Strict()

// Token is a parsed bearer token. Signature stays base64url encoded.
type Token struct {
	Identity  string
	Expiry    string
	Signature string
}

// Parse splits s into its three fields and decodes the first two.
func Parse(s string) (*Token, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidFormat
	}

	ident, ok := decodeField(parts[0])
	if !ok {
		return nil, ErrCannotDecodeIdent
	}
	exp, ok := decodeField(parts[1])
	if !ok {
		return nil, ErrCannotDecodeExp
	}

	return &Token{
		Identity:  ident,
		Expiry:    exp,
		Signature: parts[2],
	}, nil
}

// decodeField also rejects inputs that do not re-encode to themselves; the
// decoder skips '\r' and '\n' even in strict mode.
func decodeField(s string) (string, bool) {
	raw, err := b64u.DecodeString(s)
	if err != nil || !utf8.Valid(raw) || b64u.EncodeToString(raw) != s {
		return "", false
	}
	return string(raw), true
}

// String is the inverse of Parse.
func (t *Token) String() string {
	return signingInput(t.Identity, t.Expiry) + "." + t.Signature
}

func signingInput(ident, exp string) string {
	return b64u.EncodeToString([]byte(ident)) + "." + b64u.EncodeToString([]byte(exp))
}
