package authcore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/MrEthical07/authcore/jwt"
	"github.com/MrEthical07/authcore/password"
	"github.com/MrEthical07/authcore/token"
)

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorKind
	}{
		{nil, KindUnknown},
		{errors.New("something else"), KindUnknown},
		{password.ErrMalformedReference, KindFormat},
		{token.ErrInvalidFormat, KindFormat},
		{token.ErrCannotDecodeIdent, KindFormat},
		{token.ErrCannotDecodeExp, KindFormat},
		{token.ErrExpNotISO, KindFormat},
		{jwt.ErrNoKeyIdentifier, KindFormat},
		{jwt.ErrMalformed, KindFormat},
		{password.ErrCredentialMismatch, KindCrypto},
		{password.ErrHashFailed, KindCrypto},
		{token.ErrHMACNewFromKey, KindCrypto},
		{token.ErrSignatureNotMatching, KindCrypto},
		{jwt.ErrSignatureInvalid, KindCrypto},
		{token.ErrExpired, KindLifecycle},
		{jwt.ErrExpired, KindLifecycle},
		{password.ErrSchedulingUnavailable, KindScheduling},
		{context.DeadlineExceeded, KindScheduling},
		{password.ErrUnknownScheme, KindConfig},
		{token.ErrInvalidDuration, KindConfig},
		{jwt.ErrInvalidConfig, KindConfig},
		{ErrConfig, KindConfig},
		{fmt.Errorf("wrapped: %w", token.ErrExpired), KindLifecycle},
	}

	for _, tc := range cases {
		if got := Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestExpiredAlwaysDiffersFromSignature(t *testing.T) {
	if Kind(token.ErrExpired) == Kind(token.ErrSignatureNotMatching) {
		t.Fatal("expired and signature mismatch must classify differently")
	}
	if Kind(jwt.ErrExpired) == Kind(jwt.ErrSignatureInvalid) {
		t.Fatal("expired and invalid signature must classify differently")
	}
}

func TestPublic(t *testing.T) {
	if Public(nil) != nil {
		t.Fatal("Public(nil) must be nil")
	}
	for _, err := range []error{token.ErrExpired, jwt.ErrSignatureInvalid, password.ErrSchedulingUnavailable} {
		got := Public(err)
		if !errors.Is(got, ErrAuthenticationFailed) {
			t.Fatalf("Public(%v) = %v", err, got)
		}
		if errors.Is(got, err) {
			t.Fatalf("Public(%v) must not expose the cause", err)
		}
	}
}
