package password

import (
	"testing"

	"github.com/google/uuid"
)

var testPepper = []byte("test-pepper-0123456789abcdef")

const fixtureSalt = "f05e8961-d6ad-4086-9e78-a6de065e5453"

func fixtureContent(t *testing.T, content string) ContentToHash {
	t.Helper()
	salt, err := uuid.Parse(fixtureSalt)
	if err != nil {
		t.Fatalf("parse salt: %v", err)
	}
	return NewContentToHash(content, salt)
}

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(Config{
		DefaultScheme: SchemeArgon2,
		Pepper:        testPepper,
		Argon2:        DefaultArgon2Params(),
		Workers:       2,
		QueueSize:     8,
	})
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}
	t.Cleanup(h.Close)
	return h
}
