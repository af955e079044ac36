package password

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

const redacted = "ContentToHash{REDACTED}"

// ContentToHash is a cleartext secret together with its per-credential salt.
//
// Every printing path (fmt verbs, slog) renders a redacted placeholder.
type ContentToHash struct {
	Content string
	Salt    uuid.UUID
}

// NewContentToHash pairs content with salt.
func NewContentToHash(content string, salt uuid.UUID) ContentToHash {
	return ContentToHash{Content: content, Salt: salt}
}

func (ContentToHash) String() string { return redacted }

func (ContentToHash) GoString() string { return redacted }

// Format implements fmt.Formatter so %v, %+v, %#v and %s all redact.
func (ContentToHash) Format(f fmt.State, _ rune) {
	_, _ = f.Write([]byte(redacted))
}

// LogValue implements slog.LogValuer.
func (ContentToHash) LogValue() slog.Value {
	return slog.StringValue(redacted)
}
