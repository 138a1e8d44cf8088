package observability

import (
	"strings"

	"go.uber.org/zap"
)

// minRevealLength is the shortest secret whose ends may be shown. Below it
// the prefix and suffix would be most of the key.
const minRevealLength = 16

// MaskSecret renders a credential for display: a short prefix, an ellipsis and
// the last four characters. Secrets shorter than minRevealLength are fully
// masked, without revealing their length.
func MaskSecret(secret string) string {
	secret = strings.TrimSpace(secret)
	switch {
	case secret == "":
		return "<unset>"
	case len(secret) < minRevealLength:
		return "********"
	}
	prefix := 3
	if idx := strings.IndexByte(secret, '-'); idx > 0 && idx < 6 {
		prefix = idx + 1
	}
	return secret[:prefix] + "…" + secret[len(secret)-4:]
}

// Secret is a zap field that never carries the raw credential.
func Secret(key, value string) zap.Field {
	return zap.String(key, MaskSecret(value))
}
