package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ExtractionKey addresses a cached language-model reply for one description.
// The model name and instruction are part of the hash, so changing either one
// stops old replies from being served.
func ExtractionKey(provider, model, prompt, description string) string {
	h := sha256.New()
	for _, part := range []string{model, prompt, description} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("extract:%s:%s", provider, hex.EncodeToString(h.Sum(nil)))
}

func RateLimitKey(subject string) string {
	return fmt.Sprintf("ratelimit:%s", subject)
}
