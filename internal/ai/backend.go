package ai

import (
	"context"
	"strings"
)

// CompletionBackend is one text-completion provider. Implementations wrap a
// single remote API; failover between providers lives in Failover, not here.
type CompletionBackend interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	Name() string
}

// VisionBackend extracts readable text from an image. An empty string with a
// nil error means the image had no extractable text.
type VisionBackend interface {
	ExtractText(ctx context.Context, image []byte, contentType string) (string, error)
}

// Substrings that mark an error as a quota or rate-limit failure. Matched
// case-insensitively against the full error text.
var quotaErrorMarkers = []string{
	"insufficient_quota",
	"exceeded your current quota",
	"rate limit",
	"429",
	"too many requests",
}

// IsQuotaError reports whether err looks like a quota or rate-limit failure,
// the only class of error that triggers fallback to the secondary backend.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range quotaErrorMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
