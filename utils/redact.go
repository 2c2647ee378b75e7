package utils

import (
	"net/http"
	"strings"
)

// SensitiveHeaders are bearer secrets that must never reach logs.
var SensitiveHeaders = []string{
	"Authorization",
	"Cookie",
	"X-Instance-Token",
	"X-Api-Key",
	"X-Inngest-Secret",
}

const redacted = "[REDACTED]"

// RedactHeaders returns a flat copy of h with sensitive values replaced.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = strings.Join(v, ",")
	}
	for _, name := range SensitiveHeaders {
		key := http.CanonicalHeaderKey(name)
		if _, ok := out[key]; ok {
			out[key] = redacted
		}
	}
	return out
}
