package metrics

import "strings"

var friendlyAliases = map[string]string{
	"url.Error":                     "Request URL error",
	"net.OpError":                   "Connection error",
	"net.DNSError":                  "DNS lookup failure",
	"http.httpError":                "Client timeout",
	"context.deadlineExceededError": "Context deadline exceeded",
}

// FriendlyErrorName turns a Go error type name into a label fit for the
// status report. Unknown types fall back to the bare type name with the
// pointer marker and package path stripped.
func FriendlyErrorName(typeName string) string {
	cleaned := strings.TrimPrefix(strings.TrimSpace(typeName), "*")
	if cleaned == "" {
		return "Unknown error"
	}
	if idx := strings.LastIndex(cleaned, "/"); idx != -1 {
		cleaned = cleaned[idx+1:]
	}
	if alias, ok := friendlyAliases[cleaned]; ok {
		return alias
	}
	return cleaned
}
