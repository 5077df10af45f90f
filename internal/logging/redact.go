package logging

import (
	"log/slog"
	"strings"
)

const redactedValue = "[redacted]"

// sensitiveKeys are attribute keys whose values never reach log output.
// Upload signatures and tokens are single-use but still grant an upload
// until they expire.
var sensitiveKeys = map[string]struct{}{
	"private_key": {},
	"privatekey":  {},
	"signature":   {},
	"token":       {},
	"ik-s":        {},
}

func isSensitive(key string) bool {
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		key = key[i+1:]
	}
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

func redact(key string, value slog.Value) slog.Value {
	if isSensitive(key) {
		return slog.StringValue(redactedValue)
	}
	return value
}
