package logging

import (
	"log/slog"
)

// Attr aliases slog.Attr so callers can build fields from this package alone.
type Attr = slog.Attr

// Field keys for upload and delivery records.
const (
	FieldFileID = "file_id"
	FieldURL    = "url"
	FieldBytes  = "bytes"
)

func String(key string, value string) Attr { return slog.String(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

// FileID tags a record with the remote file identifier.
func FileID(id string) Attr { return slog.String(FieldFileID, id) }

// URL tags a record with a delivery URL.
func URL(u string) Attr { return slog.String(FieldURL, u) }

// Bytes tags a record with a byte count.
func Bytes(n int64) Attr { return slog.Int64(FieldBytes, n) }

// Error returns the standard error field. A nil error yields an empty attr,
// which handlers drop.
func Error(err error) Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func attrsToArgs(attrs []Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger creates a logger with a standardized component attribute.
// If logger is nil, a no-op logger is used as the base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}
