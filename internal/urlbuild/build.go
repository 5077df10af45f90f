package urlbuild

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"ikit/internal/transform"
)

// Position decides where the transformation string is placed in the URL.
type Position string

const (
	// PositionQuery appends the transformation as a "tr" query parameter.
	PositionQuery Position = "query"
	// PositionPath inserts a "tr:" path segment ahead of the asset path.
	PositionPath Position = "path"
)

const transformationParameter = "tr"

// ParsePosition maps a user-supplied name to a Position. Empty or unknown
// names fall back to PositionQuery.
func ParsePosition(value string) Position {
	if Position(strings.ToLower(strings.TrimSpace(value))) == PositionPath {
		return PositionPath
	}
	return PositionQuery
}

// QueryParam is an extra query parameter appended to the URL. Value is a
// string or a number.
type QueryParam struct {
	Key   string
	Value any
}

// SrcOptions describes the asset URL to build.
type SrcOptions struct {
	// Src is a path relative to URLEndpoint or an absolute http(s) URL.
	Src string
	// URLEndpoint is the delivery endpoint, including any path prefix.
	URLEndpoint            string
	Transformation         transform.Transformation
	QueryParameters        []QueryParam
	TransformationPosition Position
}

// Builder assembles delivery URLs. A Builder is immutable and safe for
// concurrent use.
type Builder struct {
	encoder *transform.Encoder
	logger  *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithEncoder overrides the transformation encoder.
func WithEncoder(encoder *transform.Encoder) Option {
	return func(b *Builder) {
		if encoder != nil {
			b.encoder = encoder
		}
	}
}

// WithLogger sets the logger used for diagnostics about rejected input.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder returns a Builder using the default encoder unless overridden.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{encoder: transform.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var defaultBuilder = NewBuilder()

// Build assembles a URL with the default builder.
func Build(opts SrcOptions) string {
	return defaultBuilder.Build(opts)
}

// Build returns the absolute URL for opts, or "" when Src is empty or the
// endpoint/src combination cannot be parsed.
func (b *Builder) Build(opts SrcOptions) string {
	if opts.Src == "" {
		return ""
	}
	position := opts.TransformationPosition
	if position == "" {
		position = PositionQuery
	}

	target, err := resolveTarget(opts.URLEndpoint, opts.Src)
	if err != nil {
		b.log().Warn("url build rejected input",
			slog.String("src", opts.Src),
			slog.String("url_endpoint", opts.URLEndpoint),
			slog.String("error", err.Error()),
		)
		return ""
	}

	for _, param := range opts.QueryParameters {
		value, ok := transform.FormatValue(param.Value)
		if !ok {
			continue
		}
		target.appendQuery(formEscape(param.Key) + "=" + formEscape(value))
	}

	encoded := b.encoder.Encode(opts.Transformation)
	inQuery := position != PositionPath || target.srcMode

	segments := []string{target.prefix}
	if encoded != "" && !inQuery {
		segments = append(segments, escapePath(transformationParameter+":"+encoded))
	}
	segments = append(segments, target.path)
	target.path = resolveDotSegments(joinPath(segments...))

	out := target.String()
	if encoded != "" && inQuery {
		out = target.withoutFragment()
		if target.query != "" {
			out += "&"
		} else {
			out += "?"
		}
		out += transformationParameter + "=" + encoded
		if target.fragment != "" {
			out += "#" + target.fragment
		}
	}
	return out
}

func (b *Builder) log() *slog.Logger {
	if b.logger != nil {
		return b.logger
	}
	return slog.Default()
}

// target holds escaped URL components while the URL is assembled.
type target struct {
	origin   string
	prefix   string
	path     string
	query    string
	fragment string
	srcMode  bool
}

func (t *target) appendQuery(pair string) {
	if t.query == "" {
		t.query = pair
		return
	}
	t.query += "&" + pair
}

func (t *target) withoutFragment() string {
	out := t.origin + t.path
	if t.query != "" {
		out += "?" + t.query
	}
	return out
}

func (t *target) String() string {
	out := t.withoutFragment()
	if t.fragment != "" {
		out += "#" + t.fragment
	}
	return out
}

func isAbsolute(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func resolveTarget(endpoint, src string) (*target, error) {
	if isAbsolute(src) {
		parsed, err := url.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse src: %w", err)
		}
		if parsed.Host == "" {
			return nil, errors.New("parse src: missing host")
		}
		return &target{
			origin:   originOf(parsed),
			path:     escapePath(parsed.EscapedPath()),
			query:    parsed.RawQuery,
			fragment: parsed.EscapedFragment(),
			srcMode:  true,
		}, nil
	}

	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse url endpoint: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("parse url endpoint: %q is not an absolute url", endpoint)
	}

	path, query, fragment := splitReference(src)
	return &target{
		origin:   originOf(base),
		prefix:   escapePath(base.EscapedPath()),
		path:     escapePath(path),
		query:    query,
		fragment: fragment,
	}, nil
}

func originOf(u *url.URL) string {
	origin := u.Scheme + "://"
	if u.User != nil {
		origin += u.User.String() + "@"
	}
	return origin + u.Host
}

// splitReference separates a relative reference into path, query and
// fragment without interpreting a leading "name:" as a scheme.
func splitReference(ref string) (path, query, fragment string) {
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		ref, fragment = ref[:i], ref[i+1:]
	}
	if i := strings.IndexByte(ref, '?'); i >= 0 {
		ref, query = ref[:i], ref[i+1:]
	}
	return ref, query, fragment
}

// joinPath joins path pieces with "/" and collapses repeated slashes. The
// result always starts with "/".
func joinPath(parts ...string) string {
	joined := "/" + strings.Join(parts, "/")
	var b strings.Builder
	b.Grow(len(joined))
	prevSlash := false
	for i := 0; i < len(joined); i++ {
		c := joined[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

// resolveDotSegments drops "." segments and lets ".." remove its parent,
// including their percent-encoded spellings. A trailing dot segment leaves
// a trailing slash.
func resolveDotSegments(p string) string {
	if !strings.Contains(p, ".") && !strings.Contains(p, "%") {
		return p
	}
	segments := strings.Split(strings.TrimPrefix(p, "/"), "/")
	out := make([]string, 0, len(segments))
	for i, segment := range segments {
		last := i == len(segments)-1
		switch strings.ToLower(segment) {
		case ".", "%2e":
		case "..", ".%2e", "%2e.", "%2e%2e":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, segment)
			continue
		}
		if last {
			out = append(out, "")
		}
	}
	return "/" + strings.Join(out, "/")
}

const upperhex = "0123456789ABCDEF"

// formEscape encodes a query key or value as
// application/x-www-form-urlencoded: spaces become "+" and only
// alphanumerics and "*-._" stay literal.
func formEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			b.WriteByte('+')
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '*', c == '-', c == '.', c == '_':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
		}
	}
	return b.String()
}

// escapePath percent-encodes bytes that may not appear literally in a URL
// path. Existing %XX sequences and sub-delimiters such as ":" "," "@" are
// left alone.
func escapePath(p string) string {
	var b strings.Builder
	b.Grow(len(p))
	for i := 0; i < len(p); i++ {
		c := p[i]
		if pathByteNeedsEscape(c) {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func pathByteNeedsEscape(c byte) bool {
	if c <= 0x20 || c >= 0x7f {
		return true
	}
	switch c {
	case '"', '#', '<', '>', '?', '`', '{', '}':
		return true
	}
	return false
}
