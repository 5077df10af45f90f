package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	timestampParameter = "ik-t"
	signatureParameter = "ik-s"

	// NoExpiry is the timestamp signed into URLs that never expire.
	NoExpiry int64 = 9999999999
)

// SignURL appends delivery signature parameters to rawURL, which must have
// been built under urlEndpoint. With expireSeconds > 0 the URL stops working
// that many seconds after now and carries an ik-t parameter; otherwise the
// signature is permanent.
func SignURL(rawURL, urlEndpoint, privateKey string, expireSeconds int64, now time.Time) (string, error) {
	if rawURL == "" {
		return "", errors.New("auth: url is required")
	}
	if strings.TrimSpace(privateKey) == "" {
		return "", ErrMissingPrivateKey
	}
	endpoint := strings.TrimSpace(urlEndpoint)
	if endpoint == "" {
		return "", errors.New("auth: url endpoint is required")
	}
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	if !strings.HasPrefix(rawURL, endpoint) {
		return "", fmt.Errorf("auth: url %q is not under endpoint %q", rawURL, urlEndpoint)
	}

	expiry := NoExpiry
	if expireSeconds > 0 {
		expiry = now.Unix() + expireSeconds
	}
	expiryText := strconv.FormatInt(expiry, 10)
	signature := digest(privateKey, strings.TrimPrefix(rawURL, endpoint)+expiryText)

	base, fragment := rawURL, ""
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base, fragment = base[:i], base[i:]
	}
	separator := "?"
	if strings.Contains(base, "?") {
		separator = "&"
	}
	if expiry != NoExpiry {
		base += separator + timestampParameter + "=" + expiryText
		separator = "&"
	}
	return base + separator + signatureParameter + "=" + signature + fragment, nil
}
