package auth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxTTL is the longest signature lifetime the upload API accepts.
const MaxTTL = time.Hour

var (
	// ErrMissingPrivateKey is returned when signing without a private key.
	ErrMissingPrivateKey = errors.New("auth: private key is required")
	// ErrInvalidTTL is returned for lifetimes outside (0, MaxTTL).
	ErrInvalidTTL = errors.New("auth: ttl must be positive and shorter than one hour")
)

// Params are the authentication fields sent with an upload.
type Params struct {
	Token     string `json:"token"`
	Expire    int64  `json:"expire"`
	Signature string `json:"signature"`
}

// Signer issues upload authentication parameters.
type Signer struct {
	PrivateKey string
	TTL        time.Duration
	// Now and NewToken default to time.Now and a random UUID.
	Now      func() time.Time
	NewToken func() string
}

// Sign returns fresh upload parameters valid for the signer's TTL.
func (s Signer) Sign() (Params, error) {
	if strings.TrimSpace(s.PrivateKey) == "" {
		return Params{}, ErrMissingPrivateKey
	}
	if s.TTL <= 0 || s.TTL >= MaxTTL {
		return Params{}, fmt.Errorf("%w: got %s", ErrInvalidTTL, s.TTL)
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	token := uuid.NewString()
	if s.NewToken != nil {
		token = s.NewToken()
	}
	expire := now().Add(s.TTL).Unix()
	return Params{
		Token:     token,
		Expire:    expire,
		Signature: Signature(s.PrivateKey, token, expire),
	}, nil
}

// Signature returns hex(HMAC-SHA1(privateKey, token+expire)).
func Signature(privateKey, token string, expire int64) string {
	return digest(privateKey, token+strconv.FormatInt(expire, 10))
}

func digest(key, message string) string {
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}
