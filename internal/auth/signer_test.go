package auth

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignature(t *testing.T) {
	t.Parallel()

	got := Signature("private_key_test", "your_token", 1655379249)
	assert.Equal(t, "239f84d664cd64492ebf366e2c8a1cbe529dac74", got)
}

func TestSignerSign(t *testing.T) {
	t.Parallel()

	now := time.Unix(1655378000, 0)
	signer := Signer{
		PrivateKey: "private_key_test",
		TTL:        1249 * time.Second,
		Now:        func() time.Time { return now },
		NewToken:   func() string { return "your_token" },
	}

	params, err := signer.Sign()
	require.NoError(t, err)
	assert.Equal(t, Params{
		Token:     "your_token",
		Expire:    1655379249,
		Signature: "239f84d664cd64492ebf366e2c8a1cbe529dac74",
	}, params)
}

func TestSignerDefaultsToRandomToken(t *testing.T) {
	t.Parallel()

	signer := Signer{PrivateKey: "k", TTL: 30 * time.Minute}
	first, err := signer.Sign()
	require.NoError(t, err)
	second, err := signer.Sign()
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f-]{36}$`), first.Token)
	assert.NotEqual(t, first.Token, second.Token)
	assert.Greater(t, first.Expire, time.Now().Unix())
	assert.Len(t, first.Signature, 40)
}

func TestSignerRejectsBadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		signer Signer
		want   error
	}{
		{"missing key", Signer{TTL: time.Minute}, ErrMissingPrivateKey},
		{"zero ttl", Signer{PrivateKey: "k"}, ErrInvalidTTL},
		{"ttl too long", Signer{PrivateKey: "k", TTL: time.Hour}, ErrInvalidTTL},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.signer.Sign()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
