package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignURL(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	tests := []struct {
		name     string
		rawURL   string
		endpoint string
		expire   int64
		want     string
	}{
		{
			name:     "expiring url",
			rawURL:   "https://ik.example.com/e/tr:w-100/a.jpg?v=1",
			endpoint: "https://ik.example.com/e",
			expire:   300,
			want:     "https://ik.example.com/e/tr:w-100/a.jpg?v=1&ik-t=1700000300&ik-s=cf2778cd51c4e6f1226cbbb43bb6432a8664790d",
		},
		{
			name:     "permanent url",
			rawURL:   "https://ik.example.com/e/a.jpg",
			endpoint: "https://ik.example.com/e/",
			want:     "https://ik.example.com/e/a.jpg?ik-s=471a461e79f9a0bae7cc1c361e44fbd578d3debe",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := SignURL(tt.rawURL, tt.endpoint, "private_key_test", tt.expire, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSignURLKeepsFragmentLast(t *testing.T) {
	t.Parallel()

	got, err := SignURL("https://ik.example.com/e/a.jpg#x", "https://ik.example.com/e", "private_key_test", 0, time.Now())
	require.NoError(t, err)
	assert.Regexp(t, `^https://ik\.example\.com/e/a\.jpg\?ik-s=[0-9a-f]{40}#x$`, got)
}

func TestSignURLRejectsForeignURL(t *testing.T) {
	t.Parallel()

	_, err := SignURL("https://other.example.com/a.jpg", "https://ik.example.com/e", "k", 0, time.Now())
	require.Error(t, err)

	_, err = SignURL("https://ik.example.com/e/a.jpg", "https://ik.example.com/e", "", 0, time.Now())
	assert.ErrorIs(t, err, ErrMissingPrivateKey)

	_, err = SignURL("", "https://ik.example.com/e", "k", 0, time.Now())
	assert.Error(t, err)
}
