package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		raw    string
		amount string
		unit   string
	}{
		{"59 euro", "59", "euro"},
		{"  1250.50 USD per container ", "1250.5", "USD per container"},
		{"80", "80", ""},
		{"75\teuro", "75", "euro"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			p, err := ParsePrice(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.amount, p.Amount.String())
			assert.Equal(t, tc.unit, p.Unit)
		})
	}
}

func TestParsePrice_Malformed(t *testing.T) {
	for _, raw := range []string{"", "   ", "euro 59", "59,90 euro", "0 euro", "-10 euro", "abc"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParsePrice(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedPrice))
		})
	}
}

func TestPrice_BidRoundTrip(t *testing.T) {
	p, err := ParsePrice("59.90 euro")
	require.NoError(t, err)

	back, err := FromBid(p.Bid())
	require.NoError(t, err)
	assert.True(t, p.Amount.Equal(back.Amount))
	assert.Equal(t, "euro", back.Unit)
	assert.Equal(t, "59.9 euro", back.String())

	_, err = FromBid(nil)
	assert.ErrorIs(t, err, ErrMalformedPrice)
}
