package quote

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoins(t *testing.T) {
	cases := map[string]int64{
		"1000":       1000,
		" 1,234,567": 1234567,
		"1.5k":       1500,
		"2M":         2000000,
		"0.25b":      250000000,
		"0":          0,
	}
	for in, want := range cases {
		got, err := ParseCoins(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseCoinsInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "-5", "1.5", "k", "1.2345k", "10000000000b", "1e30", "9223372036854775808"} {
		_, err := ParseCoins(in)
		assert.Error(t, err, in)
	}
}

func TestParseCoinsRange(t *testing.T) {
	got, err := ParseCoins("9223372036854775807")
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)

	_, err = ParseCoins("10000000000b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
