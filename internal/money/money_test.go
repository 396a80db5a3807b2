package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCents(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "R$ 0,00"},
		{5, "R$ 0,05"},
		{1234, "R$ 12,34"},
		{123456, "R$ 1.234,56"},
		{1_000_000, "R$ 10.000,00"},
		{123456789, "R$ 1.234.567,89"},
		{-50, "-R$ 0,50"},
		{-123456, "-R$ 1.234,56"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatCents(tc.cents))
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"R$ 12,34", 1234},
		{"12,34", 1234},
		{"R$ 1.234,56", 123456},
		{"1.234,56", 123456},
		{"1234", 123400},
		{"-R$ 0,50", -50},
		{"  R$ 0,05  ", 5},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseAmountRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "R$", "abc", "12,345", "0,001"} {
		_, err := ParseAmount(in)
		assert.Error(t, err, in)
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 1234, 999999, 1_000_000, 123456789, -1234} {
		got, err := ParseAmount(FormatCents(cents))
		require.NoError(t, err)
		assert.Equal(t, cents, got)
	}
}
