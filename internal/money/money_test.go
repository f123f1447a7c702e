package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFromDecimal(t *testing.T) {
	amount, err := FromDecimal(decimal.RequireFromString("1250.50"))
	require.NoError(t, err)
	require.Equal(t, Amount(125050), amount)

	amount, err = FromDecimal(decimal.RequireFromString("150"))
	require.NoError(t, err)
	require.Equal(t, Amount(15000), amount)

	amount, err = FromDecimal(decimal.RequireFromString("0.01"))
	require.NoError(t, err)
	require.Equal(t, Amount(1), amount)

	_, err = FromDecimal(decimal.RequireFromString("10.999"))
	require.ErrorIs(t, err, ErrTooManyDecimalPlaces)
}

func TestAmountString(t *testing.T) {
	require.Equal(t, "1250.50", Amount(125050).String())
	require.Equal(t, "0.05", Amount(5).String())
	require.Equal(t, "0.00", Amount(0).String())
	require.Equal(t, "-150.00", Amount(-15000).String())
}

func TestAmountRoundTrip(t *testing.T) {
	// a value that famously misbehaves as a float
	amount, err := FromDecimal(decimal.RequireFromString("0.10"))
	require.NoError(t, err)

	sum := Amount(0)
	for i := 0; i < 1000; i++ {
		sum += amount
	}
	require.Equal(t, Amount(10000), sum)
	require.Equal(t, "100.00", sum.String())
}

func TestAmountPositive(t *testing.T) {
	require.True(t, Amount(1).Positive())
	require.False(t, Amount(0).Positive())
	require.False(t, Amount(-1).Positive())
}
