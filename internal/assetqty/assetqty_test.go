package assetqty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjust(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		change string
		buy    bool
		want   string
	}{
		{"buy grams", "10 Gram", "5", true, "15 Gram"},
		{"sell floors at zero", "15 Gram", "20", false, "0 Gram"},
		{"currency prefix keeps grouping", "$1000", "500", true, "$1,500"},
		{"thousands separators stripped", "$1,000", "1", false, "$999"},
		{"decimal result", "2.5 Adet", "0,25", true, "2.75 Adet"},
		{"decimal rounds to two places", "1 BTC", "0.333", true, "1.33 BTC"},
		{"decimal back to integer", "1.5 Gram", "0.5", true, "2 Gram"},
		{"change with unit text", "10 Gram", "5 gram", true, "15 Gram"},
		{"bare number", "7", "3", false, "4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Adjust(tt.amount, tt.change, tt.buy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdjust_Errors(t *testing.T) {
	_, err := Adjust("Gram", "5", true)
	assert.ErrorIs(t, err, ErrNoQuantity)

	_, err = Adjust("10 Gram", "abc", true)
	assert.ErrorIs(t, err, ErrInvalidChange)

	_, err = Adjust("10 Gram", "", true)
	assert.ErrorIs(t, err, ErrInvalidChange)
}

func TestParse(t *testing.T) {
	q, err := Parse("€2,500.75 nakit")
	require.NoError(t, err)
	assert.Equal(t, "€", q.Prefix)
	assert.Equal(t, " nakit", q.Suffix)
	assert.Equal(t, "2500.75", q.Value.String())
}

func TestValue(t *testing.T) {
	assert.Equal(t, "10", Value("10 Gram").String())
	assert.True(t, Value("none").IsZero())
}

func TestAdjust_LargeWholeQuantity(t *testing.T) {
	got, err := Adjust("9,223,372,036,854,775,807 adet", "10", true)
	require.NoError(t, err)
	assert.Equal(t, "9,223,372,036,854,775,817 adet", got)

	assert.Equal(t, "1,000,000", groupDigits("1000000"))
	assert.Equal(t, "999", groupDigits("999"))
}
