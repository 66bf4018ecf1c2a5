package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Amount
	}{
		{"number", `12.5`, 12.5},
		{"numeric string", `"300"`, 300},
		{"null", `null`, 0},
		{"garbage", `"abc"`, 0},
		{"overflow", `1e400`, 0},
		{"negative overflow", `"-1e400"`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			require.NoError(t, json.Unmarshal([]byte(tt.in), &a))
			assert.Equal(t, tt.want, a)
		})
	}
}
