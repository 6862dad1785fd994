package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"59.90", 5990, false},
		{"1000", 100000, false},
		{"0.1", 10, false},
		{"0.10", 10, false},
		{"12.345", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "59.90", Format(5990))
	assert.Equal(t, "0.05", Format(5))
	assert.Equal(t, "1190.00", Format(119000))
}

func TestRoundMajor(t *testing.T) {
	assert.Equal(t, int64(60), RoundMajor(5950))
	assert.Equal(t, int64(59), RoundMajor(5949))
	assert.Equal(t, int64(1190), RoundMajor(119000))
}

// 0.1累加十次在浮点下不等于1，最小单位整数累加不会漂移
func TestNoFloatingDrift(t *testing.T) {
	unit, err := Parse("0.10")
	require.NoError(t, err)

	var sum int64
	for i := 0; i < 10; i++ {
		sum += unit
	}
	assert.Equal(t, "1.00", Format(sum))
}
