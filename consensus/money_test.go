package consensus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValuePoolAdd asserts the bounded addition over value pool totals,
// including that the two failure modes stay distinguishable.
func TestValuePoolAdd(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		total   int64
		amount  int64
		sum     int64
		wantErr error
	}{
		{
			name:   "zero plus zero",
			total:  0,
			amount: 0,
			sum:    0,
		},
		{
			name:   "full supply in one step",
			total:  0,
			amount: MaxMoney,
			sum:    MaxMoney,
		},
		{
			name:   "negative total recovers",
			total:  -MaxMoney,
			amount: MaxMoney,
			sum:    0,
		},
		{
			name:    "ceiling plus one",
			total:   MaxMoney,
			amount:  1,
			wantErr: ErrTotalOutOfRange,
		},
		{
			name:    "negative amount",
			total:   0,
			amount:  -1,
			wantErr: ErrAmountOutOfRange,
		},
		{
			name:    "amount above supply",
			total:   0,
			amount:  MaxMoney + 1,
			wantErr: ErrAmountOutOfRange,
		},
		{
			name:    "amount range checked before total",
			total:   MaxMoney,
			amount:  -1,
			wantErr: ErrAmountOutOfRange,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sum, err := ValuePoolAdd(tc.total, tc.amount)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.sum, sum)
		})
	}
}

// TestMoneyRange asserts the closed interval bounds.
func TestMoneyRange(t *testing.T) {
	t.Parallel()

	require.True(t, MoneyRange(0))
	require.True(t, MoneyRange(MaxMoney))
	require.True(t, MoneyRange(-MaxMoney))
	require.False(t, MoneyRange(MaxMoney+1))
	require.False(t, MoneyRange(-MaxMoney-1))
}
