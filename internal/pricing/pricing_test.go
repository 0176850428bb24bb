package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rate(v int64) *int64 { return &v }

var defaultPolicy = Policy{TravelerFeePercent: 10, CommissionPercent: 15, CommissionMin: 5}

func TestSessionPrice_BaseRate(t *testing.T) {
	card := RateCard{BaseRateHour: rate(25)}

	tests := []struct {
		name     string
		hours    int
		expected int64
	}{
		{name: "4h has no discount", hours: 4, expected: 100},
		{name: "6h is 5% off", hours: 6, expected: 143}, // 142.5 rounds up
		{name: "8h is 10% off", hours: 8, expected: 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SessionPrice(card, tt.hours)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSessionPrice_RejectsUnknownDuration(t *testing.T) {
	_, err := SessionPrice(RateCard{BaseRateHour: rate(30)}, 5)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestSessionPrice_FlatFallback(t *testing.T) {
	card := RateCard{Flat: map[int]int64{4: 120, 6: 170, 8: 0}}

	got, err := SessionPrice(card, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(170), got)

	_, err = SessionPrice(card, 8)
	assert.ErrorIs(t, err, ErrNoPrice)
}

func TestCalculate_FeeAndTotal(t *testing.T) {
	q, err := Calculate(RateCard{BaseRateHour: rate(33)}, []int{6}, defaultPolicy)
	require.NoError(t, err)

	// round(33*6*0.95) = round(188.1) = 188
	assert.Equal(t, int64(188), q.Subtotal)
	// round(18.8) = 19
	assert.Equal(t, int64(19), q.TravelerFee)
	assert.Equal(t, q.Subtotal+q.TravelerFee, q.Total)
	// round(28.2) = 28
	assert.Equal(t, int64(28), q.Commission)
	assert.Equal(t, int64(160), q.GuidePayout)
	assert.Equal(t, 15, q.CommissionPercent)
}

func TestCalculate_FlatPriceTimesSessionCount(t *testing.T) {
	card := RateCard{Flat: map[int]int64{4: 120}}

	q, err := Calculate(card, []int{4, 4, 4}, defaultPolicy)
	require.NoError(t, err)
	assert.Equal(t, int64(360), q.Subtotal)
	assert.Equal(t, int64(36), q.TravelerFee)
	assert.Equal(t, int64(396), q.Total)
}

func TestCalculate_CommissionMinimum(t *testing.T) {
	card := RateCard{Flat: map[int]int64{4: 20}}

	q, err := Calculate(card, []int{4}, Policy{TravelerFeePercent: 10, CommissionPercent: 15, CommissionMin: 5})
	require.NoError(t, err)
	// 15% of 20 is 3, raised to the minimum of 5
	assert.Equal(t, int64(5), q.Commission)
	assert.Equal(t, int64(15), q.GuidePayout)
}

func TestCalculate_CommissionNeverExceedsSubtotal(t *testing.T) {
	card := RateCard{Flat: map[int]int64{4: 3}}

	q, err := Calculate(card, []int{4}, Policy{CommissionMin: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), q.Commission)
	assert.Equal(t, int64(0), q.GuidePayout)
}

func TestCalculate_NoSessions(t *testing.T) {
	_, err := Calculate(RateCard{BaseRateHour: rate(10)}, nil, defaultPolicy)
	assert.ErrorIs(t, err, ErrNoSessions)
}

func TestCalculate_Properties(t *testing.T) {
	for r := int64(1); r <= 200; r += 7 {
		card := RateCard{BaseRateHour: rate(r)}

		p6, err := SessionPrice(card, 6)
		require.NoError(t, err)
		assert.Equal(t, (r*570+50)/100, p6, "rate %d", r)

		p8, err := SessionPrice(card, 8)
		require.NoError(t, err)
		assert.Equal(t, (r*720+50)/100, p8, "rate %d", r)

		q, err := Calculate(card, []int{8}, defaultPolicy)
		require.NoError(t, err)
		assert.Equal(t, q.Subtotal+percentOf(q.Subtotal, 10), q.Total)
	}
}
