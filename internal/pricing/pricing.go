// Package pricing computes reservation quotes. All amounts are whole currency
// units; intermediate arithmetic uses decimal to avoid float drift.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDuration = errors.New("duration must be 4, 6 or 8 hours")
	ErrNoSessions      = errors.New("at least one session is required")
	ErrNoPrice         = errors.New("guide has no price for this duration")
)

// DurationFactors maps block length to its discount factor.
var DurationFactors = map[int]decimal.Decimal{
	4: decimal.NewFromInt(1),
	6: decimal.RequireFromString("0.95"),
	8: decimal.RequireFromString("0.90"),
}

// Policy is the fee and commission configuration applied to a quote.
type Policy struct {
	TravelerFeePercent int
	CommissionPercent  int
	CommissionMin      int64
}

// RateCard is the guide-side input. BaseRateHour takes precedence over the
// flat tier prices when set.
type RateCard struct {
	BaseRateHour *int64
	Flat         map[int]int64
}

type Quote struct {
	Subtotal          int64 `json:"subtotal"`
	TravelerFee       int64 `json:"traveler_fee"`
	Total             int64 `json:"total"`
	CommissionPercent int   `json:"commission_percent"`
	CommissionMin     int64 `json:"commission_min"`
	Commission        int64 `json:"commission"`
	GuidePayout       int64 `json:"guide_payout"`
}

// SessionPrice returns the price of one block.
func SessionPrice(card RateCard, hours int) (int64, error) {
	factor, ok := DurationFactors[hours]
	if !ok {
		return 0, ErrInvalidDuration
	}
	if card.BaseRateHour != nil {
		return round(decimal.NewFromInt(*card.BaseRateHour).Mul(decimal.NewFromInt(int64(hours))).Mul(factor)), nil
	}
	price := card.Flat[hours]
	if price <= 0 {
		return 0, ErrNoPrice
	}
	return price, nil
}

// Subtotal sums the per-session prices.
func Subtotal(card RateCard, durations []int) (int64, error) {
	if len(durations) == 0 {
		return 0, ErrNoSessions
	}
	var total int64
	for _, h := range durations {
		p, err := SessionPrice(card, h)
		if err != nil {
			return 0, err
		}
		total += p
	}
	return total, nil
}

// Calculate builds the full quote for the given session durations.
func Calculate(card RateCard, durations []int, policy Policy) (Quote, error) {
	subtotal, err := Subtotal(card, durations)
	if err != nil {
		return Quote{}, err
	}

	fee := percentOf(subtotal, policy.TravelerFeePercent)
	commission := percentOf(subtotal, policy.CommissionPercent)
	if commission < policy.CommissionMin {
		commission = policy.CommissionMin
	}
	if commission > subtotal {
		commission = subtotal
	}

	return Quote{
		Subtotal:          subtotal,
		TravelerFee:       fee,
		Total:             subtotal + fee,
		CommissionPercent: policy.CommissionPercent,
		CommissionMin:     policy.CommissionMin,
		Commission:        commission,
		GuidePayout:       subtotal - commission,
	}, nil
}

func percentOf(amount int64, percent int) int64 {
	return round(decimal.NewFromInt(amount).Mul(decimal.NewFromInt(int64(percent))).Div(decimal.NewFromInt(100)))
}

// round is half-up for the non-negative amounts handled here.
func round(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
