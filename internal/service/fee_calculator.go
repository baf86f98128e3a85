package service

import (
	"github.com/shopspring/decimal"

	"github.com/riteshkumar/scheduled-transfers/internal/models"
)

var (
	feeRate            = decimal.RequireFromString("0.01")
	weekendSurcharge   = decimal.NewFromInt(5)
	minimumFee         = decimal.NewFromInt(2)
	weekendAmountLimit = decimal.NewFromInt(1000)
)

// FeeCalculator prices a transfer. ok is false when no fee rule covers the
// amount and date, in which case the transfer must be rejected.
type FeeCalculator interface {
	CalculateFee(amount decimal.Decimal, date models.Date) (fee decimal.Decimal, ok bool)
}

type StandardFeeCalculator struct{}

func NewFeeCalculator() StandardFeeCalculator {
	return StandardFeeCalculator{}
}

// CalculateFee charges 1% of the amount plus a flat 5 on weekends, never
// less than 2. Weekend transfers above 1000 are not priced.
func (StandardFeeCalculator) CalculateFee(amount decimal.Decimal, date models.Date) (decimal.Decimal, bool) {
	weekend := date.IsWeekend()
	if weekend && amount.GreaterThan(weekendAmountLimit) {
		return decimal.Zero, false
	}

	fee := amount.Mul(feeRate)
	if weekend {
		fee = fee.Add(weekendSurcharge)
	}
	return decimal.Max(fee, minimumFee), true
}
