package payment

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/salonora_backend/internal/model"
)

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

// Calculator splits a booking's total into what is captured now, what is
// settled later with the provider, and the platform's cut of the captured part.
type Calculator interface {
	Compute(totalPrice int64, mode model.PaymentMode, commissionRate decimal.Decimal) (model.PaymentSplit, error)
	DepositRate() decimal.Decimal
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

var (
	zero = decimal.Zero
	one  = decimal.NewFromInt(1)
)

type splitCalculator struct {
	depositRate decimal.Decimal
}

func NewCalculator(depositRate decimal.Decimal) (Calculator, error) {
	if depositRate.LessThan(zero) || depositRate.GreaterThan(one) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDepositRate, depositRate)
	}
	return &splitCalculator{depositRate: depositRate}, nil
}

func (c *splitCalculator) DepositRate() decimal.Decimal {
	return c.depositRate
}

func (c *splitCalculator) Compute(totalPrice int64, mode model.PaymentMode, commissionRate decimal.Decimal) (model.PaymentSplit, error) {
	if totalPrice < 0 {
		return model.PaymentSplit{}, ErrInvalidAmount
	}
	if commissionRate.LessThan(zero) || commissionRate.GreaterThanOrEqual(one) {
		return model.PaymentSplit{}, fmt.Errorf("%w: %s", ErrInvalidCommission, commissionRate)
	}

	var amountNow int64
	switch mode {
	case model.PaymentFull:
		amountNow = totalPrice
	case model.PaymentDeposit:
		amountNow = roundHalfUp(decimal.NewFromInt(totalPrice).Mul(c.depositRate))
	default:
		return model.PaymentSplit{}, fmt.Errorf("%w: %q", ErrUnknownPaymentMode, mode)
	}

	split := model.PaymentSplit{
		AmountNow:      amountNow,
		AmountLater:    totalPrice - amountNow,
		CommissionRate: commissionRate,
	}
	split.Commission = roundHalfUp(decimal.NewFromInt(amountNow).Mul(commissionRate))
	split.ProviderPayout = amountNow - split.Commission

	if err := checkSplit(totalPrice, split); err != nil {
		return model.PaymentSplit{}, err
	}
	return split, nil
}

// roundHalfUp rounds a non-negative amount to whole minor units.
func roundHalfUp(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

func checkSplit(total int64, s model.PaymentSplit) error {
	switch {
	case s.AmountNow+s.AmountLater != total:
		return fmt.Errorf("%w: now %d + later %d != total %d", ErrRoundingInvariant, s.AmountNow, s.AmountLater, total)
	case s.Commission+s.ProviderPayout != s.AmountNow:
		return fmt.Errorf("%w: commission %d + payout %d != now %d", ErrRoundingInvariant, s.Commission, s.ProviderPayout, s.AmountNow)
	case s.AmountNow < 0 || s.AmountLater < 0 || s.Commission < 0 || s.ProviderPayout < 0:
		return fmt.Errorf("%w: negative component in %+v", ErrRoundingInvariant, s)
	}
	return nil
}
