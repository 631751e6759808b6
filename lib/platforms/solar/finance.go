package solar

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SavingsEstimate is the money math a rep quotes from: yearly savings
// at the utility rate and simple payback on the installed cost.
type SavingsEstimate struct {
	YearlySavings decimal.Decimal
	PaybackYears  decimal.Decimal
}

// EstimateSavings converts a yearly kWh production figure into dollar
// savings. Rates and costs are decimals, float money math drifts.
func EstimateSavings(yearlyEnergyKwh float64, ratePerKwh, installedCost decimal.Decimal) (SavingsEstimate, error) {
	if ratePerKwh.Sign() <= 0 {
		return SavingsEstimate{}, fmt.Errorf("utility rate must be positive")
	}

	production := decimal.NewFromFloat(yearlyEnergyKwh)
	if production.Sign() < 0 {
		return SavingsEstimate{}, fmt.Errorf("yearly production cannot be negative")
	}

	yearly := production.Mul(ratePerKwh).Round(2)

	out := SavingsEstimate{YearlySavings: yearly}
	if yearly.Sign() > 0 && installedCost.Sign() > 0 {
		out.PaybackYears = installedCost.Div(yearly).Round(1)
	}
	return out, nil
}
