package pricing

import (
	"time"

	"venuecal/internal/domain/shared/daterange"
	"venuecal/internal/domain/shared/money"
)

const (
	// DefaultCleaningFeeCents is the flat fee added to every stay.
	DefaultCleaningFeeCents int64 = 2500
	// DefaultTaxRate is applied to the base amount plus the cleaning fee.
	DefaultTaxRate = 0.10
)

// Terms are the fee and tax parameters of a quote.
type Terms struct {
	CleaningFee money.Money
	TaxRate     float64
}

// DefaultTerms returns the standard cleaning fee and tax rate in currency.
func DefaultTerms(currency string) Terms {
	return Terms{
		CleaningFee: money.Money{Amount: DefaultCleaningFeeCents, Currency: currency},
		TaxRate:     DefaultTaxRate,
	}
}

// Summary is the cost breakdown of a stay. Valid is false when the range holds
// no nights, in which case every amount is zero.
type Summary struct {
	Nights      int
	Nightly     money.Money
	Base        money.Money
	CleaningFee money.Money
	Tax         money.Money
	Total       money.Money
	Valid       bool
}

// Summarize derives the breakdown for a stay from start to end at the nightly rate.
func Summarize(nightly money.Money, start, end time.Time, terms Terms) Summary {
	zero := money.Zero(nightly.Currency)
	summary := Summary{Nightly: nightly, Base: zero, CleaningFee: zero, Tax: zero, Total: zero}
	if start.IsZero() || end.IsZero() {
		return summary
	}
	nights := daterange.DaysDiff(start, end)
	if nights <= 0 {
		return summary
	}

	fee := terms.CleaningFee
	fee.Currency = nightly.Currency
	base := nightly.Multiply(int64(nights))
	taxable := money.Money{Amount: base.Amount + fee.Amount, Currency: nightly.Currency}
	tax := taxable.ApplyRate(terms.TaxRate)

	return Summary{
		Nights:      nights,
		Nightly:     nightly,
		Base:        base,
		CleaningFee: fee,
		Tax:         tax,
		Total:       money.Money{Amount: taxable.Amount + tax.Amount, Currency: nightly.Currency},
		Valid:       true,
	}
}
