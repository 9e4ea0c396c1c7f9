package money

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
)

// Money is an amount in minor units of a three-letter ISO 4217 currency.
// Quotes assume two decimal places.
type Money struct {
	Amount   int64
	Currency string
}

// New upper-cases currency and rejects anything but three ASCII letters.
func New(amount int64, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	for i := 0; i < len(currency); i++ {
		if currency[i] < 'A' || currency[i] > 'Z' {
			return Money{}, ErrInvalidCurrency
		}
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// Must is New for constants; it panics on an invalid currency.
func Must(amount int64, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns an empty amount in the given currency.
func Zero(currency string) Money {
	return Money{Currency: strings.ToUpper(currency)}
}

// Add fails with ErrCurrencyMismatch when the currencies differ.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

func (m Money) Multiply(times int64) Money {
	return Money{Amount: m.Amount * times, Currency: m.Currency}
}

// ApplyRate scales the amount by rate, rounding half away from zero to the minor unit.
func (m Money) ApplyRate(rate float64) Money {
	return Money{Amount: int64(math.Round(float64(m.Amount) * rate)), Currency: m.Currency}
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}

// Major returns the amount in major units, e.g. 357.5 for 35750 cents.
func (m Money) Major() float64 {
	return float64(m.Amount) / 100
}

func (m Money) String() string {
	sign := ""
	amount := m.Amount
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, m.Currency)
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}
