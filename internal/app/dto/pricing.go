package dto

import (
	"venuecal/internal/domain/pricing"
	"venuecal/internal/domain/selection"
	"venuecal/internal/domain/shared/daterange"
)

type PriceQuote struct {
	VenueID          string  `json:"venue_id"`
	CheckIn          string  `json:"check_in,omitempty"`
	CheckOut         string  `json:"check_out,omitempty"`
	Currency         string  `json:"currency"`
	Nights           int     `json:"nights"`
	NightlyCents     int64   `json:"nightly_cents"`
	BaseCents        int64   `json:"base_cents"`
	CleaningFeeCents int64   `json:"cleaning_fee_cents"`
	TaxCents         int64   `json:"tax_cents"`
	TotalCents       int64   `json:"total_cents"`
	Total            float64 `json:"total"`
	Valid            bool    `json:"valid"`
}

func MapQuote(venueID string, s pricing.Summary, rng selection.Range) PriceQuote {
	q := PriceQuote{
		VenueID:          venueID,
		Currency:         s.Nightly.Currency,
		Nights:           s.Nights,
		NightlyCents:     s.Nightly.Amount,
		BaseCents:        s.Base.Amount,
		CleaningFeeCents: s.CleaningFee.Amount,
		TaxCents:         s.Tax.Amount,
		TotalCents:       s.Total.Amount,
		Total:            s.Total.Major(),
		Valid:            s.Valid,
	}
	if !rng.Start.IsZero() {
		q.CheckIn = rng.Start.Format(daterange.DateLayout)
	}
	if !rng.End.IsZero() {
		q.CheckOut = rng.End.Format(daterange.DateLayout)
	}
	return q
}
