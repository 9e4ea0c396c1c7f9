package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"venuecal/internal/domain/shared/money"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestSummarize(t *testing.T) {
	terms := DefaultTerms("USD")

	tests := []struct {
		name    string
		nightly int64
		start   time.Time
		end     time.Time
		want    Summary
	}{
		{
			name:    "three nights at 100",
			nightly: 10000,
			start:   day(2024, 4, 1),
			end:     day(2024, 4, 4),
			want: Summary{
				Nights:      3,
				Nightly:     money.Must(10000, "USD"),
				Base:        money.Must(30000, "USD"),
				CleaningFee: money.Must(2500, "USD"),
				Tax:         money.Must(3250, "USD"),
				Total:       money.Must(35750, "USD"),
				Valid:       true,
			},
		},
		{
			name:    "six nights up to the checkout day of a booking",
			nightly: 10000,
			start:   day(2024, 3, 9),
			end:     day(2024, 3, 15),
			want: Summary{
				Nights:      6,
				Nightly:     money.Must(10000, "USD"),
				Base:        money.Must(60000, "USD"),
				CleaningFee: money.Must(2500, "USD"),
				Tax:         money.Must(6250, "USD"),
				Total:       money.Must(68750, "USD"),
				Valid:       true,
			},
		},
		{
			name:    "tax rounds to the cent",
			nightly: 3333,
			start:   day(2024, 4, 1),
			end:     day(2024, 4, 2),
			want: Summary{
				Nights:      1,
				Nightly:     money.Must(3333, "USD"),
				Base:        money.Must(3333, "USD"),
				CleaningFee: money.Must(2500, "USD"),
				Tax:         money.Must(583, "USD"),
				Total:       money.Must(6416, "USD"),
				Valid:       true,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(money.Must(tt.nightly, "USD"), tt.start, tt.end, terms)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSummarizeWithoutNights(t *testing.T) {
	nightly := money.Must(10000, "EUR")
	zero := money.Zero("EUR")

	cases := map[string][2]time.Time{
		"same day":      {day(2024, 4, 1), day(2024, 4, 1)},
		"inverted":      {day(2024, 4, 5), day(2024, 4, 1)},
		"missing end":   {day(2024, 4, 1), {}},
		"missing start": {{}, day(2024, 4, 1)},
	}
	for name, rng := range cases {
		t.Run(name, func(t *testing.T) {
			got := Summarize(nightly, rng[0], rng[1], DefaultTerms("EUR"))
			assert.False(t, got.Valid)
			assert.Equal(t, 0, got.Nights)
			assert.Equal(t, zero, got.Base)
			assert.Equal(t, zero, got.Tax)
			assert.Equal(t, zero, got.Total)
		})
	}
}

func TestSummaryInMajorUnits(t *testing.T) {
	got := Summarize(money.Must(10000, "USD"), day(2024, 4, 1), day(2024, 4, 4), DefaultTerms("USD"))
	assert.InDelta(t, 300.0, got.Base.Major(), 1e-9)
	assert.InDelta(t, 25.0, got.CleaningFee.Major(), 1e-9)
	assert.InDelta(t, 32.5, got.Tax.Major(), 1e-9)
	assert.InDelta(t, 357.5, got.Total.Major(), 1e-9)
}
