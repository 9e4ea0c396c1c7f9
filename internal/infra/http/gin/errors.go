package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	availabilityapp "venuecal/internal/app/handlers/availability"
	pricingapp "venuecal/internal/app/handlers/pricing"
	"venuecal/internal/app/handlers/support"
	"venuecal/internal/app/middleware"
	"venuecal/internal/app/validation"
	"venuecal/internal/domain/availability"
	"venuecal/internal/domain/shared/daterange"
	"venuecal/internal/domain/shared/money"
)

// statusFor maps errors to HTTP codes. Replayed failures unwrap to their
// original sentinel and land in the same case as the first attempt.
func statusFor(err error) int {
	var replayed middleware.ReplayedError
	switch {
	case errors.Is(err, validation.ErrInvalid),
		errors.Is(err, daterange.ErrInvalidDate),
		errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, availability.ErrInvalidBooking),
		errors.Is(err, availability.ErrBookingIDRequired),
		errors.Is(err, availability.ErrUnknownWeekday),
		errors.Is(err, money.ErrInvalidCurrency),
		errors.Is(err, pricingapp.ErrRangeRequired):
		return http.StatusBadRequest
	case errors.Is(err, support.ErrSessionNotFound),
		errors.Is(err, support.ErrVenueNotFound),
		errors.Is(err, availability.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, availability.ErrOverlappingBooking),
		errors.Is(err, availability.ErrVersionConflict),
		errors.Is(err, middleware.ErrInProgress),
		errors.As(err, &replayed):
		return http.StatusConflict
	case errors.Is(err, availabilityapp.ErrExportDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError hides internal failures behind a generic message.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
