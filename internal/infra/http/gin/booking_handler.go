package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"venuecal/internal/app/commands"
	"venuecal/internal/app/dto"
	availabilityapp "venuecal/internal/app/handlers/availability"
	bookingsapp "venuecal/internal/app/handlers/bookings"
	"venuecal/internal/app/queries"
)

// BookingHandler lets operators push confirmed bookings directly, mirroring
// what the booking events consumer does.
type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type recordBookingRequest struct {
	BookingID string `json:"booking_id"`
	DateFrom  string `json:"date_from"`
	DateTo    string `json:"date_to"`
}

func (h BookingHandler) Record(c *gin.Context) {
	var req recordBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := bookingsapp.RecordBookingCommand{
		VenueID:   c.Param("id"),
		BookingID: req.BookingID,
		DateFrom:  req.DateFrom,
		DateTo:    req.DateTo,
		EventID:   c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingsapp.RecordBookingCommand, dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Release(c *gin.Context) {
	cmd := bookingsapp.ReleaseBookingCommand{
		VenueID:   c.Param("id"),
		BookingID: c.Param("bookingID"),
		EventID:   c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingsapp.ReleaseBookingCommand, dto.VenueSettings](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) List(c *gin.Context) {
	query := availabilityapp.ListBookingsQuery{VenueID: c.Param("id")}
	result, err := queries.Ask[availabilityapp.ListBookingsQuery, []dto.Booking](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": result})
}

var _ BookingHTTP = BookingHandler{}
