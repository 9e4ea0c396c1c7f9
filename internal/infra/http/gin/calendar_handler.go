package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"venuecal/internal/app/commands"
	"venuecal/internal/app/dto"
	availabilityapp "venuecal/internal/app/handlers/availability"
	"venuecal/internal/app/queries"
)

type CalendarHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type configureRequest struct {
	MinNights         *int     `json:"min_nights"`
	AllowPast         bool     `json:"allow_past"`
	NightlyPriceCents int64    `json:"nightly_price_cents"`
	Currency          string   `json:"currency"`
	ClosedWeekdays    []string `json:"closed_weekdays"`
}

func (h CalendarHandler) Configure(c *gin.Context) {
	var req configureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := availabilityapp.ConfigureCalendarCommand{
		VenueID:           c.Param("id"),
		MinNights:         req.MinNights,
		AllowPast:         req.AllowPast,
		NightlyPriceCents: req.NightlyPriceCents,
		Currency:          req.Currency,
		ClosedWeekdays:    req.ClosedWeekdays,
	}
	result, err := commands.Dispatch[availabilityapp.ConfigureCalendarCommand, dto.VenueSettings](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CalendarHandler) Month(c *gin.Context) {
	query := availabilityapp.GetMonthQuery{
		VenueID:   c.Param("id"),
		Month:     c.Query("month"),
		SessionID: c.Query("session"),
	}
	result, err := queries.Ask[availabilityapp.GetMonthQuery, dto.CalendarMonth](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CalendarHandler) Settings(c *gin.Context) {
	query := availabilityapp.GetSettingsQuery{VenueID: c.Param("id")}
	result, err := queries.Ask[availabilityapp.GetSettingsQuery, dto.VenueSettings](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type highlightRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (h CalendarHandler) Highlight(c *gin.Context) {
	var req highlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := availabilityapp.HighlightRangeCommand{VenueID: c.Param("id"), From: req.From, To: req.To}
	result, err := commands.Dispatch[availabilityapp.HighlightRangeCommand, dto.VenueSettings](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CalendarHandler) Export(c *gin.Context) {
	cmd := availabilityapp.ExportMonthCommand{VenueID: c.Param("id"), Month: c.Query("month")}
	result, err := commands.Dispatch[availabilityapp.ExportMonthCommand, dto.CalendarExport](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ CalendarHTTP = CalendarHandler{}
