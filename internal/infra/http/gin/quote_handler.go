package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"venuecal/internal/app/dto"
	pricingapp "venuecal/internal/app/handlers/pricing"
	"venuecal/internal/app/queries"
)

type QuoteHandler struct {
	Queries queries.Bus
}

func (h QuoteHandler) Quote(c *gin.Context) {
	query := pricingapp.QuoteQuery{
		VenueID:   c.Param("id"),
		SessionID: c.Query("session"),
		CheckIn:   c.Query("from"),
		CheckOut:  c.Query("to"),
	}
	result, err := queries.Ask[pricingapp.QuoteQuery, dto.PriceQuote](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ QuoteHTTP = QuoteHandler{}
