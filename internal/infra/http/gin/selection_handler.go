package ginserver

import (
	"errors"
	"io"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"venuecal/internal/app/commands"
	"venuecal/internal/app/dto"
	selectionapp "venuecal/internal/app/handlers/selection"
	"venuecal/internal/app/queries"
)

type SelectionHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type openSessionRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (h SelectionHandler) Open(c *gin.Context) {
	var req openSessionRequest
	// An empty body opens an empty selection.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	cmd := selectionapp.OpenSessionCommand{VenueID: c.Param("id"), Start: req.Start, End: req.End}
	result, err := commands.Dispatch[selectionapp.OpenSessionCommand, dto.Selection](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h SelectionHandler) Get(c *gin.Context) {
	query := selectionapp.GetSessionQuery{SessionID: c.Param("session")}
	result, err := queries.Ask[selectionapp.GetSessionQuery, dto.Selection](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type selectionEventRequest struct {
	Kind string `json:"kind"`
	Day  string `json:"day"`
}

func (h SelectionHandler) Apply(c *gin.Context) {
	var req selectionEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := selectionapp.ApplyEventCommand{SessionID: c.Param("session"), Kind: req.Kind, Day: req.Day}
	result, err := commands.Dispatch[selectionapp.ApplyEventCommand, dto.Selection](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h SelectionHandler) Close(c *gin.Context) {
	cmd := selectionapp.CloseSessionCommand{SessionID: c.Param("session")}
	if _, err := commands.Dispatch[selectionapp.CloseSessionCommand, struct{}](c.Request.Context(), h.Commands, cmd); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ SelectionHTTP = SelectionHandler{}
