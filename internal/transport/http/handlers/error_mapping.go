package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorCase binds one service sentinel to the status and message it should
// produce on the wire.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// RespondWithMappedError walks cases in order and writes the first match.
// Unmatched errors get the fallback response so internal error text never
// leaks to clients.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, candidate := range cases {
		if candidate.Err != nil && errors.Is(err, candidate.Err) {
			c.JSON(candidate.Status, NewErrorResponse(c, candidate.Message))
			return
		}
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}
