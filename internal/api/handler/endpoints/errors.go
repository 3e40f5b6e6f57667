package endpoints

import (
	"codekids/internal/actor"
	"codekids/internal/api/handler/mapper"
	"codekids/internal/api/handler/response"
	"codekids/internal/api/service"
	"codekids/internal/blocks"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var blockMapper = mapper.NewBlockMapper()

// writeError answers a failed service call. msg is used for unexpected errors.
func writeError(c *gin.Context, logger zerolog.Logger, err error, msg string) {
	var malformed *blocks.MalformedProgramError
	switch {
	case errors.As(err, &malformed):
		c.JSON(http.StatusBadRequest, response.APIError{
			Message: malformed.Error(),
			Data:    blockMapper.ToMalformedProgram(malformed),
		})
	case errors.Is(err, blocks.ErrUnknownCommand):
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
	case errors.Is(err, service.ErrChallengeNotFound),
		errors.Is(err, service.ErrWorkspaceNotFound),
		errors.Is(err, service.ErrStageNotFound),
		errors.Is(err, service.ErrUnknownBlockType):
		c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
	case errors.Is(err, service.ErrInvalidStageID):
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
	case errors.Is(err, actor.ErrAlreadyRunning):
		c.JSON(http.StatusConflict, response.APIError{Message: err.Error()})
	default:
		logger.Error().Err(err).Msg(msg)
		c.JSON(http.StatusInternalServerError, response.APIError{Message: msg})
	}
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}
