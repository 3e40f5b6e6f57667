package endpoints

import (
	"codekids"
	"codekids/internal/api/handler/request"
	"codekids/internal/api/handler/response"
	"codekids/internal/api/service"
	"codekids/pkg"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type stageHandler struct {
	stageService *service.StageService
	logger       zerolog.Logger
}

// StageHandler exposes the stage runtime. The caller owns stageService and
// closes it on shutdown.
func StageHandler(router gin.IRouter, stageService *service.StageService) {
	h := &stageHandler{
		stageService: stageService,
		logger:       codekids.Logger,
	}

	routes := router.Group("/api/v1/stages")
	{
		routes.GET("", h.list)
		routes.GET("/:stageId", h.snapshot)
		routes.POST("/:stageId/run", h.run)
		routes.POST("/:stageId/stop", h.stop)
		routes.DELETE("/:stageId", h.delete)
	}
}

func (slf *stageHandler) list(c *gin.Context) {
	c.JSON(http.StatusOK, slf.stageService.List())
}

// snapshot returns the stage's latest frame
func (slf *stageHandler) snapshot(c *gin.Context) {
	frame, err := slf.stageService.Snapshot(c.Param("stageId"))
	if err != nil {
		writeError(c, slf.logger, err, "Failed to get stage")
		return
	}
	c.JSON(http.StatusOK, frame)
}

// run starts playing a program. A stage that is still playing answers 409.
func (slf *stageHandler) run(c *gin.Context) {
	var req request.RunStage
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse run stage request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	run, err := slf.stageService.Run(c.Param("stageId"), req.Blocks)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to run stage")
		return
	}
	c.JSON(http.StatusAccepted, response.StageRun{
		StageID:  run.StageID,
		RunID:    run.RunID,
		Commands: commandsOrEmpty(run.Commands),
	})
}

func (slf *stageHandler) stop(c *gin.Context) {
	stageID := c.Param("stageId")
	stopped, err := slf.stageService.Stop(stageID)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to stop stage")
		return
	}
	c.JSON(http.StatusOK, response.StageStop{StageID: stageID, Stopped: stopped})
}

// delete stops the stage if needed and forgets it
func (slf *stageHandler) delete(c *gin.Context) {
	if err := slf.stageService.Delete(c.Param("stageId")); err != nil {
		writeError(c, slf.logger, err, "Failed to delete stage")
		return
	}
	c.Status(http.StatusNoContent)
}
