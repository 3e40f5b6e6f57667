package endpoints

import (
	"codekids"
	"codekids/internal/api/handler/request"
	"codekids/internal/api/handler/response"
	"codekids/internal/api/service"
	"codekids/internal/blocks"
	"codekids/pkg"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type programHandler struct {
	programService *service.ProgramService
	logger         zerolog.Logger
}

func newProgramHandler() *programHandler {
	return &programHandler{
		programService: service.NewProgramService(),
		logger:         codekids.Logger,
	}
}

func ProgramHandler(router gin.IRouter) {
	h := newProgramHandler()

	routes := router.Group("/api/v1/programs")
	{
		routes.POST("/run", h.run)
		routes.POST("/check", h.check)
	}
}

// run interprets a program without touching any stage
func (slf *programHandler) run(c *gin.Context) {
	var req request.RunProgram
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse run program request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	result, err := slf.programService.Run(req.Blocks)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to run program")
		return
	}
	c.JSON(http.StatusOK, response.RunResult{Commands: commandsOrEmpty(result.Commands)})
}

// check grades a program against an expected command list
func (slf *programHandler) check(c *gin.Context) {
	var req request.CheckProgram
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse check program request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	expected := make([]blocks.Command, 0, len(req.Expected))
	for _, s := range req.Expected {
		cmd, err := blocks.ParseCommand(s)
		if err != nil {
			writeError(c, slf.logger, err, "Failed to check program")
			return
		}
		expected = append(expected, cmd)
	}

	result, err := slf.programService.Check(req.Blocks, expected)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to check program")
		return
	}
	c.JSON(http.StatusOK, response.CheckResult{Passed: result.Passed, Commands: commandsOrEmpty(result.Commands)})
}

func commandsOrEmpty(commands []blocks.Command) []blocks.Command {
	if commands == nil {
		return []blocks.Command{}
	}
	return commands
}
