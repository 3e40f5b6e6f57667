package endpoints

import (
	"codekids"
	"codekids/internal/api/handler/mapper"
	"codekids/internal/api/handler/request"
	"codekids/internal/api/handler/response"
	"codekids/internal/api/service"
	"codekids/pkg"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type challengeHandler struct {
	challengeService *service.ChallengeService
	challengeMapper  mapper.ChallengeMapper
	logger           zerolog.Logger
}

func newChallengeHandler() *challengeHandler {
	return &challengeHandler{
		challengeService: service.NewChallengeService(),
		challengeMapper:  mapper.NewChallengeMapper(),
		logger:           codekids.Logger,
	}
}

func ChallengeHandler(router gin.IRouter) {
	h := newChallengeHandler()

	routes := router.Group("/api/v1/challenges")
	{
		routes.GET("", h.getAll)
		routes.GET("/recommended", h.recommended)
		routes.GET("/:id", h.getByID)
		routes.POST("", h.create)
		routes.PUT("/:id", h.update)
		routes.DELETE("/:id", h.delete)

		routes.POST("/:id/attempts", h.attempt)
	}

	learners := router.Group("/api/v1/learners")
	{
		learners.GET("/:learnerId/challenges", h.learnerProgress)
	}
}

func (slf *challengeHandler) getAll(c *gin.Context) {
	challenges, err := slf.challengeService.FindAll()
	if err != nil {
		writeError(c, slf.logger, err, "Failed to retrieve challenges")
		return
	}
	c.JSON(http.StatusOK, slf.challengeMapper.ToChallengeResponses(challenges))
}

func (slf *challengeHandler) recommended(c *gin.Context) {
	challenges, err := slf.challengeService.Recommended()
	if err != nil {
		writeError(c, slf.logger, err, "Failed to retrieve recommended challenges")
		return
	}
	c.JSON(http.StatusOK, slf.challengeMapper.ToChallengeResponses(challenges))
}

func (slf *challengeHandler) getByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	challenge, err := slf.challengeService.FindByID(id)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to retrieve challenge")
		return
	}
	c.JSON(http.StatusOK, slf.challengeMapper.ToChallengeResponse(*challenge))
}

func (slf *challengeHandler) create(c *gin.Context) {
	var req request.CreateChallenge
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse create challenge request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	challenge, err := slf.challengeMapper.CreateChallenge(req)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to create challenge")
		return
	}
	created, err := slf.challengeService.Create(challenge)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to create challenge")
		return
	}
	c.JSON(http.StatusCreated, slf.challengeMapper.ToChallengeResponse(*created))
}

func (slf *challengeHandler) update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req request.UpdateChallenge
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse update challenge request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	patch, err := slf.challengeMapper.PatchChallenge(req)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to update challenge")
		return
	}
	updated, err := slf.challengeService.Update(id, patch)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to update challenge")
		return
	}
	c.JSON(http.StatusOK, slf.challengeMapper.ToChallengeResponse(*updated))
}

func (slf *challengeHandler) delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := slf.challengeService.Delete(id); err != nil {
		writeError(c, slf.logger, err, "Failed to delete challenge")
		return
	}
	c.Status(http.StatusNoContent)
}

// attempt grades a learner's submission and records their progress
func (slf *challengeHandler) attempt(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req request.AttemptChallenge
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse attempt request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	result, err := slf.challengeService.Attempt(id, req.LearnerID, req.Blocks)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to grade attempt")
		return
	}
	c.JSON(http.StatusOK, response.AttemptResult{
		Passed:   result.Passed,
		Commands: commandsOrEmpty(result.Commands),
		Progress: slf.challengeMapper.ToProgressResponse(result.Progress),
	})
}

func (slf *challengeHandler) learnerProgress(c *gin.Context) {
	progress, err := slf.challengeService.ProgressForLearner(c.Param("learnerId"))
	if err != nil {
		writeError(c, slf.logger, err, "Failed to retrieve learner progress")
		return
	}
	c.JSON(http.StatusOK, slf.challengeMapper.ToProgressResponses(progress))
}
