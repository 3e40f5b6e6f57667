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

type workspaceHandler struct {
	workspaceService *service.WorkspaceService
	workspaceMapper  mapper.WorkspaceMapper
	blockMapper      mapper.BlockMapper
	logger           zerolog.Logger
}

func newWorkspaceHandler() *workspaceHandler {
	return &workspaceHandler{
		workspaceService: service.NewWorkspaceService(),
		workspaceMapper:  mapper.NewWorkspaceMapper(),
		blockMapper:      mapper.NewBlockMapper(),
		logger:           codekids.Logger,
	}
}

func WorkspaceHandler(router gin.IRouter) {
	h := newWorkspaceHandler()

	routes := router.Group("/api/v1/workspaces")
	{
		routes.GET("", h.getAll)
		routes.POST("", h.create)
		routes.GET("/:id", h.getByID)
		routes.PUT("/:id", h.save)
		routes.DELETE("/:id", h.delete)

		// Editing
		routes.POST("/:id/blocks", h.appendBlock)
		routes.DELETE("/:id/blocks/:instanceId", h.removeBlock)
		routes.DELETE("/:id/blocks", h.clear)

		routes.POST("/:id/run", h.run)
	}
}

// getAll lists workspaces, filtered by the learnerId query parameter when set
func (slf *workspaceHandler) getAll(c *gin.Context) {
	workspaces, err := slf.workspaceService.FindAll(c.Query("learnerId"))
	if err != nil {
		writeError(c, slf.logger, err, "Failed to retrieve workspaces")
		return
	}
	c.JSON(http.StatusOK, slf.workspaceMapper.ToWorkspaceResponses(workspaces))
}

func (slf *workspaceHandler) getByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	workspace, err := slf.workspaceService.FindByID(id)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to retrieve workspace")
		return
	}
	c.JSON(http.StatusOK, slf.workspaceMapper.ToWorkspaceResponse(*workspace))
}

func (slf *workspaceHandler) create(c *gin.Context) {
	var req request.CreateWorkspace
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse create workspace request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	workspace, err := slf.workspaceMapper.CreateWorkspace(req)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to create workspace")
		return
	}
	created, err := slf.workspaceService.Create(workspace)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to create workspace")
		return
	}
	c.JSON(http.StatusCreated, slf.workspaceMapper.ToWorkspaceResponse(*created))
}

func (slf *workspaceHandler) save(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req request.SaveWorkspace
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse save workspace request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	records, err := slf.workspaceMapper.SaveRecords(req)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to save workspace")
		return
	}
	saved, err := slf.workspaceService.Save(id, req.Name, records)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to save workspace")
		return
	}
	c.JSON(http.StatusOK, slf.workspaceMapper.ToWorkspaceResponse(*saved))
}

func (slf *workspaceHandler) delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := slf.workspaceService.Delete(id); err != nil {
		writeError(c, slf.logger, err, "Failed to delete workspace")
		return
	}
	c.Status(http.StatusNoContent)
}

func (slf *workspaceHandler) appendBlock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req request.AppendBlock
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse append block request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	placed, workspace, err := slf.workspaceService.AppendBlock(id, req.Type)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to append block")
		return
	}
	c.JSON(http.StatusCreated, response.AppendBlockResult{
		Block:     slf.blockMapper.ToBlockInstanceResponse(placed),
		Workspace: slf.workspaceMapper.ToWorkspaceResponse(*workspace),
	})
}

// removeBlock answers 200 with removed=false for an unknown instance id
func (slf *workspaceHandler) removeBlock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	removed, workspace, err := slf.workspaceService.RemoveBlock(id, c.Param("instanceId"))
	if err != nil {
		writeError(c, slf.logger, err, "Failed to remove block")
		return
	}
	c.JSON(http.StatusOK, response.RemoveBlockResult{
		Removed:   removed,
		Workspace: slf.workspaceMapper.ToWorkspaceResponse(*workspace),
	})
}

func (slf *workspaceHandler) clear(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	workspace, err := slf.workspaceService.Clear(id)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to clear workspace")
		return
	}
	c.JSON(http.StatusOK, slf.workspaceMapper.ToWorkspaceResponse(*workspace))
}

func (slf *workspaceHandler) run(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := slf.workspaceService.Run(id)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to run workspace")
		return
	}
	c.JSON(http.StatusOK, slf.workspaceMapper.ToWorkspaceRunResponse(*result))
}
