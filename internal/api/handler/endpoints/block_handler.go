package endpoints

import (
	"codekids"
	"codekids/internal/api/handler/mapper"
	"codekids/internal/api/handler/response"
	"codekids/internal/api/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type blockHandler struct {
	blockService *service.BlockService
	blockMapper  mapper.BlockMapper
	logger       zerolog.Logger
}

func newBlockHandler() *blockHandler {
	return &blockHandler{
		blockService: service.NewBlockService(),
		blockMapper:  mapper.NewBlockMapper(),
		logger:       codekids.Logger,
	}
}

func BlockHandler(router gin.IRouter) {
	h := newBlockHandler()

	routes := router.Group("/api/v1/blocks")
	{
		routes.GET("", h.palette)
		routes.GET("/categories", h.categories)
		routes.GET("/defaults", h.defaults)
		routes.GET("/:type", h.getByType)
	}
}

// palette returns the catalog grouped by category in display order
func (slf *blockHandler) palette(c *gin.Context) {
	c.JSON(http.StatusOK, slf.blockMapper.ToPalette(slf.blockService.Categories(), slf.blockService.ListByCategory()))
}

func (slf *blockHandler) categories(c *gin.Context) {
	categories := slf.blockService.Categories()
	out := make([]string, 0, len(categories))
	for _, category := range categories {
		out = append(out, string(category))
	}
	c.JSON(http.StatusOK, out)
}

// defaults returns the starter program a fresh editor opens with
func (slf *blockHandler) defaults(c *gin.Context) {
	starter := slf.blockService.StarterProgram().Snapshot()
	out := make([]response.BlockInstance, 0, len(starter))
	for _, inst := range starter {
		out = append(out, slf.blockMapper.ToBlockInstanceResponse(inst))
	}
	c.JSON(http.StatusOK, out)
}

func (slf *blockHandler) getByType(c *gin.Context) {
	def, err := slf.blockService.FindByType(c.Param("type"))
	if err != nil {
		writeError(c, slf.logger, err, "Failed to get block")
		return
	}
	c.JSON(http.StatusOK, slf.blockMapper.ToBlockResponse(def))
}
