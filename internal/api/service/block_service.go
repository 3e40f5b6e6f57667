package service

import (
	"codekids"
	"codekids/internal/blocks"
	"errors"

	"github.com/rs/zerolog"
)

var ErrUnknownBlockType = errors.New("unknown block type")

// BlockService exposes the block catalog
type BlockService struct {
	catalog *blocks.Catalog
	logger  zerolog.Logger
}

func NewBlockService() *BlockService {
	return &BlockService{
		catalog: codekids.GetCatalog(),
		logger:  codekids.Logger,
	}
}

// NewBlockServiceWith builds the service on an explicit catalog
func NewBlockServiceWith(catalog *blocks.Catalog, logger zerolog.Logger) *BlockService {
	return &BlockService{catalog: catalog, logger: logger}
}

func (slf *BlockService) Catalog() *blocks.Catalog {
	return slf.catalog
}

func (slf *BlockService) Categories() []blocks.Category {
	return slf.catalog.Categories()
}

func (slf *BlockService) ListByCategory() map[blocks.Category][]blocks.BlockDefinition {
	return slf.catalog.ListByCategory()
}

func (slf *BlockService) ListAll() []blocks.BlockDefinition {
	return slf.catalog.ListAll()
}

// FindByType returns ErrUnknownBlockType when the catalog has no such block
func (slf *BlockService) FindByType(blockType string) (blocks.BlockDefinition, error) {
	def, ok := slf.catalog.FindByType(blockType)
	if !ok {
		slf.logger.Debug().Str("type", blockType).Msg("Block type not in catalog")
		return blocks.BlockDefinition{}, ErrUnknownBlockType
	}
	return def, nil
}

// StarterProgram returns a fresh program holding the default blocks
func (slf *BlockService) StarterProgram() *blocks.Program {
	return blocks.NewProgramFrom(slf.catalog.DefaultBlocks())
}
