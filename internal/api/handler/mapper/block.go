package mapper

import (
	"codekids/internal/api/handler/response"
	"codekids/internal/blocks"
)

type BlockMapper interface {
	ToBlockResponse(def blocks.BlockDefinition) response.Block
	ToBlockResponses(defs []blocks.BlockDefinition) []response.Block
	ToPalette(categories []blocks.Category, byCategory map[blocks.Category][]blocks.BlockDefinition) []response.CategoryBlocks
	ToBlockInstanceResponse(inst blocks.BlockInstance) response.BlockInstance
	ToMalformedProgram(err *blocks.MalformedProgramError) response.MalformedProgram
}

type BlockMapperImpl struct{}

func NewBlockMapper() BlockMapper {
	return &BlockMapperImpl{}
}

func (m *BlockMapperImpl) ToBlockResponse(def blocks.BlockDefinition) response.Block {
	return response.Block{
		ID:       def.ID,
		Type:     def.Type,
		Category: string(def.Category),
		Text:     def.Text,
		Icon:     def.Icon,
	}
}

func (m *BlockMapperImpl) ToBlockResponses(defs []blocks.BlockDefinition) []response.Block {
	out := make([]response.Block, 0, len(defs))
	for _, def := range defs {
		out = append(out, m.ToBlockResponse(def))
	}
	return out
}

// ToPalette groups the catalog in display order. Empty categories are kept so
// the editor can still render their tab.
func (m *BlockMapperImpl) ToPalette(categories []blocks.Category, byCategory map[blocks.Category][]blocks.BlockDefinition) []response.CategoryBlocks {
	out := make([]response.CategoryBlocks, 0, len(categories))
	for _, category := range categories {
		out = append(out, response.CategoryBlocks{
			Category: string(category),
			Blocks:   m.ToBlockResponses(byCategory[category]),
		})
	}
	return out
}

func (m *BlockMapperImpl) ToBlockInstanceResponse(inst blocks.BlockInstance) response.BlockInstance {
	return response.BlockInstance{
		InstanceID: inst.InstanceID,
		Block: response.Block{
			ID:       inst.ID,
			Type:     inst.Type,
			Category: string(inst.Category),
			Text:     inst.Text,
			Icon:     inst.Icon,
		},
	}
}

func (m *BlockMapperImpl) ToMalformedProgram(err *blocks.MalformedProgramError) response.MalformedProgram {
	return response.MalformedProgram{
		Index:  err.Index,
		Field:  err.Field,
		Reason: err.Reason,
	}
}
