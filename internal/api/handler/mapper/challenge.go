package mapper

import (
	"codekids/internal/api/handler/request"
	"codekids/internal/api/handler/response"
	"codekids/internal/api/models"
	"codekids/internal/blocks"
	"encoding/json"
	"fmt"
)

// ChallengeMapper handles mapping between challenge models and DTOs
type ChallengeMapper interface {
	CreateChallenge(req request.CreateChallenge) (models.Challenge, error)
	PatchChallenge(req request.UpdateChallenge) (map[string]interface{}, error)
	ToChallengeResponse(c models.Challenge) response.Challenge
	ToChallengeResponses(challenges []models.Challenge) []response.Challenge
	ToProgressResponse(p models.ChallengeProgress) response.ChallengeProgress
	ToProgressResponses(progress []models.ChallengeProgress) []response.ChallengeProgress
}

type ChallengeMapperImpl struct{}

func NewChallengeMapper() ChallengeMapper {
	return &ChallengeMapperImpl{}
}

// CreateChallenge maps a create request to a challenge model. Malformed
// initial blocks come back as *blocks.MalformedProgramError.
func (m *ChallengeMapperImpl) CreateChallenge(req request.CreateChallenge) (models.Challenge, error) {
	expected, err := parseCommands(req.ExpectedSolution)
	if err != nil {
		return models.Challenge{}, err
	}
	initial, err := parseRecords(req.InitialBlocks)
	if err != nil {
		return models.Challenge{}, err
	}

	return models.Challenge{
		Title:            req.Title,
		Description:      req.Description,
		Difficulty:       req.Difficulty,
		Type:             req.Type,
		GoalDescription:  req.GoalDescription,
		ImageURL:         req.ImageURL,
		SortOrder:        req.Order,
		InitialBlocks:    initial,
		ExpectedSolution: expected,
	}, nil
}

// PatchChallenge maps an update request to a column patch
func (m *ChallengeMapperImpl) PatchChallenge(req request.UpdateChallenge) (map[string]interface{}, error) {
	patch := make(map[string]interface{})
	if req.Title != nil {
		patch["title"] = *req.Title
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.Difficulty != nil {
		patch["difficulty"] = *req.Difficulty
	}
	if req.Type != nil {
		patch["type"] = *req.Type
	}
	if req.GoalDescription != nil {
		patch["goal_description"] = *req.GoalDescription
	}
	if req.ImageURL != nil {
		patch["image_url"] = *req.ImageURL
	}
	if req.Order != nil {
		patch["sort_order"] = *req.Order
	}
	if len(req.InitialBlocks) > 0 {
		initial, err := parseRecords(req.InitialBlocks)
		if err != nil {
			return nil, err
		}
		patch["initial_blocks"] = initial
	}
	if req.ExpectedSolution != nil {
		expected, err := parseCommands(req.ExpectedSolution)
		if err != nil {
			return nil, err
		}
		patch["expected_solution"] = expected
	}
	return patch, nil
}

func (m *ChallengeMapperImpl) ToChallengeResponse(c models.Challenge) response.Challenge {
	initial := []blocks.BlockRecord(c.InitialBlocks)
	if initial == nil {
		initial = []blocks.BlockRecord{}
	}
	expected := []blocks.Command(c.ExpectedSolution)
	if expected == nil {
		expected = []blocks.Command{}
	}
	return response.Challenge{
		ID:               c.ID,
		Title:            c.Title,
		Description:      c.Description,
		Difficulty:       string(c.Difficulty),
		Type:             string(c.Type),
		GoalDescription:  c.GoalDescription,
		ImageURL:         c.ImageURL,
		Order:            c.SortOrder,
		InitialBlocks:    initial,
		ExpectedSolution: expected,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func (m *ChallengeMapperImpl) ToChallengeResponses(challenges []models.Challenge) []response.Challenge {
	out := make([]response.Challenge, 0, len(challenges))
	for _, c := range challenges {
		out = append(out, m.ToChallengeResponse(c))
	}
	return out
}

func (m *ChallengeMapperImpl) ToProgressResponse(p models.ChallengeProgress) response.ChallengeProgress {
	return response.ChallengeProgress{
		ChallengeID: p.ChallengeID,
		LearnerID:   p.LearnerID,
		Completed:   p.Completed,
		StarsEarned: p.StarsEarned,
		Attempts:    p.Attempts,
		LastUpdated: p.LastUpdated,
	}
}

func (m *ChallengeMapperImpl) ToProgressResponses(progress []models.ChallengeProgress) []response.ChallengeProgress {
	out := make([]response.ChallengeProgress, 0, len(progress))
	for _, p := range progress {
		out = append(out, m.ToProgressResponse(p))
	}
	return out
}

func parseCommands(raw []string) (blocks.CommandList, error) {
	out := make(blocks.CommandList, 0, len(raw))
	for _, s := range raw {
		cmd, err := blocks.ParseCommand(s)
		if err != nil {
			return nil, err
		}
		out = append(out, cmd)
	}
	return out, nil
}

// parseRecords accepts an absent field as an empty program
func parseRecords(raw json.RawMessage) (blocks.ProgramRecords, error) {
	if len(raw) == 0 {
		return blocks.ProgramRecords{}, nil
	}
	program, err := blocks.ParseProgram(raw)
	if err != nil {
		return nil, fmt.Errorf("initial blocks: %w", err)
	}
	return program.ToSerializable(), nil
}
