package mapper

import (
	"codekids/internal/api/handler/request"
	"codekids/internal/api/handler/response"
	"codekids/internal/api/models"
	"codekids/internal/api/service"
	"codekids/internal/blocks"
	"encoding/json"
)

type WorkspaceMapper interface {
	CreateWorkspace(req request.CreateWorkspace) (models.Workspace, error)
	SaveRecords(req request.SaveWorkspace) (blocks.ProgramRecords, error)
	ToWorkspaceResponse(w models.Workspace) response.Workspace
	ToWorkspaceResponses(workspaces []models.Workspace) []response.Workspace
	ToWorkspaceRunResponse(r service.WorkspaceRunResult) response.WorkspaceRun
}

type WorkspaceMapperImpl struct{}

func NewWorkspaceMapper() WorkspaceMapper {
	return &WorkspaceMapperImpl{}
}

// CreateWorkspace leaves Blocks nil when the request carries none so the
// service can pick the starting program.
func (m *WorkspaceMapperImpl) CreateWorkspace(req request.CreateWorkspace) (models.Workspace, error) {
	records, err := optionalRecords(req.Blocks)
	if err != nil {
		return models.Workspace{}, err
	}
	return models.Workspace{
		Name:        req.Name,
		LearnerID:   req.LearnerID,
		ChallengeID: req.ChallengeID,
		Blocks:      records,
	}, nil
}

func (m *WorkspaceMapperImpl) SaveRecords(req request.SaveWorkspace) (blocks.ProgramRecords, error) {
	return optionalRecords(req.Blocks)
}

func (m *WorkspaceMapperImpl) ToWorkspaceResponse(w models.Workspace) response.Workspace {
	records := []blocks.BlockRecord(w.Blocks)
	if records == nil {
		records = []blocks.BlockRecord{}
	}
	return response.Workspace{
		ID:          w.ID,
		Name:        w.Name,
		LearnerID:   w.LearnerID,
		ChallengeID: w.ChallengeID,
		Blocks:      records,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func (m *WorkspaceMapperImpl) ToWorkspaceResponses(workspaces []models.Workspace) []response.Workspace {
	out := make([]response.Workspace, 0, len(workspaces))
	for _, w := range workspaces {
		out = append(out, m.ToWorkspaceResponse(w))
	}
	return out
}

func (m *WorkspaceMapperImpl) ToWorkspaceRunResponse(r service.WorkspaceRunResult) response.WorkspaceRun {
	return response.WorkspaceRun{
		Commands:    commandsOrEmpty(r.Commands),
		ChallengeID: r.ChallengeID,
		Passed:      r.Passed,
	}
}

func optionalRecords(raw json.RawMessage) (blocks.ProgramRecords, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	program, err := blocks.ParseProgram(raw)
	if err != nil {
		return nil, err
	}
	return program.ToSerializable(), nil
}

func commandsOrEmpty(commands []blocks.Command) []blocks.Command {
	if commands == nil {
		return []blocks.Command{}
	}
	return commands
}
