package service

import (
	"codekids"
	"codekids/internal/api/models"
	"codekids/internal/api/repo"
	"codekids/internal/blocks"
	"codekids/pkg"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var ErrWorkspaceNotFound = errors.New("workspace not found")

// WorkspaceRunResult holds the commands of a workspace run and, for workspaces
// attached to a challenge, the verdict.
type WorkspaceRunResult struct {
	Commands    []blocks.Command
	ChallengeID *uint
	Passed      *bool
}

type WorkspaceService struct {
	workspaceRepo    *repo.WorkspaceRepository
	challengeService *ChallengeService
	programService   *ProgramService
	blockService     *BlockService
	logger           zerolog.Logger
}

func NewWorkspaceService() *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo:    repo.NewWorkspaceRepository(),
		challengeService: NewChallengeService(),
		programService:   NewProgramService(),
		blockService:     NewBlockService(),
		logger:           codekids.Logger,
	}
}

// FindAll lists workspaces, optionally only those of one learner
func (slf *WorkspaceService) FindAll(learnerID string) ([]models.Workspace, error) {
	workspaces, err := slf.workspaceRepo.FindAll(learnerID)
	if err != nil {
		slf.logger.Error().Err(err).Str("learnerId", learnerID).Msg("Error getting workspaces")
		return nil, err
	}
	return workspaces, nil
}

// FindByID retrieves a workspace by ID
func (slf *WorkspaceService) FindByID(id uint) (*models.Workspace, error) {
	workspace, err := slf.workspaceRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slf.logger.Error().Uint("workspaceId", id).Msg("Workspace not found")
			return nil, ErrWorkspaceNotFound
		}
		slf.logger.Error().Err(err).Uint("workspaceId", id).Msg("Error getting workspace")
		return nil, err
	}
	return &workspace, nil
}

// Create stores a new workspace. Without blocks it starts from the challenge's
// initial blocks, or from the starter program when those are empty.
func (slf *WorkspaceService) Create(workspace models.Workspace) (*models.Workspace, error) {
	if workspace.Blocks == nil {
		initial, err := slf.initialBlocks(workspace.ChallengeID)
		if err != nil {
			return nil, err
		}
		workspace.Blocks = initial
	} else {
		records, err := normalizeRecords(workspace.Blocks)
		if err != nil {
			return nil, err
		}
		workspace.Blocks = records
	}

	if err := slf.workspaceRepo.Create(&workspace); err != nil {
		slf.logger.Error().Err(err).Msg("Error creating workspace")
		return nil, err
	}
	slf.logger.Info().
		Uint("workspaceId", workspace.ID).
		Uint("challengeId", pkg.FromPtr(workspace.ChallengeID)).
		Str("learnerId", workspace.LearnerID).
		Msg("Workspace created")
	return &workspace, nil
}

// Save replaces the name and/or program of a workspace
func (slf *WorkspaceService) Save(id uint, name *string, records blocks.ProgramRecords) (*models.Workspace, error) {
	var normalized blocks.ProgramRecords
	if records != nil {
		var err error
		if normalized, err = normalizeRecords(records); err != nil {
			return nil, err
		}
	}

	return slf.mutate(id, func(ws *models.Workspace) error {
		if name != nil {
			ws.Name = *name
		}
		if normalized != nil {
			ws.Blocks = normalized
		}
		return nil
	})
}

// AppendBlock places a new instance of the catalog block at the end of the
// workspace program.
func (slf *WorkspaceService) AppendBlock(id uint, blockType string) (blocks.BlockInstance, *models.Workspace, error) {
	def, err := slf.blockService.FindByType(blockType)
	if err != nil {
		return blocks.BlockInstance{}, nil, err
	}

	var placed blocks.BlockInstance
	workspace, err := slf.mutate(id, func(ws *models.Workspace) error {
		program := slf.loadProgram(ws)
		placed = program.Append(def)
		ws.Blocks = program.ToSerializable()
		return nil
	})
	if err != nil {
		return blocks.BlockInstance{}, nil, err
	}
	return placed, workspace, nil
}

// RemoveBlock removes one placed block. Removing an unknown instance id leaves
// the workspace unchanged and reports false.
func (slf *WorkspaceService) RemoveBlock(id uint, instanceID string) (bool, *models.Workspace, error) {
	var removed bool
	workspace, err := slf.mutate(id, func(ws *models.Workspace) error {
		program := slf.loadProgram(ws)
		removed = program.Remove(instanceID)
		ws.Blocks = program.ToSerializable()
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	return removed, workspace, nil
}

// Clear empties the workspace program
func (slf *WorkspaceService) Clear(id uint) (*models.Workspace, error) {
	return slf.mutate(id, func(ws *models.Workspace) error {
		ws.Blocks = blocks.ProgramRecords{}
		return nil
	})
}

// Run interprets the saved program and grades it when the workspace belongs to
// a challenge that still exists.
func (slf *WorkspaceService) Run(id uint) (*WorkspaceRunResult, error) {
	workspace, err := slf.FindByID(id)
	if err != nil {
		return nil, err
	}

	program := slf.loadProgram(workspace)
	result := &WorkspaceRunResult{Commands: slf.programService.RunProgram(program).Commands}

	if workspace.ChallengeID == nil {
		return result, nil
	}
	challenge, err := slf.challengeService.FindByID(*workspace.ChallengeID)
	if errors.Is(err, ErrChallengeNotFound) {
		slf.logger.Warn().Uint("workspaceId", id).Uint("challengeId", *workspace.ChallengeID).Msg("Workspace challenge is gone, skipping grading")
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	passed := blocks.Matches(result.Commands, challenge.ExpectedSolution)
	result.ChallengeID = workspace.ChallengeID
	result.Passed = &passed
	return result, nil
}

// Delete removes a workspace
func (slf *WorkspaceService) Delete(id uint) error {
	if _, err := slf.FindByID(id); err != nil {
		return err
	}
	if err := slf.workspaceRepo.Delete(id); err != nil {
		slf.logger.Error().Err(err).Uint("workspaceId", id).Msg("Error deleting workspace")
		return err
	}
	return nil
}

// loadProgram rebuilds the stored program. Stored blocks that no longer
// deserialize are replaced by an empty program.
func (slf *WorkspaceService) loadProgram(ws *models.Workspace) *blocks.Program {
	program, err := blocks.FromSerializable(ws.Blocks)
	if err != nil {
		slf.logger.Warn().Err(err).Uint("workspaceId", ws.ID).Msg("Stored workspace blocks are malformed, starting empty")
		return blocks.NewProgram()
	}
	return program
}

func (slf *WorkspaceService) initialBlocks(challengeID *uint) (blocks.ProgramRecords, error) {
	if challengeID != nil {
		challenge, err := slf.challengeService.FindByID(*challengeID)
		if err != nil {
			return nil, err
		}
		if len(challenge.InitialBlocks) > 0 {
			return normalizeRecords(challenge.InitialBlocks)
		}
	}
	return slf.blockService.StarterProgram().ToSerializable(), nil
}

func (slf *WorkspaceService) mutate(id uint, fn func(*models.Workspace) error) (*models.Workspace, error) {
	workspace, err := slf.workspaceRepo.Mutate(id, fn)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		slf.logger.Error().Err(err).Uint("workspaceId", id).Msg("Error updating workspace")
		return nil, err
	}
	return &workspace, nil
}
