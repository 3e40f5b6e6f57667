package service

import (
	"codekids"
	"codekids/internal/api/models"
	"codekids/internal/api/repo"
	"codekids/internal/blocks"
	"codekids/pkg"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var ErrChallengeNotFound = errors.New("challenge not found")

const challengeListCacheKey = "challenges:all"

func challengeCacheKey(id uint) string {
	return fmt.Sprintf("challenges:%d", id)
}

// AttemptResult is what a graded submission hands back
type AttemptResult struct {
	Passed   bool
	Commands []blocks.Command
	Progress models.ChallengeProgress
}

type ChallengeService struct {
	challengeRepo  *repo.ChallengeRepository
	progressRepo   *repo.ProgressRepository
	programService *ProgramService
	blockService   *BlockService
	cacheTTL       time.Duration
	logger         zerolog.Logger
}

func NewChallengeService() *ChallengeService {
	return &ChallengeService{
		challengeRepo:  repo.NewChallengeRepository(),
		progressRepo:   repo.NewProgressRepository(),
		programService: NewProgramService(),
		blockService:   NewBlockService(),
		cacheTTL:       time.Duration(codekids.GetConfig().RedisConfig.TTL) * time.Second,
		logger:         codekids.Logger,
	}
}

// FindAll retrieves every challenge in display order
func (slf *ChallengeService) FindAll() ([]models.Challenge, error) {
	var cached []models.Challenge
	if err := pkg.RedisGet(challengeListCacheKey, &cached); err == nil {
		return cached, nil
	} else if !pkg.IsRedisNil(err) && !errors.Is(err, pkg.ErrCacheDisabled) {
		slf.logger.Warn().Err(err).Msg("Challenge list cache read failed")
	}

	challenges, err := slf.challengeRepo.FindAll()
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error getting challenges")
		return nil, err
	}
	slf.cache(challengeListCacheKey, challenges)
	return challenges, nil
}

// Recommended returns the first challenges in display order
func (slf *ChallengeService) Recommended() ([]models.Challenge, error) {
	challenges, err := slf.challengeRepo.FindFirst(RecommendedCount)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error getting recommended challenges")
		return nil, err
	}
	return challenges, nil
}

// FindByID retrieves a challenge, going through the cache first
func (slf *ChallengeService) FindByID(id uint) (*models.Challenge, error) {
	var cached models.Challenge
	if err := pkg.RedisGet(challengeCacheKey(id), &cached); err == nil {
		return &cached, nil
	} else if !pkg.IsRedisNil(err) && !errors.Is(err, pkg.ErrCacheDisabled) {
		slf.logger.Warn().Err(err).Uint("challengeId", id).Msg("Challenge cache read failed")
	}

	challenge, err := slf.challengeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slf.logger.Error().Uint("challengeId", id).Msg("Challenge not found")
			return nil, ErrChallengeNotFound
		}
		slf.logger.Error().Err(err).Uint("challengeId", id).Msg("Error getting challenge")
		return nil, err
	}
	slf.cache(challengeCacheKey(id), challenge)
	return &challenge, nil
}

// Create stores a new challenge. Initial blocks are normalized so every record
// carries a unique instance id.
func (slf *ChallengeService) Create(challenge models.Challenge) (*models.Challenge, error) {
	initial, err := normalizeRecords(challenge.InitialBlocks)
	if err != nil {
		return nil, err
	}
	challenge.InitialBlocks = initial
	if challenge.ExpectedSolution == nil {
		challenge.ExpectedSolution = blocks.CommandList{}
	}

	if err := slf.challengeRepo.Create(&challenge); err != nil {
		slf.logger.Error().Err(err).Msg("Error creating challenge")
		return nil, err
	}
	slf.invalidate(challenge.ID)
	return &challenge, nil
}

// Update patches a challenge's fields
func (slf *ChallengeService) Update(id uint, patch map[string]interface{}) (*models.Challenge, error) {
	if _, err := slf.challengeRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}

	if raw, ok := patch["initial_blocks"]; ok {
		records, _ := raw.(blocks.ProgramRecords)
		initial, err := normalizeRecords(records)
		if err != nil {
			return nil, err
		}
		patch["initial_blocks"] = initial
	}

	if err := slf.challengeRepo.Update(id, patch); err != nil {
		slf.logger.Error().Err(err).Uint("challengeId", id).Msg("Error updating challenge")
		return nil, err
	}
	slf.invalidate(id)
	return slf.FindByID(id)
}

// Delete removes a challenge
func (slf *ChallengeService) Delete(id uint) error {
	if _, err := slf.challengeRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChallengeNotFound
		}
		return err
	}

	if err := slf.challengeRepo.Delete(id); err != nil {
		slf.logger.Error().Err(err).Uint("challengeId", id).Msg("Error deleting challenge")
		return err
	}
	slf.invalidate(id)
	return nil
}

// Attempt grades a submitted program against the challenge and records the
// learner's progress. A malformed program is rejected before any progress is
// written.
func (slf *ChallengeService) Attempt(id uint, learnerID string, raw []byte) (*AttemptResult, error) {
	challenge, err := slf.FindByID(id)
	if err != nil {
		return nil, err
	}

	program, err := slf.programService.Parse(raw)
	if err != nil {
		return nil, err
	}
	check := slf.programService.CheckProgram(program, challenge.ExpectedSolution)

	progress, err := slf.progressRepo.RecordAttempt(learnerID, id, func(p *models.ChallengeProgress) {
		applyAttempt(p, check.Passed)
	})
	if err != nil {
		slf.logger.Error().Err(err).Uint("challengeId", id).Str("learnerId", learnerID).Msg("Error recording attempt")
		return nil, err
	}

	slf.logger.Info().
		Uint("challengeId", id).
		Str("learnerId", learnerID).
		Bool("passed", check.Passed).
		Int("stars", progress.StarsEarned).
		Msg("Challenge attempt graded")

	return &AttemptResult{
		Passed:   check.Passed,
		Commands: check.Commands,
		Progress: progress,
	}, nil
}

// ProgressForLearner lists a learner's progress on every attempted challenge
func (slf *ChallengeService) ProgressForLearner(learnerID string) ([]models.ChallengeProgress, error) {
	progress, err := slf.progressRepo.FindByLearner(learnerID)
	if err != nil {
		slf.logger.Error().Err(err).Str("learnerId", learnerID).Msg("Error getting learner progress")
		return nil, err
	}
	return progress, nil
}

// SeedDefaults inserts the sample challenges into an empty table
func (slf *ChallengeService) SeedDefaults() error {
	count, err := slf.challengeRepo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	challenges := DefaultChallenges(slf.blockService.Catalog())
	if err := slf.challengeRepo.CreateBatch(challenges); err != nil {
		slf.logger.Error().Err(err).Msg("Error seeding challenges")
		return err
	}
	_ = pkg.RedisDelete(challengeListCacheKey)
	slf.logger.Info().Int("count", len(challenges)).Msg("Sample challenges seeded")
	return nil
}

// applyAttempt merges one graded attempt into the progress row. Completion is
// sticky and the best star count is kept.
func applyAttempt(p *models.ChallengeProgress, passed bool) {
	p.Attempts++
	if !passed {
		return
	}
	p.Completed = true
	if p.StarsEarned < models.MaxStars {
		p.StarsEarned = models.MaxStars
	}
}

func normalizeRecords(records blocks.ProgramRecords) (blocks.ProgramRecords, error) {
	if records == nil {
		return blocks.ProgramRecords{}, nil
	}
	program, err := blocks.FromSerializable(records)
	if err != nil {
		return nil, err
	}
	return program.ToSerializable(), nil
}

func (slf *ChallengeService) cache(key string, value any) {
	if err := pkg.RedisSet(key, value, slf.cacheTTL); err != nil && !errors.Is(err, pkg.ErrCacheDisabled) {
		slf.logger.Warn().Err(err).Str("key", key).Msg("Challenge cache write failed")
	}
}

func (slf *ChallengeService) invalidate(id uint) {
	if err := pkg.RedisDelete(challengeCacheKey(id), challengeListCacheKey); err != nil {
		slf.logger.Warn().Err(err).Uint("challengeId", id).Msg("Challenge cache invalidation failed")
	}
}
