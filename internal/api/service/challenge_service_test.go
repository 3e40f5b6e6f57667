package service

import (
	"codekids"
	"codekids/internal/api/models"
	"codekids/internal/blocks"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEnvFile = "../../../.env.test"

func setupTestDB(t *testing.T) {
	if _, err := os.Stat(testEnvFile); err != nil {
		t.Skip(".env.test not found, skipping database test")
	}
	codekids.InitConfig(testEnvFile)

	err := codekids.DB.AutoMigrate(
		&models.Challenge{},
		&models.ChallengeProgress{},
		&models.Workspace{},
	)
	require.NoError(t, err, "Failed to migrate tables")
}

func cleanupChallenge(t *testing.T, id uint) {
	if id > 0 {
		codekids.DB.Unscoped().Where("challenge_id = ?", id).Delete(&models.ChallengeProgress{})
		codekids.DB.Unscoped().Delete(&models.Challenge{}, id)
	}
}

func uniqueLearner() string {
	return fmt.Sprintf("learner-%d", time.Now().UnixNano())
}

func createTestChallenge(t *testing.T, expected ...blocks.Command) *models.Challenge {
	service := NewChallengeService()
	created, err := service.Create(models.Challenge{
		Title:            "Test challenge",
		Description:      "Walk forward",
		Difficulty:       models.ChallengeDifficultyBeginner,
		Type:             models.ChallengeTypeMaze,
		GoalDescription:  "Reach the goal",
		ImageURL:         "/images/challenges/maze.svg",
		SortOrder:        100,
		ExpectedSolution: expected,
	})
	require.NoError(t, err, "Failed to create challenge")
	require.NotZero(t, created.ID)
	return created
}

func TestChallenge_CRUD(t *testing.T) {
	setupTestDB(t)
	service := NewChallengeService()

	created := createTestChallenge(t, blocks.CommandMoveForward)
	defer cleanupChallenge(t, created.ID)

	assert.NotNil(t, created.InitialBlocks)
	found, err := service.FindByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test challenge", found.Title)
	assert.Equal(t, blocks.CommandList{blocks.CommandMoveForward}, found.ExpectedSolution)

	updated, err := service.Update(created.ID, map[string]interface{}{"title": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	all, err := service.FindAll()
	require.NoError(t, err)
	var seen bool
	for _, c := range all {
		seen = seen || c.ID == created.ID
	}
	assert.True(t, seen)

	require.NoError(t, service.Delete(created.ID))
	_, err = service.FindByID(created.ID)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
	assert.ErrorIs(t, service.Delete(created.ID), ErrChallengeNotFound)
}

func TestChallenge_CreateRejectsMalformedInitialBlocks(t *testing.T) {
	setupTestDB(t)
	service := NewChallengeService()

	_, err := service.Create(models.Challenge{
		Title:         "Broken",
		InitialBlocks: blocks.ProgramRecords{{ID: "x", Type: "move_forward", Category: "dance"}},
	})
	assert.True(t, blocks.IsMalformedProgram(err))
}

func TestChallenge_AttemptProgress(t *testing.T) {
	setupTestDB(t)
	service := NewChallengeService()

	challenge := createTestChallenge(t, blocks.CommandMoveForward, blocks.CommandTurnLeft)
	defer cleanupChallenge(t, challenge.ID)
	learner := uniqueLearner()

	result, err := service.Attempt(challenge.ID, learner, programJSON(t, "move_forward"))
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Equal(t, 1, result.Progress.Attempts)
	assert.Equal(t, 0, result.Progress.StarsEarned)
	assert.False(t, result.Progress.Completed)

	result, err = service.Attempt(challenge.ID, learner, programJSON(t, "when_clicked", "move_forward", "turn_left"))
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.True(t, result.Progress.Completed)
	assert.Equal(t, models.MaxStars, result.Progress.StarsEarned)

	result, err = service.Attempt(challenge.ID, learner, programJSON(t, "say_hello"))
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.True(t, result.Progress.Completed, "completion is sticky")
	assert.Equal(t, models.MaxStars, result.Progress.StarsEarned)
	assert.Equal(t, 3, result.Progress.Attempts)

	progress, err := service.ProgressForLearner(learner)
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, challenge.ID, progress[0].ChallengeID)
}

func TestChallenge_AttemptMalformedWritesNothing(t *testing.T) {
	setupTestDB(t)
	service := NewChallengeService()

	challenge := createTestChallenge(t, blocks.CommandMoveForward)
	defer cleanupChallenge(t, challenge.ID)
	learner := uniqueLearner()

	_, err := service.Attempt(challenge.ID, learner, []byte(`[{"id":"block_motion_forward"}]`))
	assert.True(t, blocks.IsMalformedProgram(err))

	progress, err := service.ProgressForLearner(learner)
	require.NoError(t, err)
	assert.Empty(t, progress)
}

func TestChallenge_AttemptUnknownChallenge(t *testing.T) {
	setupTestDB(t)
	service := NewChallengeService()

	_, err := service.Attempt(999999999, uniqueLearner(), []byte(`[]`))
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestChallenge_SeedDefaultsIsIdempotent(t *testing.T) {
	setupTestDB(t)
	service := NewChallengeService()

	require.NoError(t, service.SeedDefaults())
	before, err := service.challengeRepo.Count()
	require.NoError(t, err)
	require.NotZero(t, before)

	require.NoError(t, service.SeedDefaults())
	after, err := service.challengeRepo.Count()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	recommended, err := service.Recommended()
	require.NoError(t, err)
	assert.LessOrEqual(t, len(recommended), RecommendedCount)
}
