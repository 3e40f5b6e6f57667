package repo

import (
	"codekids"
	"codekids/internal/api/models"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	Db *gorm.DB
}

func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{Db: codekids.DB}
}

// FindByLearner retrieves all progress rows of a learner
func (slf *ProgressRepository) FindByLearner(learnerID string) ([]models.ChallengeProgress, error) {
	var progress []models.ChallengeProgress
	err := slf.Db.
		Where("learner_id = ?", learnerID).
		Order("challenge_id ASC").
		Find(&progress).Error
	return progress, err
}

// FindByLearnerAndChallenge retrieves a single progress row
func (slf *ProgressRepository) FindByLearnerAndChallenge(learnerID string, challengeID uint) (models.ChallengeProgress, error) {
	var progress models.ChallengeProgress
	err := slf.Db.
		Where("learner_id = ? AND challenge_id = ?", learnerID, challengeID).
		First(&progress).Error
	return progress, err
}

// RecordAttempt creates or updates the progress row inside a transaction that
// locks it, so concurrent attempts of the same learner cannot lose a star.
func (slf *ProgressRepository) RecordAttempt(learnerID string, challengeID uint, merge func(*models.ChallengeProgress)) (models.ChallengeProgress, error) {
	var progress models.ChallengeProgress
	err := slf.Db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("learner_id = ? AND challenge_id = ?", learnerID, challengeID).
			First(&progress).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			progress = models.ChallengeProgress{LearnerID: learnerID, ChallengeID: challengeID}
		} else if err != nil {
			return err
		}
		merge(&progress)
		return tx.Save(&progress).Error
	})
	return progress, err
}
