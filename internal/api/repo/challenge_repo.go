package repo

import (
	"codekids"
	"codekids/internal/api/models"

	"gorm.io/gorm"
)

type ChallengeRepository struct {
	Db *gorm.DB
}

func NewChallengeRepository() *ChallengeRepository {
	return &ChallengeRepository{Db: codekids.DB}
}

// FindByID retrieves a challenge by ID
func (slf *ChallengeRepository) FindByID(id uint) (models.Challenge, error) {
	var challenge models.Challenge
	err := slf.Db.First(&challenge, id).Error
	return challenge, err
}

// FindAll retrieves every challenge in display order
func (slf *ChallengeRepository) FindAll() ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := slf.Db.Order("sort_order ASC, id ASC").Find(&challenges).Error
	return challenges, err
}

// FindFirst retrieves the first limit challenges in display order
func (slf *ChallengeRepository) FindFirst(limit int) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := slf.Db.Order("sort_order ASC, id ASC").Limit(limit).Find(&challenges).Error
	return challenges, err
}

// Count returns the number of challenges
func (slf *ChallengeRepository) Count() (int64, error) {
	var count int64
	err := slf.Db.Model(&models.Challenge{}).Count(&count).Error
	return count, err
}

// Create creates a new challenge
func (slf *ChallengeRepository) Create(challenge *models.Challenge) error {
	return slf.Db.Create(challenge).Error
}

// CreateBatch inserts several challenges in one transaction
func (slf *ChallengeRepository) CreateBatch(challenges []models.Challenge) error {
	return slf.Db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&challenges).Error
	})
}

// Update applies a patch to an existing challenge
func (slf *ChallengeRepository) Update(id uint, patch map[string]interface{}) error {
	return slf.Db.Model(&models.Challenge{}).Where("id = ?", id).Updates(patch).Error
}

// Delete soft-deletes a challenge
func (slf *ChallengeRepository) Delete(id uint) error {
	return slf.Db.Delete(&models.Challenge{}, id).Error
}
