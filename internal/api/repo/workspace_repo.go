package repo

import (
	"codekids"
	"codekids/internal/api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WorkspaceRepository struct {
	Db *gorm.DB
}

func NewWorkspaceRepository() *WorkspaceRepository {
	return &WorkspaceRepository{Db: codekids.DB}
}

// FindByID retrieves a workspace by ID
func (slf *WorkspaceRepository) FindByID(id uint) (models.Workspace, error) {
	var workspace models.Workspace
	err := slf.Db.First(&workspace, id).Error
	return workspace, err
}

// FindAll retrieves workspaces, filtered by learner when learnerID is set
func (slf *WorkspaceRepository) FindAll(learnerID string) ([]models.Workspace, error) {
	var workspaces []models.Workspace
	query := slf.Db.Order("updated_at DESC")
	if learnerID != "" {
		query = query.Where("learner_id = ?", learnerID)
	}
	err := query.Find(&workspaces).Error
	return workspaces, err
}

// Create creates a new workspace
func (slf *WorkspaceRepository) Create(workspace *models.Workspace) error {
	return slf.Db.Create(workspace).Error
}

// Mutate locks the workspace row, lets fn edit it and stores its name and
// blocks. Nothing is written when fn fails.
func (slf *WorkspaceRepository) Mutate(id uint, fn func(*models.Workspace) error) (models.Workspace, error) {
	var workspace models.Workspace
	err := slf.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&workspace, id).Error; err != nil {
			return err
		}
		if err := fn(&workspace); err != nil {
			return err
		}
		return tx.Model(&workspace).Select("Name", "Blocks").Updates(&workspace).Error
	})
	return workspace, err
}

// Delete soft-deletes a workspace
func (slf *WorkspaceRepository) Delete(id uint) error {
	return slf.Db.Delete(&models.Workspace{}, id).Error
}
