package invariants

import (
	"gorm.io/gorm"

	"github.com/driftwatch/driftwatch/db"
	"github.com/driftwatch/driftwatch/internal/models"
)

// Store is the engine's persistence surface.
type Store interface {
	Group(id uint) (models.InvariantGroup, error)
	Account(id uint) (models.CloudAccount, error)
	// Checks returns the group's live (non-deleted) checks in creation order.
	Checks(groupID uint) ([]models.Check, error)
	// SaveRun writes the run, its result logs and the group's updated status
	// fields atomically; a partial run must never be visible.
	SaveRun(group *models.InvariantGroup, run *models.EvaluationRun, logs []models.CheckResultLog) error
}

// GormStore backs the engine with the application database.
type GormStore struct{}

func (GormStore) Group(id uint) (models.InvariantGroup, error) {
	var group models.InvariantGroup
	err := db.DB.First(&group, id).Error
	return group, err
}

func (GormStore) Account(id uint) (models.CloudAccount, error) {
	var account models.CloudAccount
	err := db.DB.First(&account, id).Error
	return account, err
}

func (GormStore) Checks(groupID uint) ([]models.Check, error) {
	var checks []models.Check
	err := db.DB.Where("group_id = ?", groupID).Order("created_at ASC, id ASC").Find(&checks).Error
	return checks, err
}

func (GormStore) SaveRun(group *models.InvariantGroup, run *models.EvaluationRun, logs []models.CheckResultLog) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return err
		}

		for i := range logs {
			logs[i].RunID = run.ID
		}

		if len(logs) > 0 {
			if err := tx.Create(&logs).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.InvariantGroup{}).
			Where("id = ?", group.ID).
			Updates(map[string]interface{}{
				"last_status":       group.LastStatus,
				"last_evaluated_at": group.LastEvaluatedAt,
			}).Error
	})
}
