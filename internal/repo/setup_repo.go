package repo

import (
	"context"

	"github.com/dushixiang/tradelog/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewSetupRepo(db *gorm.DB) *SetupRepo {
	return &SetupRepo{
		Repository: orz.NewRepository[models.Setup, string](db),
	}
}

type SetupRepo struct {
	orz.Repository[models.Setup, string]
}

// FindByUser 查询用户的全部策略模板，按创建时间倒序
func (r SetupRepo) FindByUser(ctx context.Context, userID string) ([]models.Setup, error) {
	var setups []models.Setup
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&setups).Error
	return setups, err
}

// FindOneByUser 按用户范围查询单个策略模板
func (r SetupRepo) FindOneByUser(ctx context.Context, userID, id string) (m models.Setup, err error) {
	db := r.GetDB(ctx)
	err = db.Table(r.GetTableName()).
		Where("id = ? AND user_id = ?", id, userID).
		First(&m).Error
	return m, err
}
