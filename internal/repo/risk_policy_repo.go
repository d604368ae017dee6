package repo

import (
	"context"

	"github.com/dushixiang/tradelog/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewRiskPolicyRepo(db *gorm.DB) *RiskPolicyRepo {
	return &RiskPolicyRepo{
		Repository: orz.NewRepository[models.RiskPolicy, string](db),
	}
}

type RiskPolicyRepo struct {
	orz.Repository[models.RiskPolicy, string]
}

// FindByUserId 查询用户的风控配置
func (r RiskPolicyRepo) FindByUserId(ctx context.Context, userID string) (m models.RiskPolicy, err error) {
	db := r.GetDB(ctx)
	err = db.Table(r.GetTableName()).
		Where("user_id = ?", userID).
		First(&m).Error
	return m, err
}
