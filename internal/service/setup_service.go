package service

import (
	"context"

	"github.com/dushixiang/tradelog/internal/models"
	"github.com/dushixiang/tradelog/internal/repo"
	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupService 交易模式（策略模板）管理
type SetupService struct {
	logger *zap.Logger

	*orz.Service
	*repo.SetupRepo
}

func NewSetupService(db *gorm.DB, logger *zap.Logger) *SetupService {
	return &SetupService{
		logger:    logger,
		Service:   orz.NewService(db),
		SetupRepo: repo.NewSetupRepo(db),
	}
}

// SetupRequest 创建/更新交易模式请求
type SetupRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=2000"`
	Rules       []string `json:"rules"`
}

func (s *SetupService) CreateSetup(ctx context.Context, userID string, req SetupRequest) (*models.Setup, error) {
	setup := &models.Setup{
		ID:          ulid.Make().String(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Rules:       req.Rules,
	}
	if err := s.SetupRepo.Create(ctx, setup); err != nil {
		return nil, err
	}
	return setup, nil
}

func (s *SetupService) ListSetups(ctx context.Context, userID string) ([]models.Setup, error) {
	return s.SetupRepo.FindByUser(ctx, userID)
}

func (s *SetupService) UpdateSetup(ctx context.Context, userID, id string, req SetupRequest) (*models.Setup, error) {
	var result models.Setup

	err := s.Transaction(ctx, func(ctx context.Context) error {
		setup, err := s.SetupRepo.FindOneByUser(ctx, userID, id)
		if err != nil {
			return err
		}
		setup.Name = req.Name
		setup.Description = req.Description
		setup.Rules = req.Rules
		if err := s.SetupRepo.Save(ctx, &setup); err != nil {
			return err
		}
		result = setup
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *SetupService) DeleteSetup(ctx context.Context, userID, id string) error {
	setup, err := s.SetupRepo.FindOneByUser(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.SetupRepo.DeleteById(ctx, setup.ID)
}
