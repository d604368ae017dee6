package repo

import (
	"context"
	"time"

	"github.com/dushixiang/tradelog/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewTradeRepo(db *gorm.DB) *TradeRepo {
	return &TradeRepo{
		Repository: orz.NewRepository[models.Trade, string](db),
	}
}

type TradeRepo struct {
	orz.Repository[models.Trade, string]
}

// TradeQuery 交易列表过滤条件
type TradeQuery struct {
	Status    models.TradeStatus
	Symbol    string
	AccountID string
	From      *time.Time
	To        *time.Time
	Page      int
	Size      int
}

// FindOneByUser 按用户范围查询单笔交易
func (r TradeRepo) FindOneByUser(ctx context.Context, userID, id string) (m models.Trade, err error) {
	db := r.GetDB(ctx)
	err = db.Table(r.GetTableName()).
		Where("id = ? AND user_id = ?", id, userID).
		First(&m).Error
	return m, err
}

// scopeByUser 组合用户范围与过滤条件
func (r TradeRepo) scopeByUser(ctx context.Context, userID string, query TradeQuery) *gorm.DB {
	db := r.GetDB(ctx).Table(r.GetTableName()).
		Where("user_id = ?", userID)

	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.Symbol != "" {
		db = db.Where("symbol = ?", query.Symbol)
	}
	if query.AccountID != "" {
		db = db.Where("account_id = ?", query.AccountID)
	}
	if query.From != nil {
		db = db.Where("exec_entry_time >= ?", *query.From)
	}
	if query.To != nil {
		db = db.Where("exec_entry_time <= ?", *query.To)
	}
	return db
}

// FindByUser 按过滤条件查询用户的交易，按创建时间倒序分页
func (r TradeRepo) FindByUser(ctx context.Context, userID string, query TradeQuery) ([]models.Trade, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.Size
	if size < 1 {
		size = 20
	}

	var trades []models.Trade
	err := r.scopeByUser(ctx, userID, query).
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&trades).Error
	return trades, err
}

// FindAllByUser 按过滤条件查询用户的全部交易，不分页，供导出与标签汇总等全量扫描使用
func (r TradeRepo) FindAllByUser(ctx context.Context, userID string, query TradeQuery) ([]models.Trade, error) {
	var trades []models.Trade
	err := r.scopeByUser(ctx, userID, query).
		Order("created_at DESC").
		Find(&trades).Error
	return trades, err
}

// FindClosedByUser 查询用户已平仓的交易，按平仓时间升序
// 可选按平仓时间范围与账户过滤，供绩效统计使用
func (r TradeRepo) FindClosedByUser(ctx context.Context, userID string, accountID string, from, to *time.Time) ([]models.Trade, error) {
	db := r.GetDB(ctx).Table(r.GetTableName()).
		Where("user_id = ? AND status = ?", userID, models.TradeStatusClosed)

	if accountID != "" {
		db = db.Where("account_id = ?", accountID)
	}
	if from != nil {
		db = db.Where("exec_exit_time >= ?", *from)
	}
	if to != nil {
		db = db.Where("exec_exit_time <= ?", *to)
	}

	// 相同平仓时刻用主键保证稳定排序
	var trades []models.Trade
	err := db.Order("exec_exit_time ASC, id ASC").Find(&trades).Error
	return trades, err
}

// FindClosedSince 查询全部用户在指定时间之后平仓的交易，供风控日报使用
func (r TradeRepo) FindClosedSince(ctx context.Context, since time.Time) ([]models.Trade, error) {
	var trades []models.Trade
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("status = ? AND exec_exit_time >= ?", models.TradeStatusClosed, since).
		Order("exec_exit_time ASC").
		Find(&trades).Error
	return trades, err
}

// FindRecentClosedByUser 查询用户最近平仓的交易，按平仓时间倒序
func (r TradeRepo) FindRecentClosedByUser(ctx context.Context, userID string, limit int) ([]models.Trade, error) {
	var trades []models.Trade
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("user_id = ? AND status = ?", userID, models.TradeStatusClosed).
		Order("exec_exit_time DESC").
		Limit(limit).
		Find(&trades).Error
	return trades, err
}
