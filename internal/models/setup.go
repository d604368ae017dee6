package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Setup 交易策略模板（如"趋势回调"、"区间突破"），供交易计划引用
type Setup struct {
	ID     string `gorm:"primaryKey;size:26" json:"id"`
	UserID string `gorm:"size:26;not null;index" json:"user_id"`

	Name        string                      `gorm:"size:100;not null" json:"name"`
	Description string                      `gorm:"size:2000" json:"description"`
	Rules       datatypes.JSONSlice[string] `gorm:"type:json" json:"rules"` // 入场规则清单

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName 指定表名
func (Setup) TableName() string {
	return "setups"
}
