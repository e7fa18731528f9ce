package models

import (
	"time"
)

// SuiteBlockType 套件块类型
type SuiteBlockType string

const (
	SuiteBlockTypeTestCase SuiteBlockType = "TestCase"
)

// Suite 测试套件模型
type Suite struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	AppID       string    `gorm:"size:36;not null;index" json:"appId"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedBy   string    `gorm:"size:64" json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// 关联
	Blocks []SuiteBlock `gorm:"foreignKey:SuiteID;constraint:OnDelete:CASCADE" json:"blocks,omitempty"`
}

// TableName 指定表名
func (Suite) TableName() string {
	return "test_suites"
}

// SuiteBlock is one ordered entry of a suite pointing at a case.
type SuiteBlock struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	SuiteID        string         `gorm:"size:36;not null;index:idx_suite_block_order,priority:1" json:"suiteId"`
	ExecutionOrder int            `gorm:"not null;index:idx_suite_block_order,priority:2" json:"executionOrder"`
	Type           SuiteBlockType `gorm:"size:32;not null" json:"type"`
	Reference      *string        `gorm:"size:36" json:"reference,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`

	// 引用用例的信息，仅用于展示
	Name        string `gorm:"-" json:"name,omitempty"`
	Description string `gorm:"-" json:"description,omitempty"`
}

// TableName 指定表名
func (SuiteBlock) TableName() string {
	return "test_suite_blocks"
}

func (b *SuiteBlock) GetID() string        { return b.ID }
func (b *SuiteBlock) SetID(id string)      { b.ID = id }
func (b *SuiteBlock) GetOrder() int        { return b.ExecutionOrder }
func (b *SuiteBlock) SetOrder(order int)   { b.ExecutionOrder = order }
func (b *SuiteBlock) ScopeColumn() string  { return "suite_id" }
func (b *SuiteBlock) ScopeID() string      { return b.SuiteID }
func (b *SuiteBlock) SetScopeID(id string) { b.SuiteID = id }
