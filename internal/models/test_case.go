package models

import (
	"time"
)

// BlockKind 用例块的种类
type BlockKind string

const (
	BlockKindReference     BlockKind = "Reference"
	BlockKindLoop          BlockKind = "Loop"
	BlockKindSelfReference BlockKind = "SelfReference"
)

// BlockType 用例块引用的目标类型
type BlockType string

const (
	BlockTypeActionGroup BlockType = "ActionGroup"
	BlockTypeAssertion   BlockType = "Assertion"
	BlockTypeCondition   BlockType = "Condition"
	BlockTypeLoop        BlockType = "Loop"
	BlockTypeInMemory    BlockType = "InMemory"
	BlockTypeDataTable   BlockType = "DataTable"
)

// Case 测试用例模型
type Case struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	AppID       string    `gorm:"size:36;not null;index" json:"appId"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedBy   string    `gorm:"size:64" json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// 关联
	Blocks []CaseBlock `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"blocks,omitempty"`
}

// TableName 指定表名
func (Case) TableName() string {
	return "test_cases"
}

// CaseBlock is one ordered entry of a case. Only (Reference, ActionGroup) and
// (Reference, Assertion) are executable.
type CaseBlock struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	CaseID         string    `gorm:"size:36;not null;index:idx_case_block_order,priority:1" json:"caseId"`
	ExecutionOrder int       `gorm:"not null;index:idx_case_block_order,priority:2" json:"executionOrder"`
	Kind           BlockKind `gorm:"size:32;not null" json:"kind"`
	Type           BlockType `gorm:"size:32;not null" json:"type"`
	Reference      *string   `gorm:"size:36" json:"reference,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (CaseBlock) TableName() string {
	return "test_case_blocks"
}

func (b *CaseBlock) GetID() string        { return b.ID }
func (b *CaseBlock) SetID(id string)      { b.ID = id }
func (b *CaseBlock) GetOrder() int        { return b.ExecutionOrder }
func (b *CaseBlock) SetOrder(order int)   { b.ExecutionOrder = order }
func (b *CaseBlock) ScopeColumn() string  { return "case_id" }
func (b *CaseBlock) ScopeID() string      { return b.CaseID }
func (b *CaseBlock) SetScopeID(id string) { b.CaseID = id }
