package models

import (
	"time"
)

// ActionKind is the leaf step verb.
type ActionKind string

const (
	ActionOpen        ActionKind = "Open"
	ActionEnter       ActionKind = "Enter"
	ActionClick       ActionKind = "Click"
	ActionDoubleClick ActionKind = "DoubleClick"
	ActionVerifyText  ActionKind = "VerifyText"
)

// TargetKind is the locator strategy.
type TargetKind string

const (
	TargetCss   TargetKind = "Css"
	TargetID    TargetKind = "Id"
	TargetXpath TargetKind = "Xpath"
)

// ActionGroup 动作组模型
type ActionGroup struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	AppID       string    `gorm:"size:36;not null;index" json:"appId"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Type        BlockType `gorm:"size:32;default:'ActionGroup'" json:"type"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// 关联
	Actions []Action `gorm:"foreignKey:ActionGroupID;constraint:OnDelete:CASCADE" json:"actions,omitempty"`
}

// TableName 指定表名
func (ActionGroup) TableName() string {
	return "action_groups"
}

// Action 动作（叶子步骤）
type Action struct {
	ID             string      `gorm:"primaryKey;size:36" json:"id"`
	ActionGroupID  string      `gorm:"size:36;not null;index:idx_action_order,priority:1" json:"actionGroupId"`
	ExecutionOrder int         `gorm:"not null;index:idx_action_order,priority:2" json:"executionOrder"`
	Description    string      `gorm:"type:text" json:"description,omitempty"`
	Kind           ActionKind  `gorm:"size:32;not null" json:"kind"`
	DataValue      *string     `gorm:"type:text" json:"dataValue,omitempty"`
	TargetKind     *TargetKind `gorm:"size:16" json:"targetKind,omitempty"`
	TargetValue    *string     `gorm:"type:text" json:"targetValue,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// TableName 指定表名
func (Action) TableName() string {
	return "actions"
}

func (a *Action) GetID() string        { return a.ID }
func (a *Action) SetID(id string)      { a.ID = id }
func (a *Action) GetOrder() int        { return a.ExecutionOrder }
func (a *Action) SetOrder(order int)   { a.ExecutionOrder = order }
func (a *Action) ScopeColumn() string  { return "action_group_id" }
func (a *Action) ScopeID() string      { return a.ActionGroupID }
func (a *Action) SetScopeID(id string) { a.ActionGroupID = id }
