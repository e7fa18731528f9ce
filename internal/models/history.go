package models

import (
	"time"

	"gorm.io/datatypes"
)

// HistoryType 执行对象类型
type HistoryType string

const (
	HistoryTypeTestCase  HistoryType = "TestCase"
	HistoryTypeTestSuite HistoryType = "TestSuite"
)

// ExecutionKind 触发方式
type ExecutionKind string

const (
	ExecutionKindTrigger   ExecutionKind = "Trigger"
	ExecutionKindScheduled ExecutionKind = "Scheduled"
)

// ExecutionStatus 执行请求状态
type ExecutionStatus string

const (
	ExecutionStarted             ExecutionStatus = "Started"
	ExecutionRunning             ExecutionStatus = "Running"
	ExecutionCompleted           ExecutionStatus = "Completed"
	ExecutionCompletedWithErrors ExecutionStatus = "CompletedWithErrors"
	ExecutionFailed              ExecutionStatus = "Failed"
)

// Terminal reports whether the status is final.
func (s ExecutionStatus) Terminal() bool {
	switch s {
	case ExecutionCompleted, ExecutionCompletedWithErrors, ExecutionFailed:
		return true
	}
	return false
}

// ExecutionRequest 一次触发的执行记录
type ExecutionRequest struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Reference   string            `gorm:"size:36;not null;index" json:"reference"`
	HistoryType HistoryType       `gorm:"size:32;not null;index" json:"historyType"`
	Kind        ExecutionKind     `gorm:"size:32;not null" json:"kind"`
	Status      ExecutionStatus   `gorm:"size:32;not null;index" json:"status"`
	IsDryRun    bool              `gorm:"default:false" json:"isDryRun"`
	Description string            `gorm:"type:text" json:"description,omitempty"`
	Error       string            `gorm:"type:text" json:"error,omitempty"`
	Summary     datatypes.JSONMap `gorm:"type:json" json:"summary,omitempty"`
	TriggeredBy string            `gorm:"size:64" json:"triggeredBy,omitempty"`
	TriggeredAt time.Time         `gorm:"not null;index" json:"triggeredAt"`
	FinishedAt  *time.Time        `json:"finishedAt,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// TableName 指定表名
func (ExecutionRequest) TableName() string {
	return "execution_requests"
}

// ItemLogType 审计日志节点类型
type ItemLogType string

const (
	LogTypeTestSuite      ItemLogType = "TestSuite"
	LogTypeTestSuiteBlock ItemLogType = "TestSuiteBlock"
	LogTypeTestCase       ItemLogType = "TestCase"
	LogTypeTestCaseBlock  ItemLogType = "TestCaseBlock"
	LogTypeActionGroup    ItemLogType = "ActionGroup"
	LogTypeAction         ItemLogType = "Action"
)

// ItemLogStatus 审计日志状态
type ItemLogStatus string

const (
	LogRunning ItemLogStatus = "Running"
	LogSuccess ItemLogStatus = "Success"
	LogFailed  ItemLogStatus = "Failed"
)

// ItemLog is one audit record for one executed node. Records form a tree through ParentID
// and are rooted at an execution request.
type ItemLog struct {
	ID                 uint          `gorm:"primaryKey" json:"id"`
	ExecutionRequestID uint          `gorm:"not null;index" json:"executionRequestId"`
	RefID              *string       `gorm:"size:36;index" json:"refId,omitempty"`
	StepID             *string       `gorm:"size:36" json:"stepId,omitempty"`
	ParentID           *uint         `gorm:"index" json:"parentId,omitempty"`
	Type               ItemLogType   `gorm:"size:32;not null;index" json:"type"`
	Status             ItemLogStatus `gorm:"size:16;not null" json:"status"`
	Message            string        `gorm:"type:text" json:"message,omitempty"`
	StartedAt          time.Time     `gorm:"not null" json:"startedAt"`
	FinishedAt         *time.Time    `json:"finishedAt,omitempty"`
	ExecutionTime      int64         `json:"executionTime"` // milliseconds
	CreatedAt          time.Time     `json:"createdAt"`

	// 关联
	ExecutionRequest *ExecutionRequest `gorm:"foreignKey:ExecutionRequestID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (ItemLog) TableName() string {
	return "item_logs"
}

// AttachmentCategory 附件分类
type AttachmentCategory string

const (
	AttachmentEvidence AttachmentCategory = "Evidence"
)

// Attachment points at an object stored in S3-compatible storage.
type Attachment struct {
	ID                 string             `gorm:"primaryKey;size:36" json:"id"`
	Category           AttachmentCategory `gorm:"size:32;not null" json:"category"`
	ExecutionRequestID uint               `gorm:"not null;index" json:"executionRequestId"`
	ItemLogID          uint               `gorm:"not null;index" json:"itemLogId"`
	Bucket             string             `gorm:"size:255;not null" json:"bucket"`
	Path               string             `gorm:"size:1024;not null" json:"path"`
	ContentType        string             `gorm:"size:128" json:"contentType"`
	Size               int64              `json:"size"`
	Metadata           datatypes.JSONMap  `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
}

// TableName 指定表名
func (Attachment) TableName() string {
	return "attachments"
}

// All returns every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Suite{},
		&SuiteBlock{},
		&Case{},
		&CaseBlock{},
		&ActionGroup{},
		&Action{},
		&ExecutionRequest{},
		&ItemLog{},
		&Attachment{},
	}
}
