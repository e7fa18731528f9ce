package service

import (
	"context"

	"github.com/parthasarathygopu/orca/internal/apperr"
	"github.com/parthasarathygopu/orca/internal/models"
	"github.com/parthasarathygopu/orca/internal/repository"
)

// HistoryService 执行历史查询接口
type HistoryService interface {
	ListExecutions(ctx context.Context, limit, offset int) ([]models.ExecutionRequest, int64, error)
	GetExecution(ctx context.Context, id uint) (*models.ExecutionRequest, error)
	ListLogs(ctx context.Context, id uint) ([]models.ItemLog, error)
	LogTree(ctx context.Context, id uint) ([]*LogNode, error)
	LogChildren(ctx context.Context, id uint, logType models.ItemLogType, stepID string) ([]models.ItemLog, error)
	ListAttachments(ctx context.Context, id uint) ([]models.Attachment, error)
}

// LogNode is an ItemLog with its children attached.
type LogNode struct {
	models.ItemLog
	Children []*LogNode `json:"children,omitempty"`
}

// childTypes are the log types LogChildren returns.
var childTypes = []models.ItemLogType{
	models.LogTypeTestCase,
	models.LogTypeTestCaseBlock,
	models.LogTypeActionGroup,
	models.LogTypeAction,
}

type historyService struct {
	store *repository.Store
}

// NewHistoryService creates a new history service
func NewHistoryService(store *repository.Store) HistoryService {
	return &historyService{store: store}
}

func (s *historyService) ListExecutions(ctx context.Context, limit, offset int) ([]models.ExecutionRequest, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.Executions.List(ctx, limit, offset)
}

func (s *historyService) GetExecution(ctx context.Context, id uint) (*models.ExecutionRequest, error) {
	return s.store.Executions.GetByID(ctx, id)
}

func (s *historyService) ListLogs(ctx context.Context, id uint) ([]models.ItemLog, error) {
	if _, err := s.store.Executions.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ItemLogs.ListByExecution(ctx, id)
}

// LogTree rebuilds the log hierarchy of a request from parent pointers. Logs whose
// parent is missing are returned as roots.
func (s *historyService) LogTree(ctx context.Context, id uint) ([]*LogNode, error) {
	logs, err := s.ListLogs(ctx, id)
	if err != nil {
		return nil, err
	}

	nodes := make(map[uint]*LogNode, len(logs))
	for i := range logs {
		nodes[logs[i].ID] = &LogNode{ItemLog: logs[i]}
	}
	var roots []*LogNode
	for i := range logs {
		node := nodes[logs[i].ID]
		if logs[i].ParentID != nil {
			if parent, ok := nodes[*logs[i].ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}

// LogChildren finds the log of logType written for stepID and returns its direct
// children.
func (s *historyService) LogChildren(ctx context.Context, id uint, logType models.ItemLogType, stepID string) ([]models.ItemLog, error) {
	if stepID == "" {
		return nil, apperr.MissingParameter("step_id", "")
	}
	parent, err := s.store.ItemLogs.FindByStep(ctx, id, logType, stepID)
	if err != nil {
		return nil, err
	}
	return s.store.ItemLogs.ListChildren(ctx, id, parent.ID, childTypes...)
}

func (s *historyService) ListAttachments(ctx context.Context, id uint) ([]models.Attachment, error) {
	if _, err := s.store.Executions.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Attachments.ListByExecution(ctx, id)
}
