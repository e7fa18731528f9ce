package service

import (
	"context"

	"github.com/parthasarathygopu/orca/internal/apperr"
	"github.com/parthasarathygopu/orca/internal/models"
	"github.com/parthasarathygopu/orca/internal/repository"

	"github.com/google/uuid"
)

// ActionGroupService 动作组服务接口
type ActionGroupService interface {
	ListActionGroups(ctx context.Context, appID string) ([]models.ActionGroup, error)
	CreateActionGroup(ctx context.Context, appID string, req *CreateActionGroupRequest) (*models.ActionGroup, error)
	GetActionGroup(ctx context.Context, appID, groupID string) (*models.ActionGroup, error)
	DeleteActionGroup(ctx context.Context, appID, groupID string) error

	InsertAction(ctx context.Context, appID, groupID string, req *ActionRequest) (*models.Action, error)
	MoveAction(ctx context.Context, appID, groupID, actionID string, position int) (*models.Action, error)
	DeleteAction(ctx context.Context, appID, groupID, actionID string) error
}

type actionGroupService struct {
	store *repository.Store
}

// NewActionGroupService creates a new action group service
func NewActionGroupService(store *repository.Store) ActionGroupService {
	return &actionGroupService{store: store}
}

type CreateActionGroupRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Type        models.BlockType `json:"type"` // ActionGroup or Assertion
}

type ActionRequest struct {
	Description string             `json:"description"`
	Kind        models.ActionKind  `json:"kind" binding:"required"`
	DataValue   *string            `json:"dataValue"`
	TargetKind  *models.TargetKind `json:"targetKind"`
	TargetValue *string            `json:"targetValue"`
	Position    *int               `json:"position"`
}

func (s *actionGroupService) ListActionGroups(ctx context.Context, appID string) ([]models.ActionGroup, error) {
	return s.store.ActionGroups.ListByApp(ctx, appID)
}

func (s *actionGroupService) CreateActionGroup(ctx context.Context, appID string, req *CreateActionGroupRequest) (*models.ActionGroup, error) {
	if req.Name == "" {
		return nil, apperr.MissingParameter("name", appID)
	}
	groupType := req.Type
	switch groupType {
	case "":
		groupType = models.BlockTypeActionGroup
	case models.BlockTypeActionGroup, models.BlockTypeAssertion:
	default:
		return nil, apperr.Unsupported("action group type "+string(groupType), appID)
	}
	group := &models.ActionGroup{
		ID:          uuid.NewString(),
		AppID:       appID,
		Name:        req.Name,
		Description: req.Description,
		Type:        groupType,
	}
	if err := s.store.ActionGroups.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// GetActionGroup returns the group with its actions in execution order.
func (s *actionGroupService) GetActionGroup(ctx context.Context, appID, groupID string) (*models.ActionGroup, error) {
	group, err := s.group(ctx, appID, groupID)
	if err != nil {
		return nil, err
	}
	actions, err := s.store.Actions.List(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.Actions = actions
	return group, nil
}

func (s *actionGroupService) DeleteActionGroup(ctx context.Context, appID, groupID string) error {
	if _, err := s.group(ctx, appID, groupID); err != nil {
		return err
	}
	return s.store.ActionGroups.Delete(ctx, groupID)
}

// InsertAction stores an action as authored. Parameters are validated when it runs,
// so a dry run reports the same errors a real run would.
func (s *actionGroupService) InsertAction(ctx context.Context, appID, groupID string, req *ActionRequest) (*models.Action, error) {
	if _, err := s.group(ctx, appID, groupID); err != nil {
		return nil, err
	}
	if req.Kind == "" {
		return nil, apperr.MissingParameter("kind", groupID)
	}
	action := &models.Action{
		Description: req.Description,
		Kind:        req.Kind,
		DataValue:   req.DataValue,
		TargetKind:  req.TargetKind,
		TargetValue: req.TargetValue,
	}
	return s.store.Actions.Insert(ctx, groupID, action, req.Position)
}

func (s *actionGroupService) MoveAction(ctx context.Context, appID, groupID, actionID string, position int) (*models.Action, error) {
	if err := s.ownsAction(ctx, appID, groupID, actionID); err != nil {
		return nil, err
	}
	return s.store.Actions.Move(ctx, actionID, position)
}

func (s *actionGroupService) DeleteAction(ctx context.Context, appID, groupID, actionID string) error {
	if err := s.ownsAction(ctx, appID, groupID, actionID); err != nil {
		return err
	}
	return s.store.Actions.Delete(ctx, actionID)
}

func (s *actionGroupService) group(ctx context.Context, appID, groupID string) (*models.ActionGroup, error) {
	group, err := s.store.ActionGroups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.AppID != appID {
		return nil, apperr.NotFound("action group", groupID)
	}
	return group, nil
}

func (s *actionGroupService) ownsAction(ctx context.Context, appID, groupID, actionID string) error {
	if _, err := s.group(ctx, appID, groupID); err != nil {
		return err
	}
	action, err := s.store.Actions.Get(ctx, actionID)
	if err != nil {
		return err
	}
	if action.ActionGroupID != groupID {
		return apperr.NotFound("action", actionID)
	}
	return nil
}
