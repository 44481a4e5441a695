package db

import (
	"context"
	"fmt"

	"taskhub/src/errs"
	"taskhub/src/models"
	"taskhub/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationStore backs the notification consumer. It reads outside any membership transaction.
type NotificationStore struct {
	db *gorm.DB
}

func NewNotificationStore(conn *gorm.DB) *NotificationStore {
	return &NotificationStore{db: conn}
}

// Recipient resolves the user behind a membership subject.
func (s *NotificationStore) Recipient(ctx context.Context, scope types.Scope, subjectID uuid.UUID) (*models.User, error) {
	var user models.User
	q := s.db.WithContext(ctx)
	if scope.Type == types.SCOPE_WORKSPACE {
		q = q.Where("id = ?", subjectID)
	} else {
		q = q.Joins("JOIN workspace_members ON workspace_members.user_id = users.id").
			Where("workspace_members.id = ?", subjectID)
	}
	if err := q.First(&user).Error; err != nil {
		return nil, notFound(err, errs.ErrUserNotFound)
	}
	return &user, nil
}

func (s *NotificationStore) ScopeLabel(ctx context.Context, scope types.Scope) (string, error) {
	var name string
	var model any
	switch scope.Type {
	case types.SCOPE_WORKSPACE:
		model = &models.Workspace{}
	case types.SCOPE_TEAM:
		model = &models.Team{}
	case types.SCOPE_PROJECT:
		model = &models.Project{}
	default:
		return "", fmt.Errorf("unknown scope type %q", scope.Type)
	}
	err := s.db.WithContext(ctx).Model(model).Select("name").Where("id = ?", scope.ID).Scan(&name).Error
	if err != nil {
		return "", err
	}
	if name == "" {
		return fmt.Sprintf("%s %s", scope.Type, scope.ID), nil
	}
	return fmt.Sprintf("%s %s", scope.Type, name), nil
}

func (s *NotificationStore) SaveNotification(ctx context.Context, n *models.Notification) error {
	return s.db.WithContext(ctx).Create(n).Error
}
