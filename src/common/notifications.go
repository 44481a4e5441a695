package common

import (
	"context"
	"fmt"
	"log"

	"taskhub/src/lib"
	"taskhub/src/lib/mailer"
	"taskhub/src/membership"
	"taskhub/src/models"
	"taskhub/src/types"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// NotificationStore resolves who a job is about and records the in-app notification.
type NotificationStore interface {
	Recipient(ctx context.Context, scope types.Scope, subjectID uuid.UUID) (*models.User, error)
	ScopeLabel(ctx context.Context, scope types.Scope) (string, error)
	SaveNotification(ctx context.Context, n *models.Notification) error
}

type Notifier struct {
	store NotificationStore
	send  func(*lib.SendMailInput) error
}

func NewNotifier(store NotificationStore, send func(*lib.SendMailInput) error) *Notifier {
	return &Notifier{store: store, send: send}
}

func notifies(name string) bool {
	switch name {
	case membership.JOB_MEMBER_ADDED, membership.JOB_MEMBER_ROLE_UPDATED, membership.JOB_MEMBER_REMOVED, membership.JOB_OWNERSHIP_TRANSFERRED:
		return true
	}
	return false
}

// Handle is the queue consumer entry point.
func (n *Notifier) Handle(payload string) {
	if err := n.Process(context.Background(), payload); err != nil {
		log.Printf("[notifications] Error processing message: %s\n", err.Error())
	}
}

func (n *Notifier) Process(ctx context.Context, payload string) error {
	if !gjson.Valid(payload) {
		return fmt.Errorf("invalid payload")
	}
	name := gjson.Get(payload, "name").String()
	if !notifies(name) {
		return nil
	}
	scopeType, err := types.ParseScopeType(gjson.Get(payload, "scope.type").String())
	if err != nil {
		return err
	}
	scopeID, err := uuid.Parse(gjson.Get(payload, "scope.id").String())
	if err != nil {
		return fmt.Errorf("invalid scope id: %w", err)
	}
	subjectID, err := uuid.Parse(gjson.Get(payload, "payload.subject_id").String())
	if err != nil {
		return fmt.Errorf("invalid subject id: %w", err)
	}
	scope := types.Scope{Type: scopeType, ID: scopeID}

	user, err := n.store.Recipient(ctx, scope, subjectID)
	if err != nil {
		return err
	}
	label, err := n.store.ScopeLabel(ctx, scope)
	if err != nil {
		return err
	}
	role := gjson.Get(payload, "payload.role").String()
	msg := mailer.NewMembershipMessage(name, label, role, mailer.Recipient{Name: user.Name, Email: user.Email})
	if msg == nil {
		return nil
	}

	notification := &models.Notification{
		ID:             uuid.New(),
		RecipientID:    user.ID,
		ReferenceType:  string(scope.Type),
		ReferenceValue: scope.ID.String(),
		Title:          msg.Subject,
		Description:    &msg.Body,
		ActionType:     name,
	}
	if err := n.store.SaveNotification(ctx, notification); err != nil {
		return err
	}
	if user.Email == "" || n.send == nil {
		return nil
	}
	if err := n.send(msg); err != nil {
		log.Printf("[mailer] Error sending message: %s\n", err.Error())
	}
	return nil
}
