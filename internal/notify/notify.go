// Package notify dispatches member notifications such as overdue reminders.
package notify

import (
	"context"
	"errors"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"library_management/internal/models"
	"library_management/internal/repositories"
)

const ChannelEmail = "email"

var ErrNoRecipient = errors.New("notification has no recipient")

// Message is a templated email. Rendering the template is left to the mail
// relay that drains the outbox.
type Message struct {
	Recipient string
	Subject   string
	Template  string
	Args      map[string]any
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// OutboxNotifier stores each message as a Notification row.
type OutboxNotifier struct {
	db   *gorm.DB
	repo repositories.NotificationRepository
}

func NewOutboxNotifier(db *gorm.DB, repo repositories.NotificationRepository) *OutboxNotifier {
	return &OutboxNotifier{db: db, repo: repo}
}

func (n *OutboxNotifier) Send(ctx context.Context, msg Message) error {
	if msg.Recipient == "" {
		return ErrNoRecipient
	}
	payload, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(msg.Args)
	if err != nil {
		return err
	}
	return n.repo.Create(n.db.WithContext(ctx), &models.Notification{
		Channel:   ChannelEmail,
		Recipient: msg.Recipient,
		Subject:   msg.Subject,
		Template:  msg.Template,
		Payload:   datatypes.JSON(payload),
	})
}

// LogNotifier only logs messages. Useful when no relay is deployed.
type LogNotifier struct {
	log logrus.FieldLogger
}

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	if msg.Recipient == "" {
		return ErrNoRecipient
	}
	n.log.WithFields(logrus.Fields{
		"recipient": msg.Recipient,
		"template":  msg.Template,
	}).Infof("notify: %s", msg.Subject)
	return nil
}
