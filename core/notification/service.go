package notification

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/educert/backend/core"
	"github.com/educert/backend/core/user"
)

// ErrNotFound is returned when a requested notification does not exist.
var ErrNotFound = core.NewNotFoundError("notification not found")

type (
	Repository interface {
		CreateNotifications(ctx context.Context, notifs []Notification) ([]Notification, error)
		GetNotificationByID(ctx context.Context, id int) (Notification, error)
		QueryUserNotifications(ctx context.Context, userID int) ([]Notification, error)
		UpdateNotification(ctx context.Context, notif Notification) (Notification, error)
	}

	userProvider interface {
		QueryAll(ctx context.Context) ([]user.User, error)
		GetByID(ctx context.Context, id int) (user.User, error)
	}

	Service struct {
		repo    Repository
		usrSvc  userProvider
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, usrSvc *user.Service, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, usrSvc: usrSvc, mailSvc: mailSvc}
}

// Broadcast fans a message out to the recipients (or to every active user when
// none are named), optionally mirroring it by email.
func (svc *Service) Broadcast(ctx context.Context, nn NewNotification) ([]Notification, error) {
	var recipients []user.User
	if len(nn.Recipients) == 0 {
		usrs, err := svc.usrSvc.QueryAll(ctx)
		if err != nil {
			return nil, err
		}
		for _, usr := range usrs {
			if usr.IsActive {
				recipients = append(recipients, usr)
			}
		}
	} else {
		for _, id := range nn.Recipients {
			usr, err := svc.usrSvc.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			recipients = append(recipients, usr)
		}
	}

	now := time.Now().UTC()
	notifs := make([]Notification, 0, len(recipients))
	for _, usr := range recipients {
		notifs = append(notifs, Notification{
			Title:   nn.Title,
			Message: nn.Message,
			Date:    now,
			UserID:  usr.ID,
		})
	}
	notifs, err := svc.repo.CreateNotifications(ctx, notifs)
	if err != nil {
		return nil, errors.Wrap(err, "creating notifications")
	}

	if nn.SendEmail {
		msgs := make([]*core.EmailMessage, 0, len(recipients))
		for _, usr := range recipients {
			msgs = append(msgs, &core.EmailMessage{
				To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
				Subject: nn.Title,
				Body:    nn.Message,
			})
		}
		svc.mailSvc.SendMessages(msgs...)
	}
	return notifs, nil
}

func (svc *Service) QueryByUser(ctx context.Context, userID int) ([]Notification, error) {
	notifs, err := svc.repo.QueryUserNotifications(ctx, userID)
	return notifs, errors.Wrap(err, "querying user notifications")
}

func (svc *Service) GetByID(ctx context.Context, id int) (Notification, error) {
	return svc.repo.GetNotificationByID(ctx, id)
}

// MarkRead flags the notification as read.
func (svc *Service) MarkRead(ctx context.Context, notif Notification) (Notification, error) {
	notif.IsRead = true
	notif, err := svc.repo.UpdateNotification(ctx, notif)
	return notif, errors.Wrap(err, "updating notification")
}
