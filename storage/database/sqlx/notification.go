package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/educert/backend/core/notification"
)

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo notificationRepository) CreateNotifications(ctx context.Context, notifs []notification.Notification) ([]notification.Notification, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for i := range notifs {
		err = tx.QueryRowxContext(ctx,
			`INSERT INTO notification (title, message, date, is_read, user_id)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			notifs[i].Title, notifs[i].Message, notifs[i].Date, notifs[i].IsRead, notifs[i].UserID,
		).Scan(&notifs[i].ID)
		if err != nil {
			return nil, errors.Wrap(err, "inserting notification")
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing transaction")
	}
	return notifs, nil
}

func (repo notificationRepository) GetNotificationByID(ctx context.Context, id int) (notification.Notification, error) {
	var notif notification.Notification
	if err := repo.db.GetContext(ctx, &notif, `SELECT * FROM notification WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "finding notification by ID")
	}
	return notif, nil
}

func (repo notificationRepository) QueryUserNotifications(ctx context.Context, userID int) ([]notification.Notification, error) {
	var notifs []notification.Notification
	err := repo.db.SelectContext(ctx, &notifs,
		`SELECT * FROM notification WHERE user_id = $1 ORDER BY date DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying user notifications")
	}
	return notifs, nil
}

func (repo notificationRepository) UpdateNotification(ctx context.Context, notif notification.Notification) (notification.Notification, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE notification SET is_read = $1 WHERE id = $2`, notif.IsRead, notif.ID)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "updating notification")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notification.Notification{}, notification.ErrNotFound
	}
	return notif, nil
}
