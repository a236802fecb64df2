package notification

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/educert/backend/core"
)

type Notification struct {
	ID      int       `json:"id" db:"id"`
	Title   string    `json:"title" db:"title"`
	Message string    `json:"message" db:"message"`
	Date    time.Time `json:"date" db:"date"` // UTC
	IsRead  bool      `json:"isRead" db:"is_read"`
	UserID  int       `json:"userId" db:"user_id"`
}

// NewNotification is a broadcast addressed to a set of users; an empty
// Recipients list means every active user.
type NewNotification struct {
	Title      string `json:"title" validate:"required"`
	Message    string `json:"message" validate:"required"`
	Recipients []int  `json:"recipients"`
	SendEmail  bool   `json:"sendEmail"`
}

func (nn *NewNotification) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	return validate.Struct(nn)
}
