package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"time"

	"github.com/educert/backend/core"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		// CreateUser inserts the base row and the role subtype row in a
		// single transaction.
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name or User.Email.
		FilterUsers(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// UpdateUser updates the base row and the role subtype row in a
		// single transaction.
		UpdateUser(ctx context.Context, usr User) (User, error)
		// DeleteUser removes the subtype row first, then the base row, in a
		// single transaction.
		DeleteUser(ctx context.Context, id int) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	secretKey = conf.SecretKey
	passwordResetTimeoutDelta = conf.PasswordResetTimeoutDelta
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *Service) checkUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates the User and its role subtype row atomically and sends
// a welcome email.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Email:     nu.Email,
		Name:      nu.Name,
		Phone:     nu.Phone,
		Role:      nu.Role,
		IsActive:  true,
		LastLogin: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	switch nu.Role {
	case RoleStudent:
		usr.Student = &StudentProfile{EducationLevel: nu.EducationLevel, Biography: nu.Biography}
	case RoleInstructor:
		usr.Instructor = &InstructorProfile{Description: nu.Description, WorkExperience: nu.WorkExperience}
	case RoleAdministrator:
		if nu.AccessLevel == "" {
			nu.AccessLevel = AccessLevelStandard
		}
		usr.Administrator = &AdministratorProfile{Department: nu.Department, AccessLevel: nu.AccessLevel}
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Welcome to " + svc.conf.AppName,
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour %s account has been created. You can now sign in at %s.",
			usr.Name, svc.conf.AppName, svc.conf.FrontendBaseURL),
	})
	return usr, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	return svc.repo.FilterUsers(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// UpdateProfile applies the base fields and the subtype fields matching the
// user's role, in one transaction.
func (svc *Service) UpdateProfile(ctx context.Context, origUsr User, up UpdateProfile) (User, error) {
	usr := origUsr
	usr.Name = up.Name
	usr.Phone = up.Phone
	usr.UpdatedAt = time.Now().UTC()
	switch usr.Role {
	case RoleStudent:
		usr.Student = &StudentProfile{EducationLevel: up.EducationLevel, Biography: up.Biography}
	case RoleInstructor:
		usr.Instructor = &InstructorProfile{Description: up.Description, WorkExperience: up.WorkExperience}
	case RoleAdministrator:
		usr.Administrator = &AdministratorProfile{Department: up.Department, AccessLevel: up.AccessLevel}
	}
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) ChangePassword(ctx context.Context, usr User, newPwd string) (User, error) {
	if err := usr.SetPassword(newPwd); err != nil {
		return User{}, err
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteUser(ctx, id)
}

// RequestPasswordReset emails a signed, time-limited reset link to the user.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	token := makeToken(usr)
	link := fmt.Sprintf("%s/password-reset?uid=%s&token=%s", svc.conf.FrontendBaseURL, EncodeUID(usr), token)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Password Reset",
		Body: fmt.Sprintf(
			"Hi %s,\n\nFollow this link to reset your password:\n%s\n\n"+
				"If you did not request a password reset, you can safely ignore this email.",
			usr.Name, link),
	})
	return nil
}

// ResetPassword validates the reset token and sets the new password.
func (svc *Service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	id, err := decodeUID(data.UID)
	if err != nil {
		return errInvalidToken
	}
	uid, err := strconv.Atoi(id)
	if err != nil {
		return errInvalidToken
	}
	usr, err := svc.GetByID(ctx, uid)
	if err != nil {
		return err
	}
	if err = verifyToken(usr, data.Token); err != nil {
		return err
	}
	if _, err = svc.ChangePassword(ctx, usr, data.Password); err != nil {
		return err
	}
	return nil
}
