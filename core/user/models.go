package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/educert/backend/core"
)

// Roles. A user's role is fixed at registration and gates all
// authorization checks.
const (
	RoleStudent       = "Student"
	RoleInstructor    = "Instructor"
	RoleAdministrator = "Administrator"
)

var AllRoles = []string{RoleStudent, RoleInstructor, RoleAdministrator}

// Administrator access levels.
const (
	AccessLevelStandard = "Standard"
	AccessLevelFull     = "Full"
)

type (
	// StudentProfile, InstructorProfile and AdministratorProfile are the
	// role-specific subtype rows sharing the User's primary key. Exactly one
	// of them exists per user; it is created and deleted in the same
	// transaction as the base row.
	StudentProfile struct {
		EducationLevel string `json:"educationLevel" db:"education_level"`
		Biography      string `json:"biography" db:"biography"`
	}

	InstructorProfile struct {
		Description    string `json:"description" db:"description"`
		WorkExperience int    `json:"workExperience" db:"work_experience"`
	}

	AdministratorProfile struct {
		Department  string `json:"department" db:"department"`
		AccessLevel string `json:"accessLevel" db:"access_level"`
	}

	User struct {
		ID           int       `json:"id" db:"id"`
		Email        string    `json:"email" db:"email"`
		Name         string    `json:"name" db:"name"`
		Phone        string    `json:"phone" db:"phone"`
		Role         string    `json:"role" db:"role"`
		PasswordHash []byte    `json:"-" db:"password_hash"`
		IsActive     bool      `json:"isActive" db:"is_active"`
		LastLogin    time.Time `json:"lastLogin" db:"last_login"` // UTC
		CreatedAt    time.Time `json:"createdAt" db:"created_at"` // UTC
		UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"` // UTC

		Student       *StudentProfile       `json:"student,omitempty" db:"-"`
		Instructor    *InstructorProfile    `json:"instructor,omitempty" db:"-"`
		Administrator *AdministratorProfile `json:"administrator,omitempty" db:"-"`
	}
)

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdministrator
}

func (u *User) IsInstructor() bool {
	return u.Role == RoleInstructor
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// NewUser contains information needed to register a new User.
// Subtype fields are picked according to Role; the rest are ignored.
type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role" validate:"required,usertype"`

	// Student
	EducationLevel string `json:"educationLevel"`
	Biography      string `json:"biography"`
	// Instructor
	Description    string `json:"description"`
	WorkExperience int    `json:"workExperience"`
	// Administrator
	Department  string `json:"department"`
	AccessLevel string `json:"accessLevel"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc *Service) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Name = core.CleanString(nu.Name)
	nu.Role = core.CleanString(nu.Role)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(nu.Email)
}

// UpdateProfile defines what information may be provided to modify an
// existing User. The role is immutable; subtype fields matching the user's
// role are applied, the rest are ignored.
type UpdateProfile struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`

	EducationLevel string `json:"educationLevel"`
	Biography      string `json:"biography"`
	Description    string `json:"description"`
	WorkExperience int    `json:"workExperience"`
	Department     string `json:"department"`
	AccessLevel    string `json:"accessLevel"`
}

func (up *UpdateProfile) Validate(origUsr User, validate *validator.Validate) error {
	name := core.CleanString(up.Name)
	if name != "" {
		up.Name = name
	} else {
		up.Name = origUsr.Name
	}
	if up.Phone == "" {
		up.Phone = origUsr.Phone
	}
	return validate.Struct(up)
}

type ChangePassword struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

func (cp ChangePassword) Validate(validate *validator.Validate) error {
	return validate.Struct(cp)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Role        string    `query:"role"`
	IsActive    *bool     `query:"isActive"`
	CreatedFrom time.Time `query:"createdFrom"`
	CreatedTo   time.Time `query:"createdTo"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Role == "" && qf.IsActive == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role)
}
