package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/educert/backend/core"
	"github.com/educert/backend/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	query := `SELECT EXISTS (SELECT 1 FROM "user" WHERE email = ?`
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]int, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		query += ` AND id NOT IN (?)`
		args = append(args, ids)
	}
	query += `)`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return errors.Wrap(err, "building uniqueness query")
	}

	var exists bool
	if err = repo.db.GetContext(ctx, &exists, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowxContext(ctx,
		`INSERT INTO "user" (email, name, phone, role, password_hash, is_active, last_login, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		usr.Email, usr.Name, usr.Phone, usr.Role, usr.PasswordHash, usr.IsActive,
		usr.LastLogin, usr.CreatedAt, usr.UpdatedAt,
	).Scan(&usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}

	if err = repo.insertProfile(ctx, tx, usr); err != nil {
		return user.User{}, err
	}
	if err = tx.Commit(); err != nil {
		return user.User{}, errors.Wrap(err, "committing transaction")
	}
	return usr, nil
}

func (repo userRepository) insertProfile(ctx context.Context, tx *sqlx.Tx, usr user.User) error {
	switch usr.Role {
	case user.RoleStudent:
		prof := usr.Student
		if prof == nil {
			prof = &user.StudentProfile{}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO student (id, education_level, biography) VALUES ($1, $2, $3)`,
			usr.ID, prof.EducationLevel, prof.Biography)
		return errors.Wrap(err, "inserting student profile")
	case user.RoleInstructor:
		prof := usr.Instructor
		if prof == nil {
			prof = &user.InstructorProfile{}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO instructor (id, description, work_experience) VALUES ($1, $2, $3)`,
			usr.ID, prof.Description, prof.WorkExperience)
		return errors.Wrap(err, "inserting instructor profile")
	case user.RoleAdministrator:
		prof := usr.Administrator
		if prof == nil {
			prof = &user.AdministratorProfile{AccessLevel: user.AccessLevelStandard}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO administrator (id, department, access_level) VALUES ($1, $2, $3)`,
			usr.ID, prof.Department, prof.AccessLevel)
		return errors.Wrap(err, "inserting administrator profile")
	}
	return nil
}

func (repo userRepository) attachProfile(ctx context.Context, usr *user.User) error {
	switch usr.Role {
	case user.RoleStudent:
		var prof user.StudentProfile
		err := repo.db.GetContext(ctx, &prof,
			`SELECT education_level, biography FROM student WHERE id = $1`, usr.ID)
		if err != nil && err != sql.ErrNoRows {
			return errors.Wrap(err, "getting student profile")
		}
		usr.Student = &prof
	case user.RoleInstructor:
		var prof user.InstructorProfile
		err := repo.db.GetContext(ctx, &prof,
			`SELECT description, work_experience FROM instructor WHERE id = $1`, usr.ID)
		if err != nil && err != sql.ErrNoRows {
			return errors.Wrap(err, "getting instructor profile")
		}
		usr.Instructor = &prof
	case user.RoleAdministrator:
		var prof user.AdministratorProfile
		err := repo.db.GetContext(ctx, &prof,
			`SELECT department, access_level FROM administrator WHERE id = $1`, usr.ID)
		if err != nil && err != sql.ErrNoRows {
			return errors.Wrap(err, "getting administrator profile")
		}
		usr.Administrator = &prof
	}
	return nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var users []user.User
	if err := repo.db.SelectContext(ctx, &users, `SELECT * FROM "user"`); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return users, nil
}

func (repo userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	var conds []string
	var args []interface{}

	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		conds = append(conds, "(name ILIKE ? OR email ILIKE ?)")
		args = append(args, val, val)
	}
	if filter.Role != "" {
		conds = append(conds, "role = ?")
		args = append(args, filter.Role)
	}
	if filter.IsActive != nil {
		conds = append(conds, "is_active = ?")
		args = append(args, *filter.IsActive)
	}
	if !filter.CreatedFrom.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, filter.CreatedFrom.UTC())
	}
	if !filter.CreatedTo.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, filter.CreatedTo.UTC())
	}

	query := `SELECT * FROM "user"`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		query += " ORDER BY " + strings.Join(orderList, ", ")
	}

	var users []user.User
	if err := repo.db.SelectContext(ctx, &users, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return users, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, `SELECT * FROM "user" WHERE id = $1`, id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by ID")
	}
	if err := repo.attachProfile(ctx, &usr); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, `SELECT * FROM "user" WHERE email = $1`, email); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by email")
	}
	if err := repo.attachProfile(ctx, &usr); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE "user" SET email = $1, name = $2, phone = $3, password_hash = $4,
		 is_active = $5, last_login = $6, updated_at = $7 WHERE id = $8`,
		usr.Email, usr.Name, usr.Phone, usr.PasswordHash,
		usr.IsActive, usr.LastLogin, usr.UpdatedAt, usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}

	if err = repo.updateProfile(ctx, tx, usr); err != nil {
		return user.User{}, err
	}
	if err = tx.Commit(); err != nil {
		return user.User{}, errors.Wrap(err, "committing transaction")
	}
	return usr, nil
}

func (repo userRepository) updateProfile(ctx context.Context, tx *sqlx.Tx, usr user.User) error {
	switch {
	case usr.Role == user.RoleStudent && usr.Student != nil:
		_, err := tx.ExecContext(ctx,
			`UPDATE student SET education_level = $1, biography = $2 WHERE id = $3`,
			usr.Student.EducationLevel, usr.Student.Biography, usr.ID)
		return errors.Wrap(err, "updating student profile")
	case usr.Role == user.RoleInstructor && usr.Instructor != nil:
		_, err := tx.ExecContext(ctx,
			`UPDATE instructor SET description = $1, work_experience = $2 WHERE id = $3`,
			usr.Instructor.Description, usr.Instructor.WorkExperience, usr.ID)
		return errors.Wrap(err, "updating instructor profile")
	case usr.Role == user.RoleAdministrator && usr.Administrator != nil:
		_, err := tx.ExecContext(ctx,
			`UPDATE administrator SET department = $1, access_level = $2 WHERE id = $3`,
			usr.Administrator.Department, usr.Administrator.AccessLevel, usr.ID)
		return errors.Wrap(err, "updating administrator profile")
	}
	return nil
}

func (repo userRepository) DeleteUser(ctx context.Context, id int) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	// subtype row goes first to satisfy the foreign key
	for _, table := range []string{"student", "instructor", "administrator"} {
		if _, err = tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id); err != nil {
			return errors.Wrapf(err, "deleting %s profile", table)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM "user" WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}
