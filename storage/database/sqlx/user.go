package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/gurujilabs/guruji/core"
	"github.com/gurujilabs/guruji/core/user"
)

type userRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    sql.NullTime   `db:"last_login"`
}

func (r userRow) toUser() user.User {
	usr := user.User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username,
		Email:        r.Email,
		Roles:        r.Roles,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	usr.SetActive(r.IsActive)
	if r.LastLogin.Valid {
		usr.LastLogin = r.LastLogin.Time
	}
	return usr
}

func newUserRow(usr user.User) userRow {
	row := userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     usr.Username,
		Email:        usr.Email,
		IsActive:     usr.Active(),
		Roles:        pq.StringArray(usr.Roles),
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
	}
	if !usr.LastLogin.IsZero() {
		row.LastLogin = sql.NullTime{Time: usr.LastLogin, Valid: true}
	}
	return row
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	args := []interface{}{username, email}
	q := `SELECT username, email FROM "user" WHERE (username = $1 OR email = $2)`
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		args = append(args, pq.Array(ids))
		q += fmt.Sprintf(" AND id != ALL($%d)", len(args))
	}

	rows, err := repo.db.QueryxContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var uname, mail string
		if err = rows.Scan(&uname, &mail); err != nil {
			return errors.Wrap(err, "checking username uniqueness")
		}
		if uname == username {
			return user.ErrUsernameExists
		}
		if mail == email {
			return user.ErrEmailExists
		}
	}
	return errors.Wrap(rows.Err(), "checking username uniqueness")
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `
INSERT INTO "user" (id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login)
VALUES (:id, :name, :username, :email, :is_active, :roles, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExecContext(ctx, q, newUserRow(usr)); err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM "user" ORDER BY created_at DESC`); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return toUsers(rows), nil
}

func (repo *userRepository) getUser(ctx context.Context, q string, args ...interface{}) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUser(ctx, `SELECT * FROM "user" WHERE id = $1`, id)
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, `SELECT * FROM "user" WHERE username = $1`, username)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, `SELECT * FROM "user" WHERE email = $1`, email)
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, `SELECT * FROM "user" WHERE username = $1 OR email = $1`, username)
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %[1]s OR username ILIKE %[1]s OR email ILIKE %[1]s)", p))
	}
	if len(filter.Roles) > 0 {
		var roleConds []string
		for _, role := range filter.Roles {
			roleConds = append(roleConds, fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(roles) r WHERE r LIKE %s)", arg(role+"%")))
		}
		conds = append(conds, "("+strings.Join(roleConds, " OR ")+")")
	}
	if filter.IsActive != nil {
		conds = append(conds, "is_active = "+arg(*filter.IsActive))
	}
	if !filter.CreatedFrom.IsZero() {
		conds = append(conds, "created_at >= "+arg(filter.CreatedFrom.UTC()))
	}
	if !filter.CreatedTo.IsZero() {
		conds = append(conds, "created_at <= "+arg(filter.CreatedTo.UTC()))
	}

	q := `SELECT * FROM "user"`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY " + orderBy(ordering, "created_at DESC")

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return toUsers(rows), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	origUsr, err := repo.GetUserByID(ctx, usr.ID)
	if err != nil {
		return user.User{}, err
	}

	// only save set fields
	if usr.Roles != nil {
		origUsr.Roles = usr.Roles
	}
	if usr.PasswordHash != nil {
		origUsr.PasswordHash = usr.PasswordHash
	}
	if isActive != nil {
		origUsr.SetActive(*isActive)
	}
	origUsr.Name = usr.Name
	origUsr.Username = usr.Username
	origUsr.Email = usr.Email
	origUsr.UpdatedAt = usr.UpdatedAt
	if !usr.LastLogin.IsZero() {
		origUsr.LastLogin = usr.LastLogin
	}

	q := `
UPDATE "user"
SET name = :name, username = :username, email = :email, is_active = :is_active,
    roles = :roles, password_hash = :password_hash, updated_at = :updated_at, last_login = :last_login
WHERE id = :id`
	if _, err = repo.db.NamedExecContext(ctx, q, newUserRow(origUsr)); err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return origUsr, nil
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	updated, err := repo.UpdateUser(ctx, usr, usr.IsActive)
	if err == nil {
		return updated, nil
	}
	if errors.Cause(err) != user.ErrNotFound {
		return user.User{}, err
	}
	return repo.CreateUser(ctx, usr)
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM "user" WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}

func toUsers(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users
}

// orderBy renders an ORDER BY clause body, falling back to def when no
// ordering was requested.
func orderBy(ordering []core.DBOrdering, def string) string {
	if len(ordering) == 0 {
		return def
	}
	parts := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		parts = append(parts, ord.String())
	}
	return strings.Join(parts, ", ")
}
