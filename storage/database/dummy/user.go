package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/gurujilabs/guruji/core"
	"github.com/gurujilabs/guruji/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.table))
	for _, u := range repo.db.table {
		users = append(users, *u)
	}
	return users
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]bool, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded[usr.ID] = true
	}

	for _, usr := range repo.query() {
		if excluded[usr.ID] {
			continue
		}
		if usr.Username == username {
			return user.ErrUsernameExists
		}
		if usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.query() {
		if usr.Username == username {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.query() {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.query() {
		if (usr.Username == username) || (usr.Email == username) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := repo.query()

	// users with search keyword matching any Name, Username or Email ?
	if filter.Search != "" {
		var filtered []user.User
		for _, u := range users {
			if strings.Contains(strings.ToLower(u.Username), strings.ToLower(filter.Search)) ||
				strings.Contains(strings.ToLower(u.Email), strings.ToLower(filter.Search)) ||
				strings.Contains(strings.ToLower(u.Name), strings.ToLower(filter.Search)) {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}
	// users with any of the specified roles
	if users != nil && len(filter.Roles) > 0 {
		var filtered []user.User
		for _, u := range users {
			for _, r := range filter.Roles {
				if u.RoleStartsWith(r) {
					filtered = append(filtered, u)
					break
				}
			}
		}
		users = filtered
	}
	if users != nil && filter.IsActive != nil {
		var filtered []user.User
		for _, u := range users {
			if u.Active() == *filter.IsActive {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}
	if users != nil && !filter.CreatedFrom.IsZero() {
		var filtered []user.User
		timeUTC := filter.CreatedFrom.UTC()
		for _, u := range users {
			if u.CreatedAt.Equal(timeUTC) || u.CreatedAt.After(timeUTC) {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}
	if users != nil && !filter.CreatedTo.IsZero() {
		var filtered []user.User
		timeUTC := filter.CreatedTo.UTC()
		for _, u := range users {
			if u.CreatedAt.Before(timeUTC) || u.CreatedAt.Equal(timeUTC) {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}

	sortUsers(users, ordering)
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	return repo.update(usr, isActive)
}

// update applies set fields only. Callers must hold the write lock.
func (repo *userRepository) update(usr user.User, isActive *bool) (user.User, error) {
	origUsr, ok := repo.db.table[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
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

	repo.db.table[usr.ID] = origUsr
	return *origUsr, nil
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[usr.ID]; ok {
		return repo.update(usr, usr.IsActive)
	}
	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func sortUsers(users []user.User, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
		return
	}
	ord := ordering[0]
	sort.Slice(users, func(i, j int) bool {
		var less bool
		switch ord.Field {
		case "name":
			less = users[i].Name < users[j].Name
		case "username":
			less = users[i].Username < users[j].Username
		case "email":
			less = users[i].Email < users[j].Email
		default:
			less = users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		if !ord.Ascending {
			return !less
		}
		return less
	})
}
