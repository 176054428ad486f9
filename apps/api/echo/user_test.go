package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurujilabs/guruji/core/user"
)

func TestUserAPI_login(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "std1", "Asha Gurung", "asha", user.StudentRoles)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"valid credentials", `{"username": "asha", "password": "LeT@Pa55"}`, http.StatusOK},
		{"email as username", `{"username": "asha@test.test", "password": "LeT@Pa55"}`, http.StatusOK},
		{"username is case-insensitive", `{"username": "AshA", "password": "LeT@Pa55"}`, http.StatusOK},
		{"wrong password", `{"username": "asha", "password": "nope"}`, http.StatusBadRequest},
		{"unknown user", `{"username": "ghost", "password": "LeT@Pa55"}`, http.StatusBadRequest},
		{"missing fields", `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.request(http.MethodPost, "/v1/users/login", "", []byte(tt.body))
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				var res LoginResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
				assert.NotEmpty(t, res.Token)
			}
		})
	}
}

func TestUserAPI_login_deactivated(t *testing.T) {
	app := newTestApp(t)
	usr := app.createUser(t, "std1", "Asha Gurung", "asha", user.StudentRoles)
	usr.SetActive(false)
	_, err := app.usrRepo.UpdateUser(context.Background(), usr, usr.IsActive)
	require.NoError(t, err)

	rec := app.request(http.MethodPost, "/v1/users/login", "",
		[]byte(`{"username": "asha", "password": "LeT@Pa55"}`))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUserAPI_query_adminOnly(t *testing.T) {
	app := newTestApp(t)
	student := app.createUser(t, "std1", "Asha Gurung", "asha", user.StudentRoles)
	admin := app.createUser(t, "adm1", "Admin", "admin", user.AdminRoles)

	rec := app.request(http.MethodGet, "/v1/users", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.request(http.MethodGet, "/v1/users", app.getToken(t, student))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.request(http.MethodGet, "/v1/users", app.getToken(t, admin))
	require.Equal(t, http.StatusOK, rec.Code)
	var users []user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 2)
}

func TestUserAPI_retrieve(t *testing.T) {
	app := newTestApp(t)
	student := app.createUser(t, "std1", "Asha Gurung", "asha", user.StudentRoles)
	other := app.createUser(t, "std2", "Bibek Karki", "bibek", user.StudentRoles)
	admin := app.createUser(t, "adm1", "Admin", "admin", user.AdminRoles)

	// users can fetch themselves
	rec := app.request(http.MethodGet, "/v1/users/"+student.ID, app.getToken(t, student))
	require.Equal(t, http.StatusOK, rec.Code)
	var got user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, student.ID, got.ID)

	// but not each other
	rec = app.request(http.MethodGet, "/v1/users/"+other.ID, app.getToken(t, student))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// admins can fetch anyone
	rec = app.request(http.MethodGet, "/v1/users/"+other.ID, app.getToken(t, admin))
	assert.Equal(t, http.StatusOK, rec.Code)
}
