package echoapi_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jnanisc/backend/core/user"
	emailsvc "github.com/jnanisc/backend/services/email"
)

type ack struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

func Test_userApi_query(t *testing.T) {
	server := setup(t)

	admin := createUser(t, "Admin", "admin@test.cd", "s3cr3tWord", true, user.DefaultAdminRole)
	awe := createUser(t, "Awe", "awe@test.cd", "s3cr3tWord", true)
	token := getToken(t, admin)

	tests := []httpTest{
		{name: "no token", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errInvalidTokenBody)},
		{name: "all users", token: token, wantCode: http.StatusOK, wantData: marshallObj(t, []user.User{admin, awe})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/admin/users", tt.token)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

// The management gate re-resolves the identity on every request; a token
// outlives neither deletion nor deactivation of its account.
func Test_adminApi_staleTokens(t *testing.T) {
	server := setup(t)

	deleted := createUser(t, "Ghost", "ghost@test.cd", "s3cr3tWord", true)
	deletedToken := getToken(t, deleted)
	if err := usrSvc.Delete(context.Background(), deleted.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	deactivated := createUser(t, "Gone", "gone@test.cd", "s3cr3tWord", true)
	deactivatedToken := getToken(t, deactivated)
	inactive := false
	if _, err := usrSvc.Update(context.Background(), deactivated.ID, user.UpdateUser{IsActive: &inactive}); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	tests := []httpTest{
		{name: "deleted user", token: deletedToken,
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, httpErr{Error: "user not found"})},
		{name: "deactivated user", token: deactivatedToken,
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "account deactivated"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/admin/users", tt.token)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			req, rec = newAuthRequest(http.MethodGet, "/admin/roles", tt.token)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_create(t *testing.T) {
	server := setup(t)

	admin := createUser(t, "Admin", "admin@test.cd", "s3cr3tWord", true, user.DefaultAdminRole)
	token := getToken(t, admin)

	tests := []httpTest{
		{name: "no token", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errInvalidTokenBody)},
		{name: "empty body", token: token, body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{
				"name": "this field is required", "email": "this field is required", "password": "this field is required",
			})},
		{name: "invalid email", token: token, body: []byte(`{"name": "Awe", "email": "lol", "password": "s3cr3tWord"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"email": "email must be a valid email address"})},
		{name: "short password", token: token, body: []byte(`{"name": "Awe", "email": "awe@test.cd", "password": "meh"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"password": "password must be at least 8 characters in length"})},
		{name: "duplicate email", token: token, body: []byte(`{"name": "Admin Bis", "email": "admin@test.cd", "password": "s3cr3tWord"}`),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "email already registered"})},
		{name: "success", token: token,
			body:     []byte(`{"name": "Awe", "email": "awe@test.cd", "password": "s3cr3tWord", "roles": ["teacher"]}`),
			wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/admin/users", tt.token, tt.body)
			server.ServeHTTP(rec, req)

			if tt.name == "success" {
				assert.Equal(t, tt.wantCode, rec.Code)

				var resp ack
				assert.NoError(t, unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "User created successfully", resp.Message)
				assert.NotEmpty(t, resp.ID)

				usr, err := usrSvc.GetByID(context.Background(), resp.ID)
				assert.NoError(t, err)
				assert.True(t, usr.IsActive)
				assert.NoError(t, usr.CheckPassword("s3cr3tWord"))

				// welcome email went out
				found := false
				for _, msg := range emailsvc.SentMessages {
					for _, to := range msg.To {
						if to.Address == "awe@test.cd" {
							found = true
						}
					}
				}
				assert.True(t, found, "expected a welcome email for awe@test.cd")
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_update(t *testing.T) {
	server := setup(t)

	admin := createUser(t, "Admin", "admin@test.cd", "s3cr3tWord", true, user.DefaultAdminRole)
	awe := createUser(t, "Awe", "awe@test.cd", "s3cr3tWord", true)
	token := getToken(t, admin)

	tests := []httpTest{
		{name: "no token", path: awe.ID, wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errInvalidTokenBody)},
		{name: "not found", path: "ffffffffffffffffffffffff", token: token, body: []byte(`{"name": "Nope"}`),
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "User not found"})},
		{name: "duplicate email", path: awe.ID, token: token, body: []byte(`{"email": "admin@test.cd"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"email": "a user with this email already exists"})},
		{name: "own email untouched", path: awe.ID, token: token, body: []byte(`{"email": "awe@test.cd", "name": "Awe Same"}`),
			wantCode: http.StatusOK, wantData: marshallObj(t, ack{Message: "User updated successfully"})},
		{name: "success", path: awe.ID, token: token, body: []byte(`{"name": "Awe Two", "is_active": false}`),
			wantCode: http.StatusOK, wantData: marshallObj(t, ack{Message: "User updated successfully"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/admin/users/%s", tt.path), tt.token, tt.body)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	usr, err := usrSvc.GetByID(context.Background(), awe.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Awe Two", usr.Name)
	assert.False(t, usr.IsActive)
}

func Test_userApi_delete(t *testing.T) {
	server := setup(t)

	admin := createUser(t, "Admin", "admin@test.cd", "s3cr3tWord", true, user.DefaultAdminRole)
	awe := createUser(t, "Awe", "awe@test.cd", "s3cr3tWord", true)
	token := getToken(t, admin)

	tests := []httpTest{
		{name: "no token", path: awe.ID, wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errInvalidTokenBody)},
		{name: "not found", path: "ffffffffffffffffffffffff", token: token,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "User not found"})},
		{name: "success", path: awe.ID, token: token,
			wantCode: http.StatusOK, wantData: marshallObj(t, ack{Message: "User deleted successfully"})},
		{name: "already deleted", path: awe.ID, token: token,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "User not found"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/admin/users/%s", tt.path), tt.token)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
