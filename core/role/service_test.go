package role_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jnanisc/backend/core"
	"github.com/jnanisc/backend/core/role"
	"github.com/jnanisc/backend/core/user"
	dummydb "github.com/jnanisc/backend/storage/database/dummy"
)

func setup(t *testing.T) *role.Service {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed, %v", err)
	}
	return role.NewService(dummydb.NewRoleRepository(db))
}

func TestService_Create(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	rl, err := svc.Create(ctx, role.NewRole{Name: "teacher", Description: "Teaching staff", Permissions: []string{"manage_content"}})
	assert.NoError(t, err)
	assert.NotEmpty(t, rl.ID)
	assert.Equal(t, "teacher", rl.Name)

	// duplicate name surfaces as a field error
	_, err = svc.Create(ctx, role.NewRole{Name: "teacher"})
	assert.IsType(t, &core.ValidationError{}, err)
}

func TestService_Update(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	rl, err := svc.Create(ctx, role.NewRole{Name: "teacher", Permissions: []string{"manage_content"}})
	assert.NoError(t, err)

	// full replacement; omitted description is cleared
	updated, err := svc.Update(ctx, rl.ID, role.NewRole{Name: "tutor", Permissions: []string{"manage_students"}})
	assert.NoError(t, err)
	assert.Equal(t, "tutor", updated.Name)
	assert.Empty(t, updated.Description)
	assert.Equal(t, []string{"manage_students"}, updated.Permissions)

	_, err = svc.Update(ctx, "ffffffffffffffffffffffff", role.NewRole{Name: "nope"})
	assert.Equal(t, role.ErrNotFound, err)
}

func TestService_Permissions(t *testing.T) {
	svc := setup(t)

	perms := svc.Permissions()
	assert.Len(t, perms, 5)

	ids := make([]string, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.ID)
	}
	assert.Contains(t, ids, "manage_users")
	assert.Contains(t, ids, "manage_content")
}

func TestService_EnsureAdminRole(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	rl, err := svc.EnsureAdminRole(ctx)
	assert.NoError(t, err)
	assert.Equal(t, user.DefaultAdminRole, rl.Name)
	assert.Equal(t, []string{role.Wildcard}, rl.Permissions)

	again, err := svc.EnsureAdminRole(ctx)
	assert.NoError(t, err)
	assert.Equal(t, rl.ID, again.ID)

	all, err := svc.QueryAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 1)
}
