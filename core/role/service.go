package role

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jnanisc/backend/core"
	"github.com/jnanisc/backend/core/user"
)

var (
	ErrNotFound   = errors.New("role not found")
	ErrNameExists = errors.New("a role with this name already exists")
)

type (
	Repository interface {
		CreateRole(ctx context.Context, rl Role) (Role, error)
		QueryAllRoles(ctx context.Context) ([]Role, error)
		GetRoleByName(ctx context.Context, name string) (Role, error)
		UpdateRole(ctx context.Context, rl Role) (Role, error)
		DeleteRole(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nr NewRole) (Role, error) {
	rl := Role{
		Name:        nr.Name,
		Description: nr.Description,
		Permissions: nr.Permissions,
	}
	rl, err := svc.repo.CreateRole(ctx, rl)
	if errors.Cause(err) == ErrNameExists {
		return Role{}, core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
	}
	return rl, err
}

func (svc *Service) QueryAll(ctx context.Context) ([]Role, error) {
	return svc.repo.QueryAllRoles(ctx)
}

func (svc *Service) GetByName(ctx context.Context, name string) (Role, error) {
	return svc.repo.GetRoleByName(ctx, name)
}

// Update replaces the whole role document identified by id.
func (svc *Service) Update(ctx context.Context, id string, nr NewRole) (Role, error) {
	return svc.repo.UpdateRole(ctx, Role{
		ID:          id,
		Name:        nr.Name,
		Description: nr.Description,
		Permissions: nr.Permissions,
	})
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteRole(ctx, id)
}

func (svc *Service) Permissions() []Permission {
	return AllPermissions
}

// EnsureAdminRole creates the default admin role if it does not exist yet.
func (svc *Service) EnsureAdminRole(ctx context.Context) (Role, error) {
	rl, err := svc.repo.GetRoleByName(ctx, user.DefaultAdminRole)
	if err == nil {
		return rl, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return Role{}, errors.Wrap(err, "finding admin role")
	}

	rl, err = svc.repo.CreateRole(ctx, Role{
		Name:        user.DefaultAdminRole,
		Description: "Administrator with all permissions",
		Permissions: []string{Wildcard},
	})
	return rl, errors.Wrap(err, "creating admin role")
}
