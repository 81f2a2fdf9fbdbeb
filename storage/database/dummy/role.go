package dummydb

import (
	"context"

	"github.com/jnanisc/backend/core/role"
)

type roleRepository struct {
	db *roleTable
}

var _ role.Repository = (*roleRepository)(nil) // interface compliance check

func NewRoleRepository(db *DB) role.Repository {
	return &roleRepository{db: db.role}
}

func (repo *roleRepository) CreateRole(_ context.Context, rl role.Role) (role.Role, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, r := range repo.db.table {
		if r.Name == rl.Name {
			return role.Role{}, role.ErrNameExists
		}
	}

	rl.ID = nextID()
	repo.db.table[rl.ID] = &rl
	return rl, nil
}

func (repo *roleRepository) QueryAllRoles(context.Context) ([]role.Role, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	roles := make([]role.Role, 0, len(repo.db.table))
	for _, rl := range repo.db.table {
		roles = append(roles, *rl)
	}
	return roles, nil
}

func (repo *roleRepository) GetRoleByName(_ context.Context, name string) (role.Role, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, rl := range repo.db.table {
		if rl.Name == name {
			return *rl, nil
		}
	}
	return role.Role{}, role.ErrNotFound
}

func (repo *roleRepository) UpdateRole(_ context.Context, rl role.Role) (role.Role, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[rl.ID]
	if !ok {
		return role.Role{}, role.ErrNotFound
	}
	orig.Name = rl.Name
	orig.Description = rl.Description
	orig.Permissions = rl.Permissions
	return *orig, nil
}

func (repo *roleRepository) DeleteRole(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return role.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
