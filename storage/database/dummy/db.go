package dummydb

import (
	"fmt"
	"sync"

	"github.com/jnanisc/backend/core/role"
	"github.com/jnanisc/backend/core/user"
)

type (
	DB struct {
		user *userTable
		role *roleTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	roleTable struct {
		sync.RWMutex
		table map[string]*role.Role
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		role: &roleTable{table: make(map[string]*role.Role)},
	}
	return db, nil
}

var (
	pkMu    sync.Mutex
	pkCount int
)

// nextID returns a 24-char hex id shaped like a Mongo ObjectID.
func nextID() string {
	pkMu.Lock()
	defer pkMu.Unlock()
	pkCount++
	return fmt.Sprintf("%024x", pkCount)
}
